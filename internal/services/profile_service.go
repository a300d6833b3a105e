package services

import (
	"context"
	"strings"

	"vacai/internal/domain"
	"vacai/internal/domain/models"
	"vacai/internal/utils"
)

// ProfileStore is satisfied by the MySQL and the Mongo profile repositories.
type ProfileStore interface {
	Get(ctx context.Context, uid string) (models.Profile, bool, error)
	Put(ctx context.Context, uid string, p models.Profile) error
}

type ProfileService struct {
	Store     ProfileStore
	RequestID string
}

type ProfileView struct {
	UID        string         `json:"uid"`
	Profile    models.Profile `json:"profile"`
	ThemeColor string         `json:"themeColor"`
	Label      string         `json:"label"`
	Exists     bool           `json:"exists"`
}

// ProfileUpdate carries the fields a caller wants to change; nil leaves a field alone.
type ProfileUpdate struct {
	DisplayName *string `json:"name"`
	ThemeColor  *string `json:"themeColor"`
}

func (s ProfileService) Get(ctx context.Context, uid, email string) (ProfileView, error) {
	if strings.TrimSpace(uid) == "" {
		return ProfileView{}, domain.ValidationError{Field: "uid", Msg: "required"}
	}
	p, found, err := s.Store.Get(ctx, uid)
	if err != nil {
		return ProfileView{}, domain.InternalError{Msg: "failed to read profile", Err: err}
	}
	return newProfileView(uid, email, p, found), nil
}

// Create writes a fresh document for a new account.
func (s ProfileService) Create(ctx context.Context, uid, email, themeColor string) (ProfileView, error) {
	themeColor = utils.Fallback(themeColor, models.DefaultThemeColor)
	if err := ValidateThemeColor(themeColor); err != nil {
		return ProfileView{}, err
	}
	p := models.Profile{
		Email:       email,
		CreatedAt:   utils.FormatISO(utils.NowUTC()),
		Preferences: models.Preferences{ThemeColor: strings.ToLower(themeColor)},
	}
	if err := s.Store.Put(ctx, uid, p); err != nil {
		return ProfileView{}, domain.InternalError{Msg: "failed to write profile", Err: err}
	}
	utils.LogEvent(s.RequestID, "profile", "create", "uid="+uid)
	return newProfileView(uid, email, p, true), nil
}

// Update reads the document, applies the changes and writes it back whole.
func (s ProfileService) Update(ctx context.Context, uid, email string, in ProfileUpdate) (ProfileView, error) {
	if in.ThemeColor != nil {
		if err := ValidateThemeColor(strings.TrimSpace(*in.ThemeColor)); err != nil {
			return ProfileView{}, err
		}
	}
	if in.DisplayName != nil && len(*in.DisplayName) > 120 {
		return ProfileView{}, domain.ValidationError{Field: "name", Msg: "too long"}
	}

	p, found, err := s.Store.Get(ctx, uid)
	if err != nil {
		return ProfileView{}, domain.InternalError{Msg: "failed to read profile", Err: err}
	}
	if !found {
		p = models.Profile{Email: email, CreatedAt: utils.FormatISO(utils.NowUTC())}
	}
	if in.ThemeColor != nil {
		p.Preferences.ThemeColor = strings.ToLower(strings.TrimSpace(*in.ThemeColor))
	}
	if in.DisplayName != nil {
		p.DisplayName = utils.NormalizeSpace(*in.DisplayName)
	}
	if err := s.Store.Put(ctx, uid, p); err != nil {
		return ProfileView{}, domain.InternalError{Msg: "failed to write profile", Err: err}
	}
	utils.LogEvent(s.RequestID, "profile", "update", "uid="+uid)
	return newProfileView(uid, email, p, true), nil
}

func newProfileView(uid, email string, p models.Profile, found bool) ProfileView {
	return ProfileView{
		UID:        uid,
		Profile:    p,
		ThemeColor: p.ThemeColor(),
		Label:      p.Label(email),
		Exists:     found,
	}
}
