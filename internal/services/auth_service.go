package services

import (
	"context"
	"fmt"
	"strings"

	"vacai/internal/identity"
	"vacai/internal/utils"
)

// IdentityProvider is the part of identity.Provider the auth flow needs.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password string) (identity.Session, error)
	SignIn(ctx context.Context, email, password string) (identity.Session, error)
	SignInFederated(ctx context.Context, idToken string) (identity.Session, error)
	SignOut(ctx context.Context, token string) error
}

type AuthService struct {
	Identity  IdentityProvider
	Profiles  ProfileService
	RequestID string
}

type AuthResult struct {
	Session identity.Session `json:"session"`
	Profile ProfileView      `json:"profile"`
}

// SignUp creates the account and then writes exactly one profile document
// holding the chosen theme color.
func (s AuthService) SignUp(ctx context.Context, email, password, themeColor string) (AuthResult, error) {
	themeColor = strings.TrimSpace(themeColor)
	if themeColor != "" {
		if err := ValidateThemeColor(themeColor); err != nil {
			return AuthResult{}, err
		}
	}

	session, err := s.Identity.SignUp(ctx, email, password)
	if err != nil {
		utils.LogEvent(s.RequestID, "auth", "sign_up", "rejected: "+string(identity.CodeOf(err)))
		return AuthResult{}, err
	}
	view, err := s.profiles().Create(ctx, session.User.UID, session.User.Email, themeColor)
	if err != nil {
		// The account exists without a profile; the next sign-in writes one.
		utils.LogError(s.RequestID, "auth", "sign_up_orphan", fmt.Errorf("uid=%s: %w", session.User.UID, err))
		return AuthResult{}, err
	}
	utils.LogEvent(s.RequestID, "auth", "sign_up", "uid="+session.User.UID)
	return AuthResult{Session: session, Profile: view}, nil
}

// SignIn reads the profile after a successful sign-in. An unreadable
// document falls back to defaults; a missing one is written with defaults.
func (s AuthService) SignIn(ctx context.Context, email, password string) (AuthResult, error) {
	session, err := s.Identity.SignIn(ctx, email, password)
	if err != nil {
		utils.LogEvent(s.RequestID, "auth", "sign_in", "rejected: "+string(identity.CodeOf(err)))
		return AuthResult{}, err
	}
	utils.LogEvent(s.RequestID, "auth", "sign_in", "uid="+session.User.UID)
	return AuthResult{Session: session, Profile: s.ensureProfile(ctx, session, "sign_in")}, nil
}

// SignInFederated also creates the profile on first sign-in.
func (s AuthService) SignInFederated(ctx context.Context, idToken string) (AuthResult, error) {
	session, err := s.Identity.SignInFederated(ctx, idToken)
	if err != nil {
		utils.LogEvent(s.RequestID, "auth", "sign_in_federated", "rejected: "+string(identity.CodeOf(err)))
		return AuthResult{}, err
	}
	return AuthResult{Session: session, Profile: s.ensureProfile(ctx, session, "sign_in_federated")}, nil
}

func (s AuthService) SignOut(ctx context.Context, token string) error {
	return s.Identity.SignOut(ctx, token)
}

func (s AuthService) ensureProfile(ctx context.Context, session identity.Session, action string) ProfileView {
	uid, email := session.User.UID, session.User.Email
	view, err := s.profiles().Get(ctx, uid, email)
	if err != nil {
		utils.LogError(s.RequestID, "auth", "load_profile", err)
		return newProfileView(uid, email, view.Profile, false)
	}
	if view.Exists {
		return view
	}
	created, err := s.profiles().Create(ctx, uid, email, "")
	if err != nil {
		utils.LogError(s.RequestID, "auth", action, err)
		return view
	}
	return created
}

func (s AuthService) profiles() ProfileService {
	p := s.Profiles
	if p.RequestID == "" {
		p.RequestID = s.RequestID
	}
	return p
}
