package models

// DefaultThemeColor is used until a profile stores its own preference.
const DefaultThemeColor = "#45acee"

type Preferences struct {
	ThemeColor string `json:"themeColor,omitempty" bson:"themeColor,omitempty"`
}

// Profile is the per-user document read on sign-in and written on sign-up.
type Profile struct {
	Email       string      `json:"email" bson:"email"`
	CreatedAt   string      `json:"createdAt" bson:"createdAt"`
	DisplayName string      `json:"name,omitempty" bson:"name,omitempty"`
	Preferences Preferences `json:"preferences" bson:"preferences"`
}

// ThemeColor returns the stored preference or the default.
func (p Profile) ThemeColor() string {
	if p.Preferences.ThemeColor == "" {
		return DefaultThemeColor
	}
	return p.Preferences.ThemeColor
}

// Label is what the header shows: the display name when set, otherwise the email.
func (p Profile) Label(fallbackEmail string) string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	if p.Email != "" {
		return p.Email
	}
	return fallbackEmail
}
