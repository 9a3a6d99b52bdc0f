package models

import "time"

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// UserSettings holds notification and widget preferences for one user
type UserSettings struct {
	EmailNotifications bool       `json:"emailNotifications"`
	WeeklyReport       bool       `json:"weeklyReport"`
	DefaultShowAvatar  bool       `json:"defaultShowAvatar"`
	DefaultAutoStart   bool       `json:"defaultAutoStart"`
	Theme              string     `json:"theme"`
	UpdatedAt          *time.Time `json:"updatedAt,omitempty"` // nil until the user saves once
}

// DefaultUserSettings is what a user sees before saving any settings.
func DefaultUserSettings() UserSettings {
	return UserSettings{
		EmailNotifications: true,
		WeeklyReport:       true,
		DefaultShowAvatar:  true,
		DefaultAutoStart:   true,
		Theme:              ThemeLight,
	}
}

// UserSettingsPatch is a partial settings update. Nil fields are left alone.
type UserSettingsPatch struct {
	EmailNotifications *bool   `json:"emailNotifications"`
	WeeklyReport       *bool   `json:"weeklyReport"`
	DefaultShowAvatar  *bool   `json:"defaultShowAvatar"`
	DefaultAutoStart   *bool   `json:"defaultAutoStart"`
	Theme              *string `json:"theme"`
}

// Apply copies the non-nil fields of p onto s.
func (p UserSettingsPatch) Apply(s *UserSettings) {
	if p.EmailNotifications != nil {
		s.EmailNotifications = *p.EmailNotifications
	}
	if p.WeeklyReport != nil {
		s.WeeklyReport = *p.WeeklyReport
	}
	if p.DefaultShowAvatar != nil {
		s.DefaultShowAvatar = *p.DefaultShowAvatar
	}
	if p.DefaultAutoStart != nil {
		s.DefaultAutoStart = *p.DefaultAutoStart
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
}

// UpdateProfileRequest changes the display name and/or email of the caller
type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName" validate:"omitempty,max=63"`
	Email       *string `json:"email"`
}

// UpdateProfileResponse carries a fresh access token when the email changed,
// since access tokens name the user by email.
type UpdateProfileResponse struct {
	User      *UserInfo  `json:"user"`
	Token     string     `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
