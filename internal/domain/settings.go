package domain

// Theme selects the colour scheme.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// NotificationSettings controls which notices a user receives.
type NotificationSettings struct {
	Email             bool `json:"email"`
	Push              bool `json:"push"`
	QuizReminders     bool `json:"quizReminders"`
	AchievementAlerts bool `json:"achievementAlerts"`
}

// AccessibilitySettings tunes presentation.
type AccessibilitySettings struct {
	FontSize     string `json:"fontSize" validate:"oneof=small medium large"`
	HighContrast bool   `json:"highContrast"`
	ReduceMotion bool   `json:"reduceMotion"`
}

// QuizPreferences tunes the quiz-taking flow.
type QuizPreferences struct {
	AutoSubmit bool `json:"autoSubmit"`
	ShowTimer  bool `json:"showTimer"`
	ShowHints  bool `json:"showHints"`
}

// PrivacySettings controls data sharing.
type PrivacySettings struct {
	ShowProfileToOthers bool `json:"showProfileToOthers"`
	ShareActivity       bool `json:"shareActivity"`
	AllowDataCollection bool `json:"allowDataCollection"`
}

// UserSettings is the per-user preferences document.
type UserSettings struct {
	ID              string                `json:"id" validate:"required"`
	UserID          string                `json:"userId" validate:"required"`
	Theme           Theme                 `json:"theme" validate:"oneof=light dark system"`
	Notifications   NotificationSettings  `json:"notifications"`
	Accessibility   AccessibilitySettings `json:"accessibility"`
	QuizPreferences QuizPreferences       `json:"quizPreferences"`
	Privacy         PrivacySettings       `json:"privacy"`
}

// DefaultSettings returns the documented defaults for userID.
func DefaultSettings(id, userID string) UserSettings {
	return UserSettings{
		ID:     id,
		UserID: userID,
		Theme:  ThemeSystem,
		Notifications: NotificationSettings{
			Email:             true,
			Push:              true,
			QuizReminders:     true,
			AchievementAlerts: true,
		},
		Accessibility: AccessibilitySettings{
			FontSize: "medium",
		},
		QuizPreferences: QuizPreferences{
			AutoSubmit: true,
			ShowTimer:  true,
			ShowHints:  true,
		},
		Privacy: PrivacySettings{
			ShowProfileToOthers: true,
			ShareActivity:       true,
			AllowDataCollection: true,
		},
	}
}

// SettingsPatch is a partial update; nil fields keep their prior value.
type SettingsPatch struct {
	Theme           *Theme                `json:"theme,omitempty"`
	Notifications   *NotificationsPatch   `json:"notifications,omitempty"`
	Accessibility   *AccessibilityPatch   `json:"accessibility,omitempty"`
	QuizPreferences *QuizPreferencesPatch `json:"quizPreferences,omitempty"`
	Privacy         *PrivacyPatch         `json:"privacy,omitempty"`
}

type NotificationsPatch struct {
	Email             *bool `json:"email,omitempty"`
	Push              *bool `json:"push,omitempty"`
	QuizReminders     *bool `json:"quizReminders,omitempty"`
	AchievementAlerts *bool `json:"achievementAlerts,omitempty"`
}

type AccessibilityPatch struct {
	FontSize     *string `json:"fontSize,omitempty"`
	HighContrast *bool   `json:"highContrast,omitempty"`
	ReduceMotion *bool   `json:"reduceMotion,omitempty"`
}

type QuizPreferencesPatch struct {
	AutoSubmit *bool `json:"autoSubmit,omitempty"`
	ShowTimer  *bool `json:"showTimer,omitempty"`
	ShowHints  *bool `json:"showHints,omitempty"`
}

type PrivacyPatch struct {
	ShowProfileToOthers *bool `json:"showProfileToOthers,omitempty"`
	ShareActivity       *bool `json:"shareActivity,omitempty"`
	AllowDataCollection *bool `json:"allowDataCollection,omitempty"`
}

// Apply merges the patch into s section by section.
func (p SettingsPatch) Apply(s UserSettings) UserSettings {
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if n := p.Notifications; n != nil {
		setBool(&s.Notifications.Email, n.Email)
		setBool(&s.Notifications.Push, n.Push)
		setBool(&s.Notifications.QuizReminders, n.QuizReminders)
		setBool(&s.Notifications.AchievementAlerts, n.AchievementAlerts)
	}
	if a := p.Accessibility; a != nil {
		if a.FontSize != nil {
			s.Accessibility.FontSize = *a.FontSize
		}
		setBool(&s.Accessibility.HighContrast, a.HighContrast)
		setBool(&s.Accessibility.ReduceMotion, a.ReduceMotion)
	}
	if q := p.QuizPreferences; q != nil {
		setBool(&s.QuizPreferences.AutoSubmit, q.AutoSubmit)
		setBool(&s.QuizPreferences.ShowTimer, q.ShowTimer)
		setBool(&s.QuizPreferences.ShowHints, q.ShowHints)
	}
	if pr := p.Privacy; pr != nil {
		setBool(&s.Privacy.ShowProfileToOthers, pr.ShowProfileToOthers)
		setBool(&s.Privacy.ShareActivity, pr.ShareActivity)
		setBool(&s.Privacy.AllowDataCollection, pr.AllowDataCollection)
	}
	return s
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
