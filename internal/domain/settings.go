package domain

import "time"

// PlanTier is a subscription level gating quota limits.
type PlanTier string

const (
	TierFree       PlanTier = "free"
	TierStarter    PlanTier = "starter"
	TierPro        PlanTier = "pro"
	TierEnterprise PlanTier = "enterprise"
)

// Valid reports whether the tier is a known plan.
func (t PlanTier) Valid() bool {
	switch t {
	case TierFree, TierStarter, TierPro, TierEnterprise:
		return true
	default:
		return false
	}
}

// PlanLimits holds the quota values for one plan tier.
type PlanLimits struct {
	MaxKeywords       int `json:"max_keywords"`
	MaxSearchesPerDay int `json:"max_searches_per_day"`
	MaxSavedLeads     int `json:"max_saved_leads"`
}

// UserProfile carries the subscription state the billing webhook maintains.
type UserProfile struct {
	UserID             string    `db:"user_id"             json:"user_id"`
	Email              string    `db:"email"               json:"email"`
	FullName           string    `db:"full_name"           json:"full_name,omitempty"`
	CompanyName        string    `db:"company_name"        json:"company_name,omitempty"`
	SubscriptionTier   PlanTier  `db:"subscription_tier"   json:"subscription_tier"`
	SubscriptionStatus string    `db:"subscription_status" json:"subscription_status"`
	SubscriptionID     string    `db:"subscription_id"     json:"subscription_id,omitempty"`
	CreatedAt          time.Time `db:"created_at"          json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"          json:"updated_at"`
}

// UserSettings holds per-user notification and monitoring preferences.
type UserSettings struct {
	UserID             string     `db:"user_id"              json:"user_id"`
	EmailNotifications bool       `db:"email_notifications"  json:"email_notifications"`
	NotifyEmail        string     `db:"notify_email"         json:"notify_email,omitempty"`
	SlackWebhookURL    string     `db:"slack_webhook_url"    json:"slack_webhook_url,omitempty"`
	MonitoringEnabled  bool       `db:"monitoring_enabled"   json:"monitoring_enabled"`
	MaxLeadsPerSearch  int        `db:"max_leads_per_search" json:"max_leads_per_search"`
	Platforms          StringList `db:"platforms"            json:"platforms"`
	AutoSaveHighIntent bool       `db:"auto_save_high_intent" json:"auto_save_high_intent"`
	UpdatedAt          time.Time  `db:"updated_at"           json:"updated_at"`
}

// DefaultSettings returns the settings applied to users who have never saved
// any.
func DefaultSettings(userID string) UserSettings {
	return UserSettings{
		UserID:             userID,
		EmailNotifications: true,
		MonitoringEnabled:  false,
		MaxLeadsPerSearch:  50,
		Platforms:          StringList{string(PlatformReddit), string(PlatformTwitter)},
		AutoSaveHighIntent: false,
	}
}
