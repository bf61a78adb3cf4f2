package content

import (
	"context"
	"time"
)

// Field limits, in characters.
const (
	MaxSettingLen     = 128
	MaxTitleLen       = 200
	MaxDescriptionLen = 2000

	DefaultListLimit = 6
	MaxListLimit     = 100

	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Settings is the single row of site-wide contact details.
type Settings struct {
	Phone      *string   `json:"phone"`
	Email      *string   `json:"email"`
	JummahTime *string   `json:"jummah_time"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SettingsInput replaces every settings field; empty strings clear a field.
type SettingsInput struct {
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	JummahTime string `json:"jummah_time"`
}

// Announcement is one entry on the public announcements list.
type Announcement struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Date        *string   `json:"date"`
	Time        *string   `json:"time"`
	CreatedAt   time.Time `json:"created_at"`
}

// AnnouncementInput is the body of a create request.
type AnnouncementInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// Store persists site content.
type Store interface {
	GetSettings(ctx context.Context) (Settings, error)
	PutSettings(ctx context.Context, s Settings) (Settings, error)

	InsertAnnouncement(ctx context.Context, a Announcement) error
	DeleteAnnouncement(ctx context.Context, id string) (bool, error)
	// ListAnnouncements returns at most limit rows, newest first.
	ListAnnouncements(ctx context.Context, limit int) ([]Announcement, error)
}
