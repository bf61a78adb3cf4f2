package content

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/RayenHanafi/Mosque-Noor/cmd/identity/ids"
)

// Service validates content writes before they reach the Store.
type Service struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a Service over store.
func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("content: nil store")
	}
	s := &Service{
		store: store,
		log:   slog.Default(),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// GetSettings returns the settings row.
func (s *Service) GetSettings(ctx context.Context) (Settings, error) {
	return s.store.GetSettings(ctx)
}

// UpdateSettings replaces the settings row. Fields are trimmed and empty
// values are stored as null.
func (s *Service) UpdateSettings(ctx context.Context, in SettingsInput) (Settings, error) {
	const op = "content.UpdateSettings"

	phone, err := optionalField(op, "phone", in.Phone, MaxSettingLen)
	if err != nil {
		return Settings{}, err
	}
	email, err := optionalField(op, "email", in.Email, MaxSettingLen)
	if err != nil {
		return Settings{}, err
	}
	if email != nil {
		addr, perr := mail.ParseAddress(*email)
		if perr != nil || addr.Address != *email {
			return Settings{}, ValidationError{Op: op, Field: "email", Reason: "not a valid address"}
		}
	}
	jummah, err := optionalField(op, "jummah_time", in.JummahTime, MaxSettingLen)
	if err != nil {
		return Settings{}, err
	}

	out, err := s.store.PutSettings(ctx, Settings{
		Phone:      phone,
		Email:      email,
		JummahTime: jummah,
		UpdatedAt:  s.now(),
	})
	if err != nil {
		return Settings{}, err
	}
	s.log.Info("content.settings.updated")
	return out, nil
}

// CreateAnnouncement validates in and stores a new announcement.
func (s *Service) CreateAnnouncement(ctx context.Context, in AnnouncementInput) (Announcement, error) {
	const op = "content.CreateAnnouncement"

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Announcement{}, ValidationError{Op: op, Field: "title", Reason: "required"}
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return Announcement{}, ValidationError{Op: op, Field: "title", Reason: "too long"}
	}
	desc, err := optionalField(op, "description", in.Description, MaxDescriptionLen)
	if err != nil {
		return Announcement{}, err
	}
	date, err := optionalLayout(op, "date", in.Date, dateLayout)
	if err != nil {
		return Announcement{}, err
	}
	at, err := optionalLayout(op, "time", in.Time, timeLayout)
	if err != nil {
		return Announcement{}, err
	}

	now := s.now()
	id, err := ids.NewULID(now)
	if err != nil {
		return Announcement{}, err
	}
	a := Announcement{
		ID:          id,
		Title:       title,
		Description: desc,
		Date:        date,
		Time:        at,
		CreatedAt:   now,
	}
	if err := s.store.InsertAnnouncement(ctx, a); err != nil {
		return Announcement{}, err
	}
	s.log.Info("content.announcement.created", "id", a.ID)
	return a, nil
}

// DeleteAnnouncement removes the announcement id. Unknown ids fail with
// ErrNotFound.
func (s *Service) DeleteAnnouncement(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if !ids.Valid(id) {
		return ValidationError{Op: "content.DeleteAnnouncement", Field: "id", Reason: "malformed"}
	}
	removed, err := s.store.DeleteAnnouncement(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	s.log.Info("content.announcement.deleted", "id", id)
	return nil
}

// ListAnnouncements returns the newest announcements. A zero limit means
// DefaultListLimit; limits above MaxListLimit are rejected.
func (s *Service) ListAnnouncements(ctx context.Context, limit int) ([]Announcement, error) {
	switch {
	case limit == 0:
		limit = DefaultListLimit
	case limit < 0 || limit > MaxListLimit:
		return nil, ValidationError{Op: "content.ListAnnouncements", Field: "limit", Reason: "out of range"}
	}
	return s.store.ListAnnouncements(ctx, limit)
}

func optionalField(op, field, v string, maxLen int) (*string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(v) > maxLen {
		return nil, ValidationError{Op: op, Field: field, Reason: "too long"}
	}
	return &v, nil
}

func optionalLayout(op, field, v, layout string) (*string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	if len(v) != len(layout) {
		return nil, ValidationError{Op: op, Field: field, Reason: "expected " + layout}
	}
	if _, err := time.Parse(layout, v); err != nil {
		return nil, ValidationError{Op: op, Field: field, Reason: "expected " + layout}
	}
	return &v, nil
}
