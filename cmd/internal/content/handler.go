package content

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/RayenHanafi/Mosque-Noor/cmd/internal/auth/api"
	"github.com/RayenHanafi/Mosque-Noor/cmd/internal/httpx"
)

// Handler serves the content endpoints.
type Handler struct {
	log          *slog.Logger
	svc          *Service
	msg          Messages
	maxBodyBytes int64
}

type settingsResponse struct {
	httpx.Envelope
	Settings Settings `json:"settings"`
}

type listResponse struct {
	httpx.Envelope
	Announcements []Announcement `json:"announcements"`
}

type announcementResponse struct {
	httpx.Envelope
	Announcement Announcement `json:"announcement"`
}

type invalidResponse struct {
	httpx.Envelope
	Field string `json:"field,omitempty"`
}

// NewHandler constructs a Handler. maxBodyBytes <= 0 uses the httpx default.
func NewHandler(log *slog.Logger, svc *Service, locale string, maxBodyBytes int64) (*Handler, error) {
	if svc == nil {
		return nil, errors.New("content: nil service")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{log: log, svc: svc, msg: MessagesFor(locale), maxBodyBytes: maxBodyBytes}, nil
}

// RegisterPublic wires the read-only routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/settings", h.handleGetSettings)
	r.Get("/announcements", h.handleList)
}

// RegisterAdmin wires the write routes. r must already require an admin session.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Put("/admin/settings", h.handlePutSettings)
	r.Get("/admin/announcements", h.handleList)
	r.Post("/admin/announcements", h.handleCreate)
	r.Delete("/admin/announcements/{id}", h.handleDelete)
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.GetSettings(r.Context())
	if err != nil {
		h.fail(w, r, "content.settings.get.fail", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, settingsResponse{
		Envelope: httpx.Envelope{Success: true, Message: h.msg.Loaded},
		Settings: s,
	})
}

func (h *Handler) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var in SettingsInput
	if err := httpx.DecodeJSON(w, r, h.maxBodyBytes, &in); err != nil {
		h.invalid(w, "")
		return
	}
	s, err := h.svc.UpdateSettings(r.Context(), in)
	if err != nil {
		h.fail(w, r, "content.settings.update.fail", err)
		return
	}
	h.log.Info("content.settings.saved", "admin_id", actor(r))
	httpx.WriteJSON(w, http.StatusOK, settingsResponse{
		Envelope: httpx.Envelope{Success: true, Message: h.msg.SettingsSaved},
		Settings: s,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.invalid(w, "limit")
			return
		}
		limit = n
	}
	items, err := h.svc.ListAnnouncements(r.Context(), limit)
	if err != nil {
		h.fail(w, r, "content.announcement.list.fail", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, listResponse{
		Envelope:      httpx.Envelope{Success: true, Message: h.msg.Loaded},
		Announcements: items,
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in AnnouncementInput
	if err := httpx.DecodeJSON(w, r, h.maxBodyBytes, &in); err != nil {
		h.invalid(w, "")
		return
	}
	a, err := h.svc.CreateAnnouncement(r.Context(), in)
	if err != nil {
		h.fail(w, r, "content.announcement.create.fail", err)
		return
	}
	h.log.Info("content.announcement.add", "id", a.ID, "admin_id", actor(r))
	httpx.WriteJSON(w, http.StatusCreated, announcementResponse{
		Envelope:     httpx.Envelope{Success: true, Message: h.msg.AnnouncementAdded},
		Announcement: a,
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteAnnouncement(r.Context(), id); err != nil {
		h.fail(w, r, "content.announcement.delete.fail", err)
		return
	}
	h.log.Info("content.announcement.remove", "id", id, "admin_id", actor(r))
	httpx.WriteMessage(w, http.StatusOK, true, h.msg.AnnouncementDeleted)
}

func (h *Handler) invalid(w http.ResponseWriter, field string) {
	httpx.WriteJSON(w, http.StatusBadRequest, invalidResponse{
		Envelope: httpx.Envelope{Success: false, Message: h.msg.Invalid},
		Field:    field,
	})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, event string, err error) {
	var ve ValidationError
	switch {
	case errors.As(err, &ve):
		h.invalid(w, ve.Field)
	case IsNotFound(err):
		httpx.WriteMessage(w, http.StatusNotFound, false, h.msg.AnnouncementMissing)
	default:
		h.log.Error(event, "path", r.URL.Path, "err", err)
		httpx.WriteMessage(w, http.StatusInternalServerError, false, h.msg.ServerError)
	}
}

func actor(r *http.Request) string {
	if id, ok := authapi.IdentityFromContext(r.Context()); ok {
		return id.AdminID
	}
	return ""
}
