package httptransport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"casework/internal/casework/models"
	"casework/internal/casework/service"
	"casework/internal/commit"
	"casework/internal/journey"
	dErrors "casework/pkg/domain-errors"
	"casework/pkg/platform/httputil"
)

// Service defines the casework operations the HTTP layer exposes.
type Service interface {
	RenderQuestion(ctx context.Context, journeyID, referenceID, segment, field string) (journey.RenderModel, error)
	SaveAnswer(ctx context.Context, journeyID, referenceID, segment, field string, form journey.Form) (service.SaveResult, error)
	TaskList(ctx context.Context, journeyID, referenceID string) ([]journey.SectionTasks, error)
	Confirm(ctx context.Context, journeyID, referenceID string) error
	CreateCase(ctx context.Context) (*models.CaseRecord, error)
	MarkReceived(ctx context.Context, journeyID, referenceID string) error
}

// Pinger reports on one backing dependency for the health endpoint.
type Pinger interface {
	Health(ctx context.Context) error
}

// Handler handles journey and case endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
	pingers map[string]Pinger
}

// New creates the HTTP handler. pingers maps dependency names onto health
// probes; a nil map makes /healthz unconditionally healthy.
func New(svc Service, logger *slog.Logger, pingers map[string]Pinger) *Handler {
	return &Handler{service: svc, logger: logger, pingers: pingers}
}

// Register mounts the journey routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/cases", h.handleCreateCase)
	r.Route("/journeys/{journeyID}/{referenceID}", func(r chi.Router) {
		r.Get("/task-list", h.handleTaskList)
		r.Post("/confirm", h.handleConfirm)
		r.Post("/submit", h.handleSubmit)
		r.Get("/{section}/{question}", h.handleRenderQuestion)
		r.Post("/{section}/{question}", h.handleSaveAnswer)
	})
}

func (h *Handler) handleCreateCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	record, err := h.service.CreateCase(ctx)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]string{
		"reference": record.Reference,
		"status":    string(record.Status),
	})
}

func (h *Handler) handleRenderQuestion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	model, err := h.service.RenderQuestion(ctx,
		chi.URLParam(r, "journeyID"), chi.URLParam(r, "referenceID"),
		chi.URLParam(r, "section"), chi.URLParam(r, "question"))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, model)
}

func (h *Handler) handleSaveAnswer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		h.writeError(ctx, w, dErrors.New(dErrors.CodeBadRequest, "malformed form body"))
		return
	}
	result, err := h.service.SaveAnswer(ctx,
		chi.URLParam(r, "journeyID"), chi.URLParam(r, "referenceID"),
		chi.URLParam(r, "section"), chi.URLParam(r, "question"),
		journey.FormFromValues(r.PostForm))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	if result.Invalid != nil {
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, result.Invalid)
		return
	}
	w.Header().Set("Location", result.NextURL)
	w.WriteHeader(http.StatusSeeOther)
}

func (h *Handler) handleTaskList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tasks, err := h.service.TaskList(ctx, chi.URLParam(r, "journeyID"), chi.URLParam(r, "referenceID"))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"sections": tasks})
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	journeyID := chi.URLParam(r, "journeyID")
	referenceID := chi.URLParam(r, "referenceID")
	if err := h.service.Confirm(ctx, journeyID, referenceID); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"reference": referenceID, "result": "committed"})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	journeyID := chi.URLParam(r, "journeyID")
	referenceID := chi.URLParam(r, "referenceID")
	if err := h.service.MarkReceived(ctx, journeyID, referenceID); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"reference": referenceID, "status": string(models.CaseStatusReceived)})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	for name, pinger := range h.pingers {
		if pinger == nil {
			continue
		}
		if err := pinger.Health(ctx); err != nil {
			h.logger.WarnContext(ctx, "health check failed", slog.String("dependency", name), slog.Any("error", err))
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "dependency": name})
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeError renders domain errors, expanding conflict banners so the client
// can link each conflicting answer back to its question.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var conflict *commit.ConflictError
	if errors.As(err, &conflict) {
		httputil.WriteJSON(w, http.StatusConflict, map[string]any{
			"error":     string(dErrors.CodeConflict),
			"conflicts": conflict.Items,
		})
		return
	}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "request failed", slog.Any("error", err))
	}
	httputil.WriteError(w, err)
}
