package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/terastudio-org/BaileysHelper/internal/events"
	"github.com/terastudio-org/BaileysHelper/internal/metrics"
	"github.com/terastudio-org/BaileysHelper/internal/nativeflow"
	"github.com/terastudio-org/BaileysHelper/internal/store"
	"github.com/terastudio-org/BaileysHelper/internal/throttle"
	"github.com/terastudio-org/BaileysHelper/internal/transport"
)

// DuplicateChecker is the subset of idempotency behavior the send path needs.
type DuplicateChecker interface {
	IsDuplicate(ctx context.Context, requestID string) (bool, error)
	Release(ctx context.Context, requestID string) error
}

// EventPublisher is the subset of event publishing the send path needs.
type EventPublisher interface {
	Publish(event events.MessageSent) error
}

// Handler wires the HTTP surface. The duplicate checker and event
// publisher are optional; pass nil to run without them.
type Handler struct {
	transport transport.Transport
	store     store.Store
	throttle  *throttle.Throttle
	idem      DuplicateChecker
	events    EventPublisher
	metrics   *metrics.Collector
	apiToken  string
}

func NewHandler(
	t transport.Transport,
	s store.Store,
	th *throttle.Throttle,
	idem DuplicateChecker,
	ev EventPublisher,
	m *metrics.Collector,
	apiToken string,
) *Handler {
	return &Handler{
		transport: t,
		store:     s,
		throttle:  th,
		idem:      idem,
		events:    ev,
		metrics:   m,
		apiToken:  apiToken,
	}
}

// Version is reported by the health endpoint.
const Version = "0.3.0"

// Routes mounts every endpoint on r. Health and metrics stay open; the
// /v1 API requires the bearer token.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":   "ok",
			"version":  Version,
			"provider": h.transport.Provider(),
		})
	})
	r.Get("/metrics", h.metrics.Handler().ServeHTTP)

	r.Route("/v1", func(r chi.Router) {
		r.Use(h.requireAuth)

		r.Post("/messages", h.handleSend)
		r.Post("/messages/validate", h.handleValidate)
		r.Post("/messages/preview", h.handlePreview)

		r.Get("/templates", h.handleListTemplates)
		r.Put("/templates/{name}", h.handleSaveTemplate)
		r.Get("/templates/{name}", h.handleGetTemplate)
		r.Delete("/templates/{name}", h.handleDeleteTemplate)
		r.Post("/templates/{name}/send", h.handleSendTemplate)
	})
}

func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, "authorization header is required")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			writeError(w, http.StatusUnauthorized, "invalid authorization header format")
			return
		}
		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(h.apiToken)) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// messagePayload is the caller-facing message shape: config fields plus
// the raw button list.
type messagePayload struct {
	nativeflow.MessageConfig
	Buttons []any `json:"buttons"`
}

type sendRequest struct {
	To        string         `json:"to"`
	RequestID string         `json:"requestId"`
	Ephemeral bool           `json:"ephemeral"`
	Message   messagePayload `json:"message"`
}

type sendResponse struct {
	MessageID string `json:"messageId,omitempty"`
	Provider  string `json:"provider,omitempty"`
	Status    string `json:"status"`
	RequestID string `json:"requestId"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	h.send(w, r, req, "")
}

// send runs the shared delivery flow for ad-hoc and template sends.
func (h *Handler) send(w http.ResponseWriter, r *http.Request, req sendRequest, templateName string) {
	if req.To == "" {
		writeError(w, http.StatusBadRequest, "to is required")
		return
	}
	if req.RequestID == "" {
		req.RequestID = uuid.Must(uuid.NewV7()).String()
	}

	if h.idem != nil {
		duplicate, err := h.idem.IsDuplicate(r.Context(), req.RequestID)
		if err != nil {
			// Redis being down must not block sends.
			log.Printf("api: idempotency check: %v", err)
		} else if duplicate {
			writeJSON(w, http.StatusOK, sendResponse{
				Status:    "duplicate",
				RequestID: req.RequestID,
				Duplicate: true,
			})
			return
		}
	}

	if !h.throttle.Allow(req.To) {
		h.releaseClaim(r, req.RequestID)
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded for destination")
		return
	}

	envelope, err := nativeflow.Prepare(req.Message.MessageConfig, req.Message.Buttons)
	if err != nil {
		h.releaseClaim(r, req.RequestID)
		h.metrics.MessageRejected()
		var verr *nativeflow.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusUnprocessableEntity, verr)
			return
		}
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	// The request id doubles as the client-assigned message id so the
	// gateway can dedupe on its side as well.
	opts := transport.DeliverOptions{MessageID: req.RequestID, Ephemeral: req.Ephemeral}

	var result *transport.DeliveryResult
	deliverErr := h.throttle.WithLock(req.To, func() error {
		var err error
		result, err = h.transport.Deliver(r.Context(), req.To, envelope, opts)
		return err
	})
	if deliverErr != nil {
		h.releaseClaim(r, req.RequestID)
		log.Printf("api: delivering to %s: %v", req.To, deliverErr)
		writeError(w, http.StatusBadGateway, "gateway delivery failed")
		return
	}

	h.metrics.MessageSent()
	if h.events != nil {
		event := events.MessageSent{
			MessageID: result.MessageID,
			To:        req.To,
			Provider:  result.Provider,
			Template:  templateName,
			Timestamp: time.Now().UTC(),
		}
		if err := h.events.Publish(event); err != nil {
			log.Printf("api: publishing sent event: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, sendResponse{
		MessageID: result.MessageID,
		Provider:  result.Provider,
		Status:    "sent",
		RequestID: req.RequestID,
	})
}

// releaseClaim frees an idempotency claim after a failed send so the
// caller can retry with the same request id.
func (h *Handler) releaseClaim(r *http.Request, requestID string) {
	if h.idem == nil {
		return
	}
	if err := h.idem.Release(r.Context(), requestID); err != nil {
		log.Printf("api: releasing idempotency claim %s: %v", requestID, err)
	}
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var payload messagePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// A lint endpoint: invalid input is still a successful validation run.
	result := nativeflow.Validate(payload.MessageConfig, payload.Buttons)
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	var payload messagePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	envelope, err := nativeflow.Prepare(payload.MessageConfig, payload.Buttons)
	if err != nil {
		var verr *nativeflow.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusUnprocessableEntity, verr)
			return
		}
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, envelope)
}

func (h *Handler) handleSaveTemplate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var payload messagePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// Reject broken templates at save time, not at send time.
	result := nativeflow.Validate(payload.MessageConfig, payload.Buttons)
	if !result.IsValid {
		writeJSON(w, http.StatusUnprocessableEntity, nativeflow.ValidationFailed("saving template "+name, result))
		return
	}

	t := store.Template{
		Name:    name,
		Config:  payload.MessageConfig,
		Buttons: payload.Buttons,
	}
	if err := h.store.SaveTemplate(t); err != nil {
		log.Printf("api: saving template %s: %v", name, err)
		writeError(w, http.StatusInternalServerError, "failed to save template")
		return
	}

	saved, err := h.store.GetTemplate(name)
	if err != nil {
		log.Printf("api: reloading template %s: %v", name, err)
		writeError(w, http.StatusInternalServerError, "failed to save template")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *Handler) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	t, err := h.store.GetTemplate(name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "template not found")
			return
		}
		log.Printf("api: loading template %s: %v", name, err)
		writeError(w, http.StatusInternalServerError, "failed to load template")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := h.store.DeleteTemplate(name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "template not found")
			return
		}
		log.Printf("api: deleting template %s: %v", name, err)
		writeError(w, http.StatusInternalServerError, "failed to delete template")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.store.ListTemplates()
	if err != nil {
		log.Printf("api: listing templates: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list templates")
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

type templateSendRequest struct {
	To        string `json:"to"`
	RequestID string `json:"requestId"`
	Ephemeral bool   `json:"ephemeral"`
}

func (h *Handler) handleSendTemplate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	t, err := h.store.GetTemplate(name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "template not found")
			return
		}
		log.Printf("api: loading template %s: %v", name, err)
		writeError(w, http.StatusInternalServerError, "failed to load template")
		return
	}

	var req templateSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	h.send(w, r, sendRequest{
		To:        req.To,
		RequestID: req.RequestID,
		Ephemeral: req.Ephemeral,
		Message:   messagePayload{MessageConfig: t.Config, Buttons: t.Buttons},
	}, name)
}
