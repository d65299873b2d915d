// Package api exposes the tree mutation engine over HTTP with gorilla/mux.
// The caller's identity is read from the X-Owner-ID header, which an
// upstream authenticator is trusted to set.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mesh-intelligence/tasktree/internal/forest"
	"github.com/mesh-intelligence/tasktree/pkg/types"
)

// OwnerHeader carries the authenticated owner id.
const OwnerHeader = "X-Owner-ID"

// Service is the engine surface the handlers call.
type Service interface {
	CreateList(ctx context.Context, owner, name string) (*types.ListView, error)
	RenameList(ctx context.Context, owner, listID, name string) (*types.ListView, error)
	ListLists(ctx context.Context, owner string) ([]*types.ListView, error)
	GetList(ctx context.Context, owner, listID string) (*types.ListView, error)
	DeleteList(ctx context.Context, owner, listID string) (int, error)
	CompactPositions(ctx context.Context, owner, listID string) (int, error)
	CreateTask(ctx context.Context, owner, listID, parentID, title string) (*types.TaskNode, error)
	GetTask(ctx context.Context, owner, taskID string) (*types.TaskNode, error)
	UpdateTask(ctx context.Context, owner, taskID string, patch types.TaskPatch) (*types.TaskNode, error)
	MoveTask(ctx context.Context, owner, taskID string, target types.MoveTarget) (*types.TaskNode, error)
	ReorderTask(ctx context.Context, owner, taskID string, dir types.Direction) (*types.TaskNode, error)
	DeleteTask(ctx context.Context, owner, taskID string) (int, error)
	Check(ctx context.Context, owner string) ([]forest.Violation, error)
}

// Handler serves the REST surface.
type Handler struct {
	svc Service
	log *slog.Logger
}

// NewHandler creates a Handler. A nil logger discards output.
func NewHandler(svc Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{svc: svc, log: log}
}

// NewRouter returns a router with every route registered under /api.
func NewRouter(h *Handler) *mux.Router {
	router := mux.NewRouter()
	RegisterRoutes(router, h)
	return router
}

// RegisterRoutes sets up all routes for the application.
func RegisterRoutes(router *mux.Router, h *Handler) {
	router.Use(h.logRequests)
	router.HandleFunc("/api/health", h.Health).Methods(http.MethodGet)

	owned := router.PathPrefix("/api").Subrouter()
	owned.Use(h.requireOwner)
	owned.HandleFunc("/lists", h.ListLists).Methods(http.MethodGet)
	owned.HandleFunc("/lists", h.CreateList).Methods(http.MethodPost)
	owned.HandleFunc("/lists/{listID}", h.GetList).Methods(http.MethodGet)
	owned.HandleFunc("/lists/{listID}", h.RenameList).Methods(http.MethodPut)
	owned.HandleFunc("/lists/{listID}", h.DeleteList).Methods(http.MethodDelete)
	owned.HandleFunc("/lists/{listID}/compact", h.CompactList).Methods(http.MethodPost)
	owned.HandleFunc("/tasks", h.CreateTask).Methods(http.MethodPost)
	owned.HandleFunc("/tasks/{taskID}", h.GetTask).Methods(http.MethodGet)
	owned.HandleFunc("/tasks/{taskID}", h.UpdateTask).Methods(http.MethodPut)
	owned.HandleFunc("/tasks/{taskID}", h.DeleteTask).Methods(http.MethodDelete)
	owned.HandleFunc("/tasks/{taskID}/move", h.MoveTask).Methods(http.MethodPut)
	owned.HandleFunc("/tasks/{taskID}/reorder", h.ReorderTask).Methods(http.MethodPut)
	owned.HandleFunc("/check", h.Check).Methods(http.MethodGet)
}

type ownerKey struct{}

// requireOwner rejects requests without an owner header.
func (h *Handler) requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := r.Header.Get(OwnerHeader)
		if owner == "" {
			h.writeJSON(w, http.StatusUnauthorized, errorBody{Error: "missing " + OwnerHeader + " header", Code: "unauthorized"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerKey{}, owner)))
	})
}

func ownerFrom(r *http.Request) string {
	owner, _ := r.Context().Value(ownerKey{}).(string)
	return owner
}

// statusRecorder captures the status code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"owner", r.Header.Get(OwnerHeader),
			"duration", time.Since(start))
	})
}

// errorBody is the JSON shape of every failure response.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFor maps a failure kind to its HTTP status.
var statusFor = map[types.Kind]int{
	types.KindNotFound:      http.StatusNotFound,
	types.KindForbidden:     http.StatusForbidden,
	types.KindInvalidInput:  http.StatusBadRequest,
	types.KindInvalidParent: http.StatusBadRequest,
	types.KindCycleDetected: http.StatusBadRequest,
	types.KindInternal:      http.StatusInternalServerError,
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	kind := types.KindOf(err)
	status, ok := statusFor[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	msg := err.Error()
	if kind == types.KindInternal {
		h.log.Error("internal error", "error", err)
		msg = "internal error"
	}
	h.writeJSON(w, status, errorBody{Error: msg, Code: string(kind)})
}

func (h *Handler) badRequest(w http.ResponseWriter, msg string) {
	h.writeJSON(w, http.StatusBadRequest, errorBody{Error: msg, Code: string(types.KindInvalidInput)})
}

// writeJSON sends v with status. The header is already written when
// encoding fails, so the failure is only logged.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warn("encoding response", "status", status, "error", err)
	}
}

// decode reads a JSON object body. An empty body decodes to the zero value.
func decode(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
