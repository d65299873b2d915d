package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mesh-intelligence/tasktree/pkg/types"
)

// Health handles GET /api/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListLists handles GET /api/lists.
func (h *Handler) ListLists(w http.ResponseWriter, r *http.Request) {
	lists, err := h.svc.ListLists(r.Context(), ownerFrom(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, lists)
}

// GetList handles GET /api/lists/{listID}.
func (h *Handler) GetList(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.GetList(r.Context(), ownerFrom(r), mux.Vars(r)["listID"])
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

type listRequest struct {
	Name string `json:"name"`
}

// CreateList handles POST /api/lists.
func (h *Handler) CreateList(w http.ResponseWriter, r *http.Request) {
	var req listRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, "invalid request payload")
		return
	}
	list, err := h.svc.CreateList(r.Context(), ownerFrom(r), req.Name)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, list)
}

// RenameList handles PUT /api/lists/{listID}.
func (h *Handler) RenameList(w http.ResponseWriter, r *http.Request) {
	var req listRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, "invalid request payload")
		return
	}
	list, err := h.svc.RenameList(r.Context(), ownerFrom(r), mux.Vars(r)["listID"], req.Name)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

// DeleteList handles DELETE /api/lists/{listID}.
func (h *Handler) DeleteList(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.DeleteList(r.Context(), ownerFrom(r), mux.Vars(r)["listID"])
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"message": "list deleted", "removed_tasks": n})
}

// CompactList handles POST /api/lists/{listID}/compact.
func (h *Handler) CompactList(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.CompactPositions(r.Context(), ownerFrom(r), mux.Vars(r)["listID"])
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"changed": n})
}

type createTaskRequest struct {
	Title    string  `json:"title"`
	ListID   string  `json:"list_id"`
	ParentID *string `json:"parent_id"`
}

// CreateTask handles POST /api/tasks.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, "invalid request payload")
		return
	}
	parent := ""
	if req.ParentID != nil {
		parent = *req.ParentID
	}
	task, err := h.svc.CreateTask(r.Context(), ownerFrom(r), req.ListID, parent, req.Title)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, task)
}

// GetTask handles GET /api/tasks/{taskID}.
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.svc.GetTask(r.Context(), ownerFrom(r), mux.Vars(r)["taskID"])
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, task)
}

// UpdateTask handles PUT /api/tasks/{taskID}.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var patch types.TaskPatch
	if err := decode(r, &patch); err != nil {
		h.badRequest(w, "invalid request payload")
		return
	}
	task, err := h.svc.UpdateTask(r.Context(), ownerFrom(r), mux.Vars(r)["taskID"], patch)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, task)
}

// moveRequest keeps raw fields so an absent parent_id can be told apart
// from an explicit null.
type moveRequest map[string]json.RawMessage

func (m moveRequest) target() (types.MoveTarget, bool) {
	var t types.MoveTarget
	if raw, ok := m["list_id"]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &t.ListID); err != nil {
			return t, false
		}
	}
	raw, ok := m["parent_id"]
	switch {
	case !ok:
		t.Parent = types.KeepParent()
	case string(raw) == "null":
		t.Parent = types.RootParent()
	default:
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return t, false
		}
		if id == "" {
			t.Parent = types.RootParent()
		} else {
			t.Parent = types.Parent(id)
		}
	}
	return t, true
}

// MoveTask handles PUT /api/tasks/{taskID}/move.
func (h *Handler) MoveTask(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, "invalid request payload")
		return
	}
	target, ok := req.target()
	if !ok {
		h.badRequest(w, "list_id and parent_id must be strings")
		return
	}
	task, err := h.svc.MoveTask(r.Context(), ownerFrom(r), mux.Vars(r)["taskID"], target)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, task)
}

type reorderRequest struct {
	Direction string `json:"direction"`
}

// ReorderTask handles PUT /api/tasks/{taskID}/reorder.
func (h *Handler) ReorderTask(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, "invalid request payload")
		return
	}
	dir, err := types.ParseDirection(req.Direction)
	if err != nil {
		h.fail(w, err)
		return
	}
	task, err := h.svc.ReorderTask(r.Context(), ownerFrom(r), mux.Vars(r)["taskID"], dir)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/{taskID}.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.DeleteTask(r.Context(), ownerFrom(r), mux.Vars(r)["taskID"])
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"message": "task deleted", "removed": n})
}

// Check handles GET /api/check.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Check(r.Context(), ownerFrom(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"ok": len(v) == 0, "violations": v})
}
