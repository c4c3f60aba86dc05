package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/alexanderramin/taskpilot/internal/service"
)

// dueDateLayout is the path format of fetch_pending_tasks.
const dueDateLayout = "2006-01-02"

func (h *handler) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Projects.List(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(projects))
}

func (h *handler) currentProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.Projects.Current(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, project)
}

func (h *handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Workload.Users(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(users))
}

func (h *handler) listUnassigned(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.WorkItems.Unassigned(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(tasks))
}

func (h *handler) taskCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Workload.TaskCounts(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, counts)
}

func (h *handler) totalPriority(w http.ResponseWriter, r *http.Request) {
	totals, err := h.Workload.TotalPriorityByUser(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, totals)
}

func (h *handler) updateWorkItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, fmt.Sprintf("invalid work item id %q", r.PathValue("id")))
		return
	}
	email := r.PathValue("email")
	task, err := h.WorkItems.Assign(r.Context(), id, email)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"message":   fmt.Sprintf("work item %d assigned to %s", id, email),
		"work_item": task,
	})
}

type bulkUpdateRequest struct {
	Assignments []service.Assignment `json:"assignments"`
}

type bulkUpdateResponse struct {
	Results   []service.AssignmentResult `json:"results"`
	Succeeded int                        `json:"succeeded"`
	Failed    int                        `json:"failed"`
}

func (h *handler) bulkUpdate(w http.ResponseWriter, r *http.Request) {
	var req bulkUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Assignments) == 0 {
		jsonError(w, http.StatusBadRequest, "assignments must not be empty")
		return
	}

	resp := bulkUpdateResponse{Results: h.WorkItems.BulkAssign(r.Context(), req.Assignments)}
	for _, res := range resp.Results {
		if res.Success {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}
	jsonResponse(w, http.StatusOK, resp)
}

type recommendRequest struct {
	WorkItemIDs []int `json:"work_item_ids"`
}

func (h *handler) recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	recs, err := h.Assignment.Recommend(r.Context(), req.WorkItemIDs)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"recommendations": emptyIfNil(recs)})
}

func (h *handler) pendingTasks(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("due_date")
	due, err := time.Parse(dueDateLayout, raw)
	if err != nil {
		jsonError(w, http.StatusBadRequest, fmt.Sprintf("due date %q must look like %s", raw, dueDateLayout))
		return
	}
	tasks, err := h.WorkItems.Pending(r.Context(), due)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(tasks))
}

func (h *handler) riskItems(w http.ResponseWriter, r *http.Request) {
	rep, err := h.Risk.RiskItems(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	rep.Items = emptyIfNil(rep.Items)
	jsonResponse(w, http.StatusOK, rep)
}

func (h *handler) riskReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.Risk.RiskReport(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	rep.Items = emptyIfNil(rep.Items)
	jsonResponse(w, http.StatusOK, rep)
}

func (h *handler) countByState(w http.ResponseWriter, r *http.Request) {
	h.writeCounts(w, r, h.WorkItems.CountByState)
}

func (h *handler) countByAssignment(w http.ResponseWriter, r *http.Request) {
	h.writeCounts(w, r, h.WorkItems.CountByAssignment)
}

func (h *handler) countByType(w http.ResponseWriter, r *http.Request) {
	h.writeCounts(w, r, h.WorkItems.CountByType)
}

func (h *handler) writeCounts(w http.ResponseWriter, r *http.Request, count func(context.Context) (map[string]int, error)) {
	counts, err := count(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, counts)
}

// emptyIfNil keeps list endpoints from answering null.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
