package api

import (
	"log/slog"
	"net/http"

	"github.com/alexanderramin/taskpilot/internal/chat"
	"github.com/alexanderramin/taskpilot/internal/service"
)

// Services are the handlers' collaborators.
type Services struct {
	WorkItems  service.WorkItemService
	Workload   service.WorkloadService
	Risk       service.RiskService
	Assignment service.AssignmentService
	Email      service.EmailService
	Projects   service.ProjectService
	Chat       *chat.Orchestrator
	Sessions   *chat.SessionStore
}

type RouterOptions struct {
	AllowedOrigins []string
	Logger         *slog.Logger
}

type handler struct {
	Services
	origins []string
	logger  *slog.Logger
}

func NewRouter(svc Services, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &handler{Services: svc, origins: opts.AllowedOrigins, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", h.health)

	mux.HandleFunc("GET /api/projects", h.listProjects)
	mux.HandleFunc("GET /api/projects/current", h.currentProject)

	const assign = "/api/automated_task_assignment"
	mux.HandleFunc("GET "+assign+"/fetch_allusers", h.listUsers)
	mux.HandleFunc("GET "+assign+"/fetch_unassigned_tasks", h.listUnassigned)
	mux.HandleFunc("GET "+assign+"/task_counts", h.taskCounts)
	mux.HandleFunc("GET "+assign+"/total_priority", h.totalPriority)
	mux.HandleFunc("POST "+assign+"/update_work_item/{id}/{email}", h.updateWorkItem)
	mux.HandleFunc("POST "+assign+"/bulk_update", h.bulkUpdate)
	mux.HandleFunc("POST "+assign+"/recommend", h.recommend)

	mux.HandleFunc("POST /api/status_report/fetch_pending_tasks/{due_date}", h.pendingTasks)

	mux.HandleFunc("GET /api/risk/filter_risk_items", h.riskItems)
	mux.HandleFunc("POST /api/risk/report", h.riskReport)

	mux.HandleFunc("GET /api/stats/count_work_items_by_state", h.countByState)
	mux.HandleFunc("GET /api/stats/count_work_items_by_assignment", h.countByAssignment)
	mux.HandleFunc("GET /api/stats/count_work_items_by_type", h.countByType)

	mux.HandleFunc("POST /api/email_sender/create_draft", h.createDraft)
	mux.HandleFunc("POST /api/email_sender/generate_email_ai", h.generateEmail)

	mux.HandleFunc("POST /api/chatbot/send_message", h.sendMessage)
	mux.HandleFunc("POST /api/chatbot/reset_chat", h.resetChat)
	mux.HandleFunc("GET /api/chatbot/ws", h.chatSocket)

	return loggingMiddleware(logger)(jsonMiddleware(corsMiddleware(opts.AllowedOrigins)(mux)))
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
