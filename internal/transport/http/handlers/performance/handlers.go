package performancehandler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pms/internal/domain/audit"
	"pms/internal/domain/auth"
	"pms/internal/domain/performance"
	"pms/internal/platform/requestctx"
	"pms/internal/transport/http/api"
	"pms/internal/transport/http/middleware"
	"pms/internal/transport/http/shared"
)

type Service interface {
	CreateGoal(ctx context.Context, sess auth.Session, employeeID, title, description string, dueDate time.Time, status string) (performance.Goal, error)
	GoalsByEmployee(ctx context.Context, sess auth.Session, employeeID string) ([]performance.Goal, error)
	GoalsByManager(ctx context.Context, sess auth.Session, managerID string) ([]performance.Goal, error)
	UpdateGoalStatus(ctx context.Context, sess auth.Session, goalID, status string) error
	UpdateGoalAndFeedback(ctx context.Context, sess auth.Session, goalID, status, content string) (*performance.Feedback, error)
	CreateTask(ctx context.Context, sess auth.Session, goalID, title, description string) (performance.Task, error)
	TasksByGoal(ctx context.Context, sess auth.Session, goalID string) ([]performance.Task, error)
	ApproveTask(ctx context.Context, sess auth.Session, taskID string) (performance.Task, error)
	PendingApprovals(ctx context.Context, sess auth.Session) ([]performance.PendingTask, error)
	CreateFeedback(ctx context.Context, sess auth.Session, goalID, content string) (performance.Feedback, error)
	FeedbackByGoal(ctx context.Context, sess auth.Session, goalID string) ([]performance.Feedback, error)
	Dashboard(ctx context.Context, sess auth.Session) (performance.Dashboard, error)
}

type Handler struct {
	Service Service
	Audit   shared.Auditor
}

func NewHandler(service Service, auditor shared.Auditor) *Handler {
	return &Handler{Service: service, Audit: auditor}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	manager := middleware.RequireRole(auth.RoleManager)
	employee := middleware.RequireRole(auth.RoleEmployee)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/dashboard", h.handleDashboard)

		r.Route("/goals", func(r chi.Router) {
			r.With(manager).Post("/", h.handleCreateGoal)
			r.Get("/employee/{employeeID}", h.handleGoalsByEmployee)
			r.With(manager).Get("/manager", h.handleGoalsByManager)
			r.With(manager).Get("/manager/{managerID}", h.handleGoalsByManager)
			r.With(manager).Put("/{goalID}/status", h.handleUpdateStatus)
			r.Get("/{goalID}/tasks", h.handleListTasks)
			r.With(employee).Post("/{goalID}/tasks", h.handleCreateTask)
			r.Get("/{goalID}/feedback", h.handleListFeedback)
			r.With(manager).Post("/{goalID}/feedback", h.handleCreateFeedback)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.With(manager).Get("/pending", h.handlePendingApprovals)
			r.With(manager).Post("/{taskID}/approve", h.handleApproveTask)
		})
	})
}

type createGoalRequest struct {
	EmployeeID  string `json:"employeeId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Status      string `json:"status"`
}

type updateStatusRequest struct {
	Status   string `json:"status"`
	Feedback string `json:"feedback"`
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type createFeedbackRequest struct {
	Content string `json:"content"`
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.Service.Dashboard(r.Context(), middleware.GetSession(r.Context()))
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, dashboard, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var payload createGoalRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID)
	v.Required("title", payload.Title)
	v.MaxLen("title", payload.Title, 200)
	v.Enum("status", payload.Status, performance.Statuses)
	dueDate, _ := v.Date("dueDate", payload.DueDate)
	if v.Reject(w, r) {
		return
	}

	sess := middleware.GetSession(r.Context())
	goal, err := h.Service.CreateGoal(r.Context(), sess, payload.EmployeeID, payload.Title, payload.Description, dueDate, payload.Status)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.Audit(r.Context(), h.Audit, sess.UserID, audit.ActionCreate, audit.EntityGoal, goal.ID, nil, goal)
	api.Created(w, goal, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleGoalsByEmployee(w http.ResponseWriter, r *http.Request) {
	goals, err := h.Service.GoalsByEmployee(r.Context(), middleware.GetSession(r.Context()), chi.URLParam(r, "employeeID"))
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, goals, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleGoalsByManager(w http.ResponseWriter, r *http.Request) {
	goals, err := h.Service.GoalsByManager(r.Context(), middleware.GetSession(r.Context()), chi.URLParam(r, "managerID"))
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, goals, requestctx.GetRequestID(r.Context()))
}

// handleUpdateStatus overwrites a goal's status. When feedback text is
// present the status change and the feedback are written together.
func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var payload updateStatusRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("status", payload.Status)
	v.Enum("status", payload.Status, performance.Statuses)
	if v.Reject(w, r) {
		return
	}

	sess := middleware.GetSession(r.Context())
	goalID := chi.URLParam(r, "goalID")
	response := map[string]any{"goalId": goalID, "status": payload.Status}
	if strings.TrimSpace(payload.Feedback) == "" {
		if err := h.Service.UpdateGoalStatus(r.Context(), sess, goalID, payload.Status); err != nil {
			shared.WriteError(w, r, err)
			return
		}
	} else {
		feedback, err := h.Service.UpdateGoalAndFeedback(r.Context(), sess, goalID, payload.Status, payload.Feedback)
		if err != nil {
			shared.WriteError(w, r, err)
			return
		}
		if feedback != nil {
			response["feedback"] = feedback
			shared.Audit(r.Context(), h.Audit, sess.UserID, audit.ActionCreate, audit.EntityFeedback, feedback.ID, nil, feedback)
		}
	}
	shared.Audit(r.Context(), h.Audit, sess.UserID, audit.ActionUpdate, audit.EntityGoal, goalID, nil, map[string]string{"status": payload.Status})
	api.Success(w, response, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Service.TasksByGoal(r.Context(), middleware.GetSession(r.Context()), chi.URLParam(r, "goalID"))
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, tasks, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var payload createTaskRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("title", payload.Title)
	v.MaxLen("title", payload.Title, 200)
	if v.Reject(w, r) {
		return
	}

	sess := middleware.GetSession(r.Context())
	task, err := h.Service.CreateTask(r.Context(), sess, chi.URLParam(r, "goalID"), payload.Title, payload.Description)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.Audit(r.Context(), h.Audit, sess.UserID, audit.ActionCreate, audit.EntityTask, task.ID, nil, task)
	api.Created(w, task, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleApproveTask(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	task, err := h.Service.ApproveTask(r.Context(), sess, chi.URLParam(r, "taskID"))
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.Audit(r.Context(), h.Audit, sess.UserID, audit.ActionApprove, audit.EntityTask, task.ID, nil, task)
	api.Success(w, task, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handlePendingApprovals(w http.ResponseWriter, r *http.Request) {
	pending, err := h.Service.PendingApprovals(r.Context(), middleware.GetSession(r.Context()))
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, pending, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	feedback, err := h.Service.FeedbackByGoal(r.Context(), middleware.GetSession(r.Context()), chi.URLParam(r, "goalID"))
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, feedback, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateFeedback(w http.ResponseWriter, r *http.Request) {
	var payload createFeedbackRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("content", payload.Content)
	if v.Reject(w, r) {
		return
	}

	sess := middleware.GetSession(r.Context())
	feedback, err := h.Service.CreateFeedback(r.Context(), sess, chi.URLParam(r, "goalID"), payload.Content)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.Audit(r.Context(), h.Audit, sess.UserID, audit.ActionCreate, audit.EntityFeedback, feedback.ID, nil, feedback)
	api.Created(w, feedback, requestctx.GetRequestID(r.Context()))
}
