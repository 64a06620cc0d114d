package reportshandler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"pms/internal/domain/auth"
	"pms/internal/domain/performance"
	"pms/internal/platform/requestctx"
	"pms/internal/transport/http/api"
	"pms/internal/transport/http/middleware"
	"pms/internal/transport/http/shared"
)

type Service interface {
	BusinessInsights(ctx context.Context, sess auth.Session) (performance.Insights, error)
	EmployeePerformanceHistory(ctx context.Context, sess auth.Session, employeeID string) (performance.History, error)
	EmployeeGoalsAndTasks(ctx context.Context, sess auth.Session, employeeID string) ([]performance.GoalWithTasks, error)
}

// RenderFunc turns a history into a PDF document.
type RenderFunc func(history performance.History) ([]byte, error)

type Handler struct {
	Service Service
	Render  RenderFunc
}

func NewHandler(service Service, render RenderFunc) *Handler {
	if render == nil {
		render = performance.RenderHistoryPDF
	}
	return &Handler{Service: service, Render: render}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequireRole(auth.RoleManager)).Get("/insights", h.handleInsights)
		r.Get("/history/{employeeID}", h.handleHistory)
		r.Get("/history/{employeeID}/pdf", h.handleHistoryPDF)
		r.Get("/goals-tasks/{employeeID}", h.handleGoalsAndTasks)
	})
}

// handleInsights serves the aggregate view. A datastore failure degrades to
// an empty result flagged by the X-Insights-Degraded header.
func (h *Handler) handleInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := h.Service.BusinessInsights(r.Context(), middleware.GetSession(r.Context()))
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) || errors.Is(err, performance.ErrForbidden) {
			shared.WriteError(w, r, err)
			return
		}
		slog.Warn("insights degraded to empty result", "err", err, "requestId", requestctx.GetRequestID(r.Context()))
		w.Header().Set("X-Insights-Degraded", "true")
	}
	api.Success(w, insights, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.Service.EmployeePerformanceHistory(r.Context(), middleware.GetSession(r.Context()), chi.URLParam(r, "employeeID"))
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, history, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleHistoryPDF(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	history, err := h.Service.EmployeePerformanceHistory(r.Context(), middleware.GetSession(r.Context()), employeeID)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	doc, err := h.Render(history)
	if err != nil {
		slog.Error("history pdf render failed", "employeeId", employeeID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "pdf_render_failed", "failed to render report", requestctx.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=performance-history-%s.pdf", employeeID))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		slog.Warn("write pdf failed", "err", err)
	}
}

func (h *Handler) handleGoalsAndTasks(w http.ResponseWriter, r *http.Request) {
	goals, err := h.Service.EmployeeGoalsAndTasks(r.Context(), middleware.GetSession(r.Context()), chi.URLParam(r, "employeeID"))
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, goals, requestctx.GetRequestID(r.Context()))
}
