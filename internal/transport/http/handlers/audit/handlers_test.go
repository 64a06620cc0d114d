package audithandler

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"pms/internal/domain/audit"
	"pms/internal/domain/auth"
	"pms/internal/transport/http/middleware"
)

type fakeService struct {
	filter audit.Filter
	limit  int
	events []audit.Event
}

func (f *fakeService) Count(_ context.Context, filter audit.Filter) (int, error) {
	f.filter = filter
	return len(f.events), nil
}

func (f *fakeService) List(_ context.Context, filter audit.Filter, _ bool, limit, _ int) ([]audit.Event, error) {
	f.filter = filter
	f.limit = limit
	return f.events, nil
}

func serve(svc *fakeService, sess auth.Session, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithSession(req.Context(), sess)))
		})
	})
	NewHandler(svc).RegisterRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestListEventsFiltersAndTotals(t *testing.T) {
	actor := "m1"
	svc := &fakeService{events: []audit.Event{{ID: 1, ActorID: &actor, Action: audit.ActionCreate, EntityType: audit.EntityGoal}}}
	manager := auth.Session{Authenticated: true, UserID: "m1", Role: auth.RoleManager}

	rec := serve(svc, manager, "/audit?action=create&entityType=goal&limit=900")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Total-Count") != "1" {
		t.Fatalf("expected total header, got %q", rec.Header().Get("X-Total-Count"))
	}
	if svc.filter.Action != "create" || svc.filter.EntityType != "goal" || svc.limit != 500 {
		t.Fatalf("unexpected filter %+v limit %d", svc.filter, svc.limit)
	}
}

func TestAuditIsManagerOnly(t *testing.T) {
	employee := auth.Session{Authenticated: true, UserID: "e1", Role: auth.RoleEmployee}
	if rec := serve(&fakeService{}, employee, "/audit"); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestExportWritesCSV(t *testing.T) {
	svc := &fakeService{events: []audit.Event{
		{ID: 7, Action: audit.ActionLogin, EntityType: audit.EntitySession, EntityID: "e1", CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
	}}
	manager := auth.Session{Authenticated: true, UserID: "m1", Role: auth.RoleManager}
	rec := serve(svc, manager, "/audit/export")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "text/csv" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	rows, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 2 || rows[1][0] != "7" || rows[1][1] != "" || rows[1][7] != "2026-01-02T03:04:05Z" {
		t.Fatalf("unexpected rows %v", rows)
	}
	if svc.limit != exportLimit {
		t.Fatalf("expected export limit, got %d", svc.limit)
	}
}
