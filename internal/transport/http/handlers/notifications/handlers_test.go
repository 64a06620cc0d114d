package notificationshandler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"pms/internal/domain/auth"
	"pms/internal/domain/notifications"
	"pms/internal/transport/http/middleware"
)

type fakeService struct {
	userID     string
	unreadOnly bool
	read       map[string]bool
}

func (f *fakeService) List(_ context.Context, userID string, unreadOnly bool, _, _ int) ([]notifications.Notification, int, error) {
	f.userID = userID
	f.unreadOnly = unreadOnly
	return []notifications.Notification{{ID: "n1", Type: notifications.TypeGoalCreated}}, 1, nil
}

func (f *fakeService) MarkRead(_ context.Context, _, notificationID string) error {
	if !f.read[notificationID] {
		return notifications.ErrNotFound
	}
	return nil
}

func serve(svc *fakeService, sess auth.Session, method, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithSession(req.Context(), sess)))
		})
	})
	NewHandler(svc).RegisterRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestListScopesToCaller(t *testing.T) {
	svc := &fakeService{}
	sess := auth.Session{Authenticated: true, UserID: "e1", Role: auth.RoleEmployee}
	rec := serve(svc, sess, http.MethodGet, "/notifications?unread=true")
	if rec.Code != http.StatusOK || svc.userID != "e1" || !svc.unreadOnly {
		t.Fatalf("unexpected list call %d %+v", rec.Code, svc)
	}
	if rec.Header().Get("X-Total-Count") != "1" {
		t.Fatalf("expected total header, got %q", rec.Header().Get("X-Total-Count"))
	}
	if rec := serve(svc, auth.Session{}, http.MethodGet, "/notifications"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestMarkRead(t *testing.T) {
	svc := &fakeService{read: map[string]bool{"n1": true}}
	sess := auth.Session{Authenticated: true, UserID: "e1", Role: auth.RoleEmployee}
	if rec := serve(svc, sess, http.MethodPost, "/notifications/n1/read"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := serve(svc, sess, http.MethodPost, "/notifications/n2/read"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
