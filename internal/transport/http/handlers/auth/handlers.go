package authhandler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pms/internal/domain/audit"
	"pms/internal/domain/auth"
	"pms/internal/platform/requestctx"
	"pms/internal/transport/http/api"
	"pms/internal/transport/http/middleware"
	"pms/internal/transport/http/shared"
)

type Service interface {
	CreateUser(ctx context.Context, username, password, email, role string) (auth.User, error)
	Login(ctx context.Context, username, password, mfaCode string) (auth.LoginResult, error)
	Logout(ctx context.Context, sess auth.Session) error
	CurrentUser(ctx context.Context, sess auth.Session) (auth.User, error)
	ListUsers(ctx context.Context, role string) ([]auth.User, error)
	SetupMFA(ctx context.Context, sess auth.Session) (auth.MFASetup, error)
	EnableMFA(ctx context.Context, sess auth.Session, code string) error
	DisableMFA(ctx context.Context, sess auth.Session, code string) error
}

type Handler struct {
	Service      Service
	Audit        shared.Auditor
	AllowSignup  bool
	SecureCookie bool
}

func NewHandler(service Service, auditor shared.Auditor, allowSignup, secureCookie bool) *Handler {
	return &Handler{Service: service, Audit: auditor, AllowSignup: allowSignup, SecureCookie: secureCookie}
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	MFACode  string `json:"mfaCode"`
}

type mfaCodeRequest struct {
	Code string `json:"code"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.handleRegister)
		r.Post("/login", h.handleLogin)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/logout", h.handleLogout)
			r.Get("/me", h.handleMe)
			r.Post("/mfa/setup", h.handleMFASetup)
			r.Post("/mfa/enable", h.handleMFAEnable)
			r.Post("/mfa/disable", h.handleMFADisable)
		})
	})
	r.With(middleware.RequireRole(auth.RoleManager)).Get("/users", h.handleListUsers)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !h.AllowSignup {
		api.Fail(w, http.StatusForbidden, "signup_disabled", "self registration is disabled", requestctx.GetRequestID(r.Context()))
		return
	}
	var payload registerRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("username", payload.Username)
	v.Required("password", payload.Password)
	v.Required("email", payload.Email)
	v.Required("role", payload.Role)
	v.Enum("role", payload.Role, auth.Roles)
	v.MaxLen("username", payload.Username, 64)
	if v.Reject(w, r) {
		return
	}

	user, err := h.Service.CreateUser(r.Context(), payload.Username, payload.Password, payload.Email, payload.Role)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.Audit(r.Context(), h.Audit, user.ID, audit.ActionCreate, audit.EntityUser, user.ID, nil, user)
	api.Created(w, user, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("username", payload.Username)
	v.Required("password", payload.Password)
	if v.Reject(w, r) {
		return
	}

	result, err := h.Service.Login(r.Context(), payload.Username, payload.Password, payload.MFACode)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.ExpiresAt,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	shared.Audit(r.Context(), h.Audit, result.User.UserID, audit.ActionLogin, audit.EntitySession, result.User.UserID, nil, nil)
	api.Success(w, result, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	if err := h.Service.Logout(r.Context(), sess); err != nil {
		shared.WriteError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	shared.Audit(r.Context(), h.Audit, sess.UserID, audit.ActionLogout, audit.EntitySession, sess.UserID, nil, nil)
	api.Success(w, map[string]string{"status": "logged_out"}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.Service.CurrentUser(r.Context(), middleware.GetSession(r.Context()))
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, user, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	v := shared.NewValidator()
	v.Enum("role", role, auth.Roles)
	if v.Reject(w, r) {
		return
	}
	users, err := h.Service.ListUsers(r.Context(), role)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, users, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleMFASetup(w http.ResponseWriter, r *http.Request) {
	setup, err := h.Service.SetupMFA(r.Context(), middleware.GetSession(r.Context()))
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, setup, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleMFAEnable(w http.ResponseWriter, r *http.Request) {
	h.toggleMFA(w, r, true)
}

func (h *Handler) handleMFADisable(w http.ResponseWriter, r *http.Request) {
	h.toggleMFA(w, r, false)
}

func (h *Handler) toggleMFA(w http.ResponseWriter, r *http.Request, enable bool) {
	var payload mfaCodeRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("code", payload.Code)
	if v.Reject(w, r) {
		return
	}

	sess := middleware.GetSession(r.Context())
	var err error
	if enable {
		err = h.Service.EnableMFA(r.Context(), sess, payload.Code)
	} else {
		err = h.Service.DisableMFA(r.Context(), sess, payload.Code)
	}
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.Audit(r.Context(), h.Audit, sess.UserID, audit.ActionUpdate, audit.EntityUser, sess.UserID, nil, map[string]bool{"mfaEnabled": enable})
	api.Success(w, map[string]bool{"mfaEnabled": enable}, requestctx.GetRequestID(r.Context()))
}
