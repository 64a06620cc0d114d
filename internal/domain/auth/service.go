package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"

	cryptoutil "pms/internal/platform/crypto"
	"pms/internal/platform/db"
)

type Options struct {
	Secret     string
	SessionTTL time.Duration
	MFAIssuer  string
}

type Service struct {
	store  StoreAPI
	crypto *cryptoutil.Service
	opts   Options
	now    func() time.Time
}

func NewService(store StoreAPI, crypto *cryptoutil.Service, opts Options) *Service {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 8 * time.Hour
	}
	if opts.MFAIssuer == "" {
		opts.MFAIssuer = "PMS"
	}
	return &Service{store: store, crypto: crypto, opts: opts, now: time.Now}
}

// CreateUser registers an account. A taken username or email yields
// ErrDuplicateUser and leaves the existing row untouched.
func (s *Service) CreateUser(ctx context.Context, username, password, email, role string) (User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return User{}, fmt.Errorf("%w: username, password and email are required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return User{}, fmt.Errorf("%w: email is not valid", ErrInvalidInput)
	}
	if !ValidRole(role) {
		return User{}, ErrInvalidRole
	}

	hash, err := HashPassword(password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return User{}, fmt.Errorf("%w: password is too long", ErrInvalidInput)
		}
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, NewUser{Username: username, Email: email, PasswordHash: hash, Role: role})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, ErrDuplicateUser
		}
		return User{}, logFailure("create user", err, "username", username)
	}
	return user, nil
}

// AuthenticateUser verifies a username and password. Unknown usernames and
// wrong passwords both return ErrInvalidCredentials.
func (s *Service) AuthenticateUser(ctx context.Context, username, password string) (Identity, error) {
	creds, err := s.verify(ctx, username, password)
	if err != nil {
		return Identity{}, err
	}
	return Identity{UserID: creds.UserID, Username: creds.Username, Role: creds.Role}, nil
}

func (s *Service) verify(ctx context.Context, username, password string) (Credentials, error) {
	creds, err := s.store.CredentialsByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return Credentials{}, ErrInvalidCredentials
		}
		return Credentials{}, logFailure("authenticate user", err)
	}
	if err := CheckPassword(creds.PasswordHash, password); err != nil {
		return Credentials{}, ErrInvalidCredentials
	}
	return creds, nil
}

// Login authenticates, checks the TOTP code when MFA is on, opens a session
// row and returns a signed token bound to it.
func (s *Service) Login(ctx context.Context, username, password, mfaCode string) (LoginResult, error) {
	creds, err := s.verify(ctx, username, password)
	if err != nil {
		return LoginResult{}, err
	}

	if creds.MFAEnabled {
		if strings.TrimSpace(mfaCode) == "" {
			return LoginResult{}, ErrMFARequired
		}
		secret, err := s.decryptSecret(creds.MFASecretEnc)
		if err != nil || secret == "" || !totp.Validate(strings.TrimSpace(mfaCode), secret) {
			return LoginResult{}, ErrMFAInvalid
		}
	}

	raw, err := newSessionToken()
	if err != nil {
		return LoginResult{}, fmt.Errorf("generate session id: %w", err)
	}
	expires := s.now().Add(s.opts.SessionTTL)
	if err := s.store.CreateSession(ctx, creds.UserID, HashToken(raw), expires); err != nil {
		return LoginResult{}, logFailure("create session", err, "userId", creds.UserID)
	}

	token, err := GenerateToken(s.opts.Secret, Claims{
		UserID:    creds.UserID,
		Username:  creds.Username,
		Role:      creds.Role,
		SessionID: raw,
	}, s.opts.SessionTTL)
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign token: %w", err)
	}

	if err := s.store.UpdateLastLogin(ctx, creds.UserID); err != nil {
		slog.Warn("update last_login failed", "userId", creds.UserID, "err", err)
	}

	return LoginResult{
		Token:     token,
		ExpiresAt: expires,
		User:      Identity{UserID: creds.UserID, Username: creds.Username, Role: creds.Role},
	}, nil
}

func (s *Service) Logout(ctx context.Context, sess Session) error {
	if !sess.Authenticated {
		return ErrUnauthenticated
	}
	if err := s.store.RevokeSession(ctx, sess.UserID, HashToken(sess.SessionID)); err != nil {
		return logFailure("revoke session", err, "userId", sess.UserID)
	}
	return nil
}

// Authenticate turns a bearer token into a live session.
func (s *Service) Authenticate(ctx context.Context, token string) (Session, error) {
	claims, err := ParseToken(s.opts.Secret, token)
	if err != nil {
		return Session{}, ErrUnauthenticated
	}
	return s.ResolveSession(ctx, claims)
}

// ResolveSession accepts claims only while their session row exists, has not
// expired and has not been revoked.
func (s *Service) ResolveSession(ctx context.Context, claims *Claims) (Session, error) {
	if claims == nil || claims.UserID == "" || claims.SessionID == "" || !ValidRole(claims.Role) {
		return Session{}, ErrUnauthenticated
	}
	active, err := s.store.SessionActive(ctx, claims.UserID, HashToken(claims.SessionID))
	if err != nil {
		return Session{}, logFailure("resolve session", err, "userId", claims.UserID)
	}
	if !active {
		return Session{}, ErrSessionExpired
	}
	return Session{
		Authenticated: true,
		UserID:        claims.UserID,
		Username:      claims.Username,
		Role:          claims.Role,
		SessionID:     claims.SessionID,
	}, nil
}

func (s *Service) CurrentUser(ctx context.Context, sess Session) (User, error) {
	if !sess.Authenticated {
		return User{}, ErrUnauthenticated
	}
	user, err := s.store.UserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return User{}, ErrUserNotFound
		}
		return User{}, logFailure("load user", err, "userId", sess.UserID)
	}
	return user, nil
}

// ListUsers returns accounts ordered by username, optionally narrowed to one
// role.
func (s *Service) ListUsers(ctx context.Context, role string) ([]User, error) {
	if role != "" && !ValidRole(role) {
		return nil, ErrInvalidRole
	}
	users, err := s.store.ListUsers(ctx, role)
	if err != nil {
		return nil, logFailure("list users", err)
	}
	return users, nil
}

// CleanupSessions drops expired and revoked sessions.
func (s *Service) CleanupSessions(ctx context.Context) (int64, error) {
	return s.store.DeleteExpiredSessions(ctx, s.now())
}

func (s *Service) SetupMFA(ctx context.Context, sess Session) (MFASetup, error) {
	if !sess.Authenticated {
		return MFASetup{}, ErrUnauthenticated
	}
	if s.crypto == nil || !s.crypto.Configured() {
		return MFASetup{}, ErrMFAUnavailable
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.opts.MFAIssuer,
		AccountName: sess.Username,
		Period:      30,
		Digits:      otp.DigitsSix,
	})
	if err != nil {
		return MFASetup{}, fmt.Errorf("generate mfa secret: %w", err)
	}
	encrypted, err := s.crypto.EncryptString(key.Secret())
	if err != nil {
		return MFASetup{}, fmt.Errorf("encrypt mfa secret: %w", err)
	}
	if err := s.store.UpdateMFASecret(ctx, sess.UserID, encrypted); err != nil {
		return MFASetup{}, logFailure("store mfa secret", err, "userId", sess.UserID)
	}
	return MFASetup{Secret: key.Secret(), OTPAuthURL: key.URL()}, nil
}

func (s *Service) EnableMFA(ctx context.Context, sess Session, code string) error {
	return s.toggleMFA(ctx, sess, code, true)
}

func (s *Service) DisableMFA(ctx context.Context, sess Session, code string) error {
	return s.toggleMFA(ctx, sess, code, false)
}

func (s *Service) toggleMFA(ctx context.Context, sess Session, code string, enabled bool) error {
	if !sess.Authenticated {
		return ErrUnauthenticated
	}
	if s.crypto == nil || !s.crypto.Configured() {
		return ErrMFAUnavailable
	}
	secretEnc, err := s.store.GetMFASecret(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrMFANotSetup
		}
		return logFailure("load mfa secret", err, "userId", sess.UserID)
	}
	if len(secretEnc) == 0 {
		return ErrMFANotSetup
	}
	secret, err := s.decryptSecret(secretEnc)
	if err != nil {
		return ErrMFAInvalid
	}
	if !totp.Validate(strings.TrimSpace(code), secret) {
		return ErrMFAInvalid
	}
	if err := s.store.SetMFAEnabled(ctx, sess.UserID, enabled); err != nil {
		return logFailure("update mfa flag", err, "userId", sess.UserID)
	}
	return nil
}

func (s *Service) decryptSecret(secretEnc []byte) (string, error) {
	if s.crypto == nil {
		return string(secretEnc), nil
	}
	return s.crypto.DecryptString(secretEnc)
}

// logFailure records an unexpected datastore failure once, at the domain
// boundary, and wraps it for the caller.
func logFailure(op string, err error, attrs ...any) error {
	slog.Error(op+" failed", append(attrs, "err", err)...)
	return fmt.Errorf("%s: %w", op, err)
}
