package auth

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"pms/internal/platform/db"
)

type fakeSession struct {
	userID  string
	expires time.Time
	revoked bool
}

type fakeStore struct {
	mu       sync.Mutex
	users    map[string]*fakeUser
	sessions map[string]*fakeSession
	failWith error
}

type fakeUser struct {
	User
	hash      string
	secretEnc []byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[string]*fakeUser{}, sessions: map[string]*fakeSession{}}
}

func (f *fakeStore) CreateUser(_ context.Context, user NewUser) (User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return User{}, f.failWith
	}
	for _, existing := range f.users {
		if existing.Username == user.Username {
			return User{}, db.Classify(&pgconn.PgError{Code: db.CodeUniqueViolation, ConstraintName: "users_username_key"})
		}
		if existing.Email == user.Email {
			return User{}, db.Classify(&pgconn.PgError{Code: db.CodeUniqueViolation, ConstraintName: "users_email_key"})
		}
	}
	created := User{ID: uuid.NewString(), Username: user.Username, Email: user.Email, Role: user.Role, CreatedAt: time.Now()}
	f.users[created.ID] = &fakeUser{User: created, hash: user.PasswordHash}
	return created, nil
}

func (f *fakeStore) CredentialsByUsername(_ context.Context, username string) (Credentials, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return Credentials{}, f.failWith
	}
	for _, u := range f.users {
		if u.Username == username {
			return Credentials{UserID: u.ID, Username: u.Username, Role: u.Role, PasswordHash: u.hash, MFAEnabled: u.MFAEnabled, MFASecretEnc: u.secretEnc}, nil
		}
	}
	return Credentials{}, &db.Error{Kind: db.ErrNotFound}
}

func (f *fakeStore) UserByID(_ context.Context, userID string) (User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return User{}, &db.Error{Kind: db.ErrNotFound}
	}
	return u.User, nil
}

func (f *fakeStore) ListUsers(_ context.Context, role string) ([]User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []User
	for _, u := range f.users {
		if role == "" || u.Role == role {
			out = append(out, u.User)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (f *fakeStore) UpdateLastLogin(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		now := time.Now()
		u.LastLogin = &now
	}
	return nil
}

func (f *fakeStore) CreateSession(_ context.Context, userID, tokenHash string, expires time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[tokenHash] = &fakeSession{userID: userID, expires: expires}
	return nil
}

func (f *fakeStore) SessionActive(_ context.Context, userID, tokenHash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[tokenHash]
	return ok && s.userID == userID && !s.revoked && s.expires.After(time.Now()), nil
}

func (f *fakeStore) RevokeSession(_ context.Context, userID, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[tokenHash]; ok && s.userID == userID {
		s.revoked = true
	}
	return nil
}

func (f *fakeStore) DeleteExpiredSessions(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for hash, s := range f.sessions {
		if s.revoked || s.expires.Before(before) {
			delete(f.sessions, hash)
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) UpdateMFASecret(_ context.Context, userID string, secretEnc []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return &db.Error{Kind: db.ErrNotFound}
	}
	u.secretEnc = secretEnc
	u.MFAEnabled = false
	return nil
}

func (f *fakeStore) GetMFASecret(_ context.Context, userID string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, &db.Error{Kind: db.ErrNotFound}
	}
	return u.secretEnc, nil
}

func (f *fakeStore) SetMFAEnabled(_ context.Context, userID string, enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		u.MFAEnabled = enabled
	}
	return nil
}
