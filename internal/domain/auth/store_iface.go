package auth

import (
	"context"
	"time"
)

type StoreAPI interface {
	CreateUser(ctx context.Context, user NewUser) (User, error)
	CredentialsByUsername(ctx context.Context, username string) (Credentials, error)
	UserByID(ctx context.Context, userID string) (User, error)
	ListUsers(ctx context.Context, role string) ([]User, error)
	UpdateLastLogin(ctx context.Context, userID string) error
	CreateSession(ctx context.Context, userID, tokenHash string, expires time.Time) error
	SessionActive(ctx context.Context, userID, tokenHash string) (bool, error)
	RevokeSession(ctx context.Context, userID, tokenHash string) error
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)
	UpdateMFASecret(ctx context.Context, userID string, secretEnc []byte) error
	GetMFASecret(ctx context.Context, userID string) ([]byte, error)
	SetMFAEnabled(ctx context.Context, userID string, enabled bool) error
}
