package auth

import (
	"context"
	"time"

	"pms/internal/platform/db"
)

type Store struct {
	DB db.Querier
}

func NewStore(conn db.Querier) *Store {
	return &Store{DB: conn}
}

func (s *Store) CreateUser(ctx context.Context, user NewUser) (User, error) {
	out := User{Username: user.Username, Email: user.Email, Role: user.Role}
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (username, password_hash, email, role)
    VALUES ($1,$2,$3,$4)
    RETURNING user_id, created_at
  `, user.Username, user.PasswordHash, user.Email, user.Role).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return User{}, db.Classify(err)
	}
	return out, nil
}

func (s *Store) CredentialsByUsername(ctx context.Context, username string) (Credentials, error) {
	var out Credentials
	err := s.DB.QueryRow(ctx, `
    SELECT user_id, username, role, password_hash, mfa_enabled, mfa_secret_enc
    FROM users
    WHERE username = $1
  `, username).Scan(&out.UserID, &out.Username, &out.Role, &out.PasswordHash, &out.MFAEnabled, &out.MFASecretEnc)
	if err != nil {
		return Credentials{}, db.Classify(err)
	}
	return out, nil
}

func (s *Store) UserByID(ctx context.Context, userID string) (User, error) {
	var out User
	err := s.DB.QueryRow(ctx, `
    SELECT user_id, username, email, role, mfa_enabled, last_login, created_at
    FROM users
    WHERE user_id = $1
  `, userID).Scan(&out.ID, &out.Username, &out.Email, &out.Role, &out.MFAEnabled, &out.LastLogin, &out.CreatedAt)
	if err != nil {
		return User{}, db.Classify(err)
	}
	return out, nil
}

func (s *Store) ListUsers(ctx context.Context, role string) ([]User, error) {
	query := `
    SELECT user_id, username, email, role, mfa_enabled, last_login, created_at
    FROM users
  `
	var args []any
	if role != "" {
		query += " WHERE role = $1"
		args = append(args, role)
	}
	query += " ORDER BY username ASC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.Role, &user.MFAEnabled, &user.LastLogin, &user.CreatedAt); err != nil {
			return nil, db.Classify(err)
		}
		users = append(users, user)
	}
	return users, db.Classify(rows.Err())
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login = now() WHERE user_id = $1", userID)
	return db.Classify(err)
}

func (s *Store) CreateSession(ctx context.Context, userID, tokenHash string, expires time.Time) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO sessions (user_id, token_hash, expires_at)
    VALUES ($1,$2,$3)
  `, userID, tokenHash, expires)
	return db.Classify(err)
}

func (s *Store) SessionActive(ctx context.Context, userID, tokenHash string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM sessions
    WHERE user_id = $1 AND token_hash = $2 AND expires_at > now() AND revoked_at IS NULL
  `, userID, tokenHash).Scan(&count); err != nil {
		return false, db.Classify(err)
	}
	return count > 0, nil
}

func (s *Store) RevokeSession(ctx context.Context, userID, tokenHash string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE sessions SET revoked_at = now()
    WHERE user_id = $1 AND token_hash = $2 AND revoked_at IS NULL
  `, userID, tokenHash)
	return db.Classify(err)
}

// DeleteExpiredSessions removes sessions that expired or were revoked before
// the cutoff.
func (s *Store) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM sessions
    WHERE expires_at < $1 OR (revoked_at IS NOT NULL AND revoked_at < $1)
  `, before)
	if err != nil {
		return 0, db.Classify(err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) UpdateMFASecret(ctx context.Context, userID string, secretEnc []byte) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE users SET mfa_secret_enc = $1, mfa_enabled = false WHERE user_id = $2
  `, secretEnc, userID)
	return db.Classify(err)
}

func (s *Store) GetMFASecret(ctx context.Context, userID string) ([]byte, error) {
	var secretEnc []byte
	if err := s.DB.QueryRow(ctx, "SELECT mfa_secret_enc FROM users WHERE user_id = $1", userID).Scan(&secretEnc); err != nil {
		return nil, db.Classify(err)
	}
	return secretEnc, nil
}

func (s *Store) SetMFAEnabled(ctx context.Context, userID string, enabled bool) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET mfa_enabled = $1 WHERE user_id = $2", enabled, userID)
	return db.Classify(err)
}
