package auth

import "time"

type User struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	MFAEnabled bool       `json:"mfaEnabled"`
	LastLogin  *time.Time `json:"lastLogin,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
	Role         string
}

// Credentials is the row AuthenticateUser verifies against.
type Credentials struct {
	UserID       string
	Username     string
	Role         string
	PasswordHash string
	MFAEnabled   bool
	MFASecretEnc []byte
}

type Identity struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Session is the authenticated caller handed to every domain operation. The
// zero value is an anonymous caller.
type Session struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"userId"`
	Username      string `json:"username"`
	Role          string `json:"role"`
	SessionID     string `json:"-"`
}

func (s Session) IsManager() bool {
	return s.Authenticated && s.Role == RoleManager
}

func (s Session) IsEmployee() bool {
	return s.Authenticated && s.Role == RoleEmployee
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      Identity  `json:"user"`
}

type MFASetup struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauthUrl"`
}
