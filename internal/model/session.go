package model

// SessionStatus is the authentication state of the running client
type SessionStatus string

const (
	StatusUnauthenticated SessionStatus = "unauthenticated"
	StatusLoading         SessionStatus = "loading" // Persisted credentials not yet checked
	StatusGuest           SessionStatus = "guest"
	StatusAuthenticated   SessionStatus = "authenticated"
)

// HasToken reports whether a session in this status carries a token
func (s SessionStatus) HasToken() bool {
	return s == StatusGuest || s == StatusAuthenticated
}

// Identity is the minimal user record kept alongside the session token
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	IsGuest     bool   `json:"is_guest"`
}

// Session is a snapshot of the client's authentication state.
// Token is non-empty exactly when Status is guest or authenticated.
type Session struct {
	Status SessionStatus
	Token  string
	User   *Identity // nil when unauthenticated or when no identity was stored
}

// NewLoadingSession returns the session every process starts with
func NewLoadingSession() Session {
	return Session{Status: StatusLoading}
}

// Credentials is what the credential store persists between runs
type Credentials struct {
	Token    string
	Identity *Identity
}

// AuthResult is returned by the remote authentication collaborator
type AuthResult struct {
	Token    string   `json:"token"`
	Identity Identity `json:"user"`
}
