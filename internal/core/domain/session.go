package domain

// AuthState is a step of the per-request authentication state machine.
type AuthState string

const (
	StateUnauthenticated   AuthState = "unauthenticated"
	StateProviderVerifying AuthState = "provider_verifying"
	StateFederating        AuthState = "federating"
	StateSessionIssued     AuthState = "session_issued"
	StateRejected          AuthState = "rejected"
)

// Claims is the identity attached to an authenticated request.
type Claims struct {
	Username string   `json:"username"`
	Name     string   `json:"name"`
	ID       int64    `json:"id"`
	Provider Provider `json:"provider"`
}

// ExternalIdentity is the provider-supplied view of a user. It lives for one
// request only and is never persisted verbatim.
type ExternalIdentity struct {
	ExternalID  string
	DisplayName string
}

// VerifiedIdentity is what a provider adapter vouches for after validating an
// inbound credential.
type VerifiedIdentity struct {
	Provider Provider
	Identity ExternalIdentity
	// Credential is the bearer value to hand back to the client. It differs
	// from the inbound value after an exchange-code swap or a local re-sign.
	Credential string
	// Claims is set when the credential was a self-contained session token.
	Claims *Claims
}

// Session is the outcome of a successful login or refresh.
type Session struct {
	// Authorization is the response header value, scheme prefix included.
	Authorization string
	User          *User
}
