package domain

import (
	"errors"
	"strings"
	"time"
)

// Provider identifies the identity source a user authenticates through.
type Provider string

const (
	ProviderLocal    Provider = "local"
	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "facebook"
	ProviderGithub   Provider = "github"
)

// Providers lists every seeded provider in seed order.
var Providers = []Provider{ProviderLocal, ProviderGoogle, ProviderFacebook, ProviderGithub}

// ParseProvider maps a request-supplied tag to a Provider. Empty or unknown
// tags fall back to ProviderLocal.
func ParseProvider(tag string) Provider {
	p := Provider(strings.ToLower(strings.TrimSpace(tag)))
	for _, known := range Providers {
		if p == known {
			return p
		}
	}
	return ProviderLocal
}

// IsExternal reports whether the provider is a third-party identity source.
func (p Provider) IsExternal() bool {
	return p != ProviderLocal
}

const (
	UsernameMinLength = 3
	UsernameMaxLength = 20
	PasswordMinLength = 6
	PasswordMaxLength = 64
)

var restrictedUsernames = []string{"admin", "administrator", "example"}

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// User models one platform identity.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	Provider     Provider  `json:"provider"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasLocalPassword reports whether the user can authenticate with a password.
// Users provisioned through an external provider never can.
func (u *User) HasLocalPassword() bool {
	return u.Provider == ProviderLocal && u.PasswordHash != "" && u.Salt != ""
}

// NormalizeUsername lowercases and trims a username.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// IsRestrictedUsername reports whether the username contains a reserved word.
func IsRestrictedUsername(username string) bool {
	lower := strings.ToLower(username)
	for _, name := range restrictedUsernames {
		if strings.Contains(lower, name) {
			return true
		}
	}
	return false
}
