package security

import "strings"

// BearerScheme is the authorization scheme tag used on requests and responses.
const BearerScheme = "bearer"

// BearerToken extracts the credential from an Authorization header value.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], BearerScheme) {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

// WithBearer renders token as an Authorization header value with the scheme
// prefix present exactly once.
func WithBearer(token string) string {
	token = strings.TrimSpace(token)
	if stripped, ok := BearerToken(token); ok {
		token = stripped
	}
	return BearerScheme + " " + token
}
