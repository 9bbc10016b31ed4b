package domain

import "time"

// AuthAction names the flow an AuthEvent was recorded for.
type AuthAction string

const (
	ActionLogin          AuthAction = "login"
	ActionRefresh        AuthAction = "refresh"
	ActionVerify         AuthAction = "verify"
	ActionRegister       AuthAction = "register"
	ActionProvision      AuthAction = "provision"
	ActionPasswordUpdate AuthAction = "password_update"
)

// AuthEvent is one entry of the authentication audit trail.
type AuthEvent struct {
	Username string
	Provider Provider
	Action   AuthAction
	State    AuthState
	Reason   Reason
	At       time.Time
}
