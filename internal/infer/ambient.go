package infer

// Ambient names the reserved variables bound by the execution context rather
// than by the caller.
type Ambient string

const (
	This    Ambient = "this"
	Parent  Ambient = "parent"
	Before  Ambient = "before"
	After   Ambient = "after"
	Value   Ambient = "value"
	Input   Ambient = "input"
	Auth    Ambient = "auth"
	Session Ambient = "session"
	Token   Ambient = "token"
	Scope   Ambient = "scope"
)

var ambientNames = map[Ambient]struct{}{
	This: {}, Parent: {}, Before: {}, After: {}, Value: {},
	Input: {}, Auth: {}, Session: {}, Token: {}, Scope: {},
}

// IsAmbient reports whether name is a reserved context variable.
func IsAmbient(name string) bool {
	_, ok := ambientNames[Ambient(name)]
	return ok
}
