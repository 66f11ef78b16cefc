package core

// DebugMode controls whether lifecycle misuse panics.
// When true, invalid transitions and stale references are reported and then
// raised as panics. When false, they are reported and the operation is a no-op.
// Builds with the presenter_debug tag start with DebugMode enabled.
var DebugMode = defaultDebugMode

// SetDebugMode enables or disables development assertions.
func SetDebugMode(debug bool) {
	DebugMode = debug
}
