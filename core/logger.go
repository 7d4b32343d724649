package core

// Logger is implemented by any leveled logging backend.
// An Account may be passed among args to tag the log entry with the
// acting identity; backends that cannot use it must skip it.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
