package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeyState      = "state"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyCommand    = "command"
	KeyStrategy   = "strategy"
	KeyPlatform   = "platform"
	KeyScheme     = "scheme"
	KeyCount      = "count"
	KeyVersion    = "version"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func State(s string) slog.Attr        { return slog.String(KeyState, s) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Command(c string) slog.Attr      { return slog.String(KeyCommand, c) }
func Strategy(s string) slog.Attr     { return slog.String(KeyStrategy, s) }
func Platform(p string) slog.Attr     { return slog.String(KeyPlatform, p) }
func Scheme(s string) slog.Attr       { return slog.String(KeyScheme, s) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Version(v string) slog.Attr      { return slog.String(KeyVersion, v) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
