package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyOutput     = "output"
	KeySizeKiB    = "size_kib"
	KeyFiles      = "files"
	KeyFile       = "file"
	KeyPath       = "path"
	KeyDir        = "dir"
	KeyEvent      = "event"
	KeyDurationMS = "duration_ms"
	KeyAddr       = "addr"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Output(path string) slog.Attr    { return slog.String(KeyOutput, path) }
func SizeKiB(kib string) slog.Attr    { return slog.String(KeySizeKiB, kib) }
func Files(n int) slog.Attr           { return slog.Int(KeyFiles, n) }
func File(name string) slog.Attr      { return slog.String(KeyFile, name) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Dir(d string) slog.Attr          { return slog.String(KeyDir, d) }
func Event(kind string) slog.Attr     { return slog.String(KeyEvent, kind) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Addr(a string) slog.Attr         { return slog.String(KeyAddr, a) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
