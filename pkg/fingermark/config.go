package fingermark

import "os"

// Config holds configuration for NewService.
type Config struct {
	// DBPath is the SQLite database file used when Backend is nil and
	// UseSQLite is true. Default: "fingermark.sqlite3".
	DBPath string

	// UseSQLite selects the SQLite-backed catalog instead of the default
	// pure in-memory one. Ignored if Backend is set explicitly.
	UseSQLite bool

	// TempDir is where ConvertToMonoWAV writes transcoded audio.
	// Default: os.TempDir().
	TempDir string

	// SampleRate is the rate (Hz) audio is resampled to before analysis.
	// Default: 11025.
	SampleRate int

	// Logger is the logger the service calls through. Default: logger.GetLogger().
	Logger Logger

	// Backend is a custom catalog backend (e.g. a pkg/storage.SQLiteIndexStore
	// opened elsewhere). If set, DBPath and UseSQLite are ignored.
	Backend Backend
}

// Option is a functional option for NewService.
type Option func(*Config)

// WithDBPath sets the SQLite database path and implies UseSQLite.
func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
		c.UseSQLite = true
	}
}

// WithTempDir sets the scratch directory for audio conversion.
func WithTempDir(dir string) Option {
	return func(c *Config) { c.TempDir = dir }
}

// WithSampleRate sets the analysis sample rate, in Hz.
func WithSampleRate(rate int) Option {
	return func(c *Config) { c.SampleRate = rate }
}

// WithLogger supplies a custom logger.
func WithLogger(log Logger) Option {
	return func(c *Config) { c.Logger = log }
}

// WithBackend supplies a pre-opened catalog backend, bypassing DBPath/UseSQLite.
func WithBackend(backend Backend) Option {
	return func(c *Config) { c.Backend = backend }
}

func defaultConfig() *Config {
	return &Config{
		DBPath:     "fingermark.sqlite3",
		TempDir:    os.TempDir(),
		SampleRate: 11025,
	}
}
