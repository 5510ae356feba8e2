package types

import "errors"

// Config holds backend selection and parameters for opening a key-value store.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// Supported backend names.
const (
	BackendMemory = "memory"
	BackendJSONL  = "jsonl"
	BackendSQLite = "sqlite"
	BackendPebble = "pebble"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrDataDirEmpty   = errors.New("data directory must not be empty for file backends")
)

// knownBackends lists the backends that Validate accepts, mapped to whether
// they persist to DataDir.
var knownBackends = map[string]bool{
	BackendMemory: false,
	BackendJSONL:  true,
	BackendSQLite: true,
	BackendPebble: true,
}

// Backends returns the supported backend names in a stable order.
func Backends() []string {
	return []string{BackendMemory, BackendJSONL, BackendSQLite, BackendPebble}
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	persistent, ok := knownBackends[c.Backend]
	if !ok {
		return ErrBackendUnknown
	}
	if persistent && c.DataDir == "" {
		return ErrDataDirEmpty
	}
	return nil
}
