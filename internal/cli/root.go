// Package cli implements the cake command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/cake/internal/paths"
	"github.com/mesh-intelligence/cake/internal/store"
	"github.com/mesh-intelligence/cake/pkg/kv"
	"github.com/mesh-intelligence/cake/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	backend   string
	jsonMode  bool
	verbose   bool
}

// app is the state shared by the commands of one invocation.
type app struct {
	flags rootFlags
	cfg   *viper.Viper
	log   *zap.Logger
	now   func() time.Time

	kv    types.KV
	store *store.Store
}

// NewRootCmd creates the top-level "cake" command with global flags and all
// subcommands registered.
func NewRootCmd() *cobra.Command {
	root, _ := newRoot()
	return root
}

func newRoot() (*cobra.Command, *app) {
	a := &app{log: zap.NewNop(), now: time.Now}

	root := &cobra.Command{
		Use:   "cake",
		Short: "Keep a cake of the year's wins",
		Long: "Cake keeps named cakes, each holding picks that label an achievement.\n" +
			"New picks are planted at random spots that keep clear of existing ones.",
		Version: Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	pf.StringVar(&a.flags.backend, "backend", "", "storage backend: memory, jsonl, sqlite, pebble")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	pf.BoolVar(&a.flags.verbose, "verbose", false, "log debug output to stderr")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newListCmd(a),
		newNewCmd(a),
		newUseCmd(a),
		newRenameCmd(a),
		newThemeCmd(a),
		newDeleteCmd(a),
		newDuplicateCmd(a),
		newPickCmd(a),
		newExportCmd(a),
		newExportNameCmd(a),
		newImportCmd(a),
		newPruneCmd(a),
	)
	return root, a
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one invocation and returns its exit code.
func run(args []string, stdout, stderr io.Writer) int {
	root, a := newRoot()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if cerr := a.close(); err == nil && cerr != nil {
		err = sysError(cerr)
	}
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitCode(err)
	}
	return exitSuccess
}

// setup loads configuration and builds the logger. Storage is opened
// lazily by the commands that need it.
func (a *app) setup(cmd *cobra.Command) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return sysError(err)
	}
	a.cfg = cfg

	log, err := newLogger(cmd.ErrOrStderr(), cfg.GetString(cfgKeyLogLevel), a.flags.verbose)
	if err != nil {
		return userError(err)
	}
	a.log = log.With(zap.String("command", cmd.Name()))
	return nil
}

// storageConfig resolves the backend and data directory from flags,
// environment and config.yaml.
func (a *app) storageConfig() (types.Config, error) {
	backend := a.flags.backend
	if backend == "" {
		backend = a.cfg.GetString(cfgKeyBackend)
	}
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, a.cfg.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	cfg := types.Config{Backend: backend, DataDir: dataDir}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, userError(fmt.Errorf("backend %q: %w", backend, err))
	}
	return cfg, nil
}

// openStore opens the configured backend and wraps it in a store. It is
// safe to call more than once per invocation.
func (a *app) openStore() (*store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	cfg, err := a.storageConfig()
	if err != nil {
		return nil, err
	}
	if cfg.DataDir != "" && cfg.Backend != types.BackendMemory {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, sysError(fmt.Errorf("create data directory: %w", err))
		}
	}
	backend, err := kv.Open(cfg)
	if err != nil {
		return nil, sysError(fmt.Errorf("open %s backend: %w", cfg.Backend, err))
	}
	a.log.Debug("opened storage", zap.String("backend", cfg.Backend), zap.String("data_dir", cfg.DataDir))

	a.kv = backend
	a.store = store.New(backend, store.WithLogger(a.log), store.WithClock(a.now))
	return a.store, nil
}

func (a *app) close() error {
	defer func() { _ = a.log.Sync() }()
	if a.kv == nil {
		return nil
	}
	err := a.kv.Close()
	a.kv, a.store = nil, nil
	return err
}

// exitError carries the exit code an error should produce.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: exitUserError, err: err}
}

func sysError(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: exitSysError, err: err}
}

// userErrors are the sentinels that describe bad input rather than a
// failing system.
var userErrors = []error{
	types.ErrNotFound,
	types.ErrInvalidName,
	types.ErrInvalidText,
	types.ErrTextTooLong,
	types.ErrInvalidPick,
	types.ErrMalformedImport,
	types.ErrUnsupportedVersion,
	types.ErrBackendEmpty,
	types.ErrBackendUnknown,
	types.ErrDataDirEmpty,
}

// classify tags a store error with its exit code.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return err
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return userError(err)
		}
	}
	return sysError(err)
}

// exitCode maps an error to a process exit code. Untagged errors come from
// cobra argument parsing and count as user errors.
func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}
