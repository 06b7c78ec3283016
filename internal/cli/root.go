// Package cli implements the urlcoupons command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/urlcoupons/pkg/types"
	"github.com/mesh-intelligence/urlcoupons/pkg/urlcoupons"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// exitError carries the process exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error { return &exitError{code: exitUserError, err: err} }
func sysError(err error) error  { return &exitError{code: exitSysError, err: err} }

// classify marks configuration mistakes as user errors and everything else
// as system errors.
func classify(err error) error {
	var ee *exitError
	if errors.As(err, &ee) {
		return err
	}
	for _, userErr := range []error{
		types.ErrBackendEmpty,
		types.ErrBackendUnknown,
		types.ErrDSNRequired,
		types.ErrSyncStrategyUnknown,
		types.ErrInvalidVersion,
	} {
		if errors.Is(err, userErr) {
			return userError(err)
		}
	}
	return sysError(err)
}

// ExitCode maps an error returned by the root command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// Cobra reports bad flags and arguments without our wrapper.
	return exitUserError
}

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir     string
	dataDir       string
	jsonMode      bool
	verbose       bool
	backend       string
	dsn           string
	tablePrefix   string
	wcVersion     string
	pluginVersion string
	redisAddr     string
}

// app is the state shared by one command invocation.
type app struct {
	flags rootFlags
	cfg   *viper.Viper
	log   *slog.Logger
}

// NewRootCmd creates the top-level "urlcoupons" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{log: slog.Default()}

	root := &cobra.Command{
		Use:   "urlcoupons",
		Short: "Inspect and migrate WooCommerce URL Coupons data",
		Long: "urlcoupons runs the URL Coupons install and upgrade routines against a\n" +
			"WordPress database or a local SQLite site store, and inspects the\n" +
			"active-URL registry they migrate.",
		Version:           urlcoupons.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: $(CWD)/.urlcoupons)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "SQLite data directory (default: $(CWD)/.urlcoupons-db)")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output as JSON")
	pf.BoolVar(&a.flags.verbose, "verbose", false, "enable debug logging")
	pf.StringVar(&a.flags.backend, "backend", "", "site store: sqlite or wordpress (default: sqlite)")
	pf.StringVar(&a.flags.dsn, "dsn", "", "WordPress MySQL DSN")
	pf.StringVar(&a.flags.tablePrefix, "table-prefix", "", "WordPress table prefix (default: wp_)")
	pf.StringVar(&a.flags.wcVersion, "wc-version", "", "WooCommerce version (default: read from the site)")
	pf.StringVar(&a.flags.pluginVersion, "plugin-version", "", "running URL Coupons version (default: "+urlcoupons.PluginVersion+")")
	pf.StringVar(&a.flags.redisAddr, "redis-addr", "", "Redis object cache address for transients")

	root.AddCommand(a.newVersionCmd())
	root.AddCommand(a.newInitCmd())
	root.AddCommand(a.newUpgradeCmd())
	root.AddCommand(a.newStatusCmd())
	root.AddCommand(a.newRegistryCmd())
	root.AddCommand(a.newEventsCmd())
	root.AddCommand(a.newCouponCmd())
	root.AddCommand(a.newExportCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(ExitCode(err))
}

// setup loads .env files and config.yaml and builds the logger. The version
// command needs none of it.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	a.log = newLogger(cmd.ErrOrStderr(), a.flags.jsonMode, a.flags.verbose)
	if cmd.Name() == "version" {
		return nil
	}

	configDir, err := a.resolveConfigDir()
	if err != nil {
		return sysError(err)
	}
	if err := loadDotEnv(configDir); err != nil {
		return userError(err)
	}

	cfg, err := loadConfig(configDir, cmd.Flags())
	if err != nil {
		return sysError(err)
	}
	a.cfg = cfg
	a.log.Debug("configuration loaded", "config_dir", configDir, "file", cfg.ConfigFileUsed())
	return nil
}

// newLogger returns a text or JSON slog logger writing to w.
func newLogger(w io.Writer, jsonMode, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if jsonMode {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
