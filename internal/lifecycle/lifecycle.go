// Package lifecycle detects URL Coupons installs and upgrades and runs the
// version-gated upgrade steps that migrate the active-URL registry and
// per-coupon metadata.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/urlcoupons/internal/compat"
	"github.com/mesh-intelligence/urlcoupons/pkg/types"
)

// Plugin describes the running plugin.
type Plugin struct {
	ID      string
	Version string
	Logger  *slog.Logger
}

// Log writes an informational message to the plugin log.
func (p Plugin) Log(msg string, args ...any) {
	p.logger().Info(msg, args...)
}

func (p Plugin) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

// Action is what Init did.
type Action string

const (
	ActionNone      Action = "none"
	ActionInstall   Action = "install"
	ActionUpgrade   Action = "upgrade"
	ActionDowngrade Action = "downgrade"
)

// Result summarizes an Init call.
type Result struct {
	Action Action   `json:"action"`
	From   string   `json:"from,omitempty"`
	To     string   `json:"to"`
	Steps  []string `json:"steps,omitempty"`
	RunID  string   `json:"run_id,omitempty"`
	DryRun bool     `json:"dry_run,omitempty"`
}

// Lifecycle runs install and upgrade routines against a site.
type Lifecycle struct {
	site       types.Site
	transients types.Transients
	compat     *compat.Accessor
	plugin     Plugin
	path       []Step
	dryRun     bool

	now      func() time.Time
	newRunID func() string
}

// Option configures a Lifecycle.
type Option func(*Lifecycle)

// WithTransients routes transient invalidation to an external cache instead
// of the site's option table.
func WithTransients(t types.Transients) Option {
	return func(l *Lifecycle) { l.transients = t }
}

// WithDryRun makes Init report what it would do without writing anything.
func WithDryRun(dryRun bool) Option {
	return func(l *Lifecycle) { l.dryRun = dryRun }
}

// WithUpgradePath replaces the upgrade path. Used by tests.
func WithUpgradePath(path []Step) Option {
	return func(l *Lifecycle) { l.path = path }
}

// New returns a Lifecycle for plugin on site. The accessor decides which
// WooCommerce generation metadata writes target.
func New(site types.Site, accessor *compat.Accessor, plugin Plugin, opts ...Option) *Lifecycle {
	l := &Lifecycle{
		site:       site,
		transients: site,
		compat:     accessor,
		plugin:     plugin,
		path:       UpgradePath(),
		now:        time.Now,
		newRunID:   newRunID,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// InstalledVersion returns the installed plugin version, or "" when the
// plugin has never been installed.
func (l *Lifecycle) InstalledVersion(ctx context.Context) (string, error) {
	var v string
	if _, err := l.site.GetOption(ctx, types.OptionVersion, &v); err != nil {
		return "", fmt.Errorf("reading installed version: %w", err)
	}
	return v, nil
}

// SetInstalledVersion records v as the installed plugin version.
func (l *Lifecycle) SetInstalledVersion(ctx context.Context, v string) error {
	if err := l.site.UpdateOption(ctx, types.OptionVersion, v); err != nil {
		return fmt.Errorf("writing installed version: %w", err)
	}
	return nil
}

// Init compares the installed version with the running plugin version and
// installs or upgrades as needed. The installed version is advanced only
// after every pending step succeeds.
func (l *Lifecycle) Init(ctx context.Context) (Result, error) {
	current := l.plugin.Version
	if !validVersion(current) {
		return Result{}, fmt.Errorf("plugin version %q: %w", current, types.ErrInvalidVersion)
	}

	installed, err := l.InstalledVersion(ctx)
	if err != nil {
		return Result{}, err
	}

	res := Result{Action: ActionNone, From: installed, To: current, DryRun: l.dryRun}
	if installed == current {
		return res, nil
	}

	switch {
	case installed == "":
		res.Action = ActionInstall
		if l.dryRun {
			return res, nil
		}
		if err := l.install(ctx); err != nil {
			return res, err
		}

	case compareVersions(installed, current) < 0:
		res.Action = ActionUpgrade
		for _, s := range l.Pending(installed) {
			res.Steps = append(res.Steps, s.Version)
		}
		if l.dryRun {
			l.plugin.logger().Info("upgrade plan", "from", installed, "to", current, "steps", res.Steps)
			return res, nil
		}
		res.RunID = l.newRunID()
		if err := l.Upgrade(ctx, installed); err != nil {
			return res, err
		}
		if err := l.storeEvent(ctx, Event{
			Name:    string(ActionUpgrade),
			Version: current,
			Data: map[string]any{
				"from_version": installed,
				"steps":        res.Steps,
				"run_id":       res.RunID,
			},
		}); err != nil {
			return res, err
		}

	case compareVersions(installed, current) > 0:
		res.Action = ActionDowngrade
		l.plugin.logger().Warn("installed version is newer than the running plugin", "installed", installed, "running", current)
		if l.dryRun {
			return res, nil
		}

	default:
		// Same version spelled differently; just normalize the stored value.
		if l.dryRun {
			return res, nil
		}
	}

	if err := l.SetInstalledVersion(ctx, current); err != nil {
		return res, err
	}
	return res, nil
}

func (l *Lifecycle) install(ctx context.Context) error {
	l.plugin.Log(fmt.Sprintf("Installing v%s", l.plugin.Version))
	return l.storeEvent(ctx, Event{Name: string(ActionInstall), Version: l.plugin.Version})
}

// Pending returns the upgrade steps that apply to an installed version, in
// ascending milestone order. A fresh install has no pending steps.
func (l *Lifecycle) Pending(installed string) []Step {
	if installed == "" {
		return nil
	}
	var steps []Step
	for _, s := range l.path {
		if s.applies(installed) {
			steps = append(steps, s)
		}
	}
	return steps
}

// Upgrade runs every pending step for installed. A failed step aborts the
// run; the installed version is left alone so the step reruns in full.
func (l *Lifecycle) Upgrade(ctx context.Context, installed string) error {
	for _, s := range l.Pending(installed) {
		l.plugin.Log(fmt.Sprintf("Starting upgrade to v%s", s.Version))
		if err := s.Run(ctx, l); err != nil {
			return fmt.Errorf("upgrade to v%s: %w", s.Version, err)
		}
		l.plugin.Log(fmt.Sprintf("Upgrade to v%s complete", s.Version))
	}
	return nil
}
