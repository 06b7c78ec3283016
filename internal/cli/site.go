// Site, accessor and lifecycle wiring shared by the commands.
package cli

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/urlcoupons/internal/cache"
	"github.com/mesh-intelligence/urlcoupons/internal/compat"
	"github.com/mesh-intelligence/urlcoupons/internal/lifecycle"
	"github.com/mesh-intelligence/urlcoupons/pkg/site"
	"github.com/mesh-intelligence/urlcoupons/pkg/types"
	"github.com/mesh-intelligence/urlcoupons/pkg/urlcoupons"
)

// session is an opened site plus everything derived from it.
type session struct {
	cfg        types.Config
	site       types.Site
	wcVersion  string
	accessor   *compat.Accessor
	transients types.Transients
	closers    []func() error
}

// Close releases the site and any cache connection, newest first.
func (s *session) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openSession opens the configured site store, detects the WooCommerce
// generation and connects the Redis object cache when one is configured.
// The caller must Close the session.
func (a *app) openSession(ctx context.Context) (*session, error) {
	cfg, err := a.siteConfig()
	if err != nil {
		return nil, sysError(err)
	}
	st, closeSite, err := site.Open(ctx, cfg, a.log)
	if err != nil {
		return nil, classify(fmt.Errorf("open %s site: %w", cfg.Backend, err))
	}
	s := &session{cfg: cfg, site: st, transients: st, closers: []func() error{closeSite}}

	s.wcVersion = a.cfg.GetString(cfgKeyWCVersion)
	if s.wcVersion == "" {
		if _, err := st.GetOption(ctx, types.OptionWooCommerceVer, &s.wcVersion); err != nil {
			s.Close()
			return nil, sysError(err)
		}
	}
	gen := compat.GenerationFor(s.wcVersion)
	s.accessor = compat.NewAccessor(st, gen)
	a.log.Debug("site opened", "backend", cfg.Backend, "wc_version", s.wcVersion, "generation", gen.String())

	if addr := a.cfg.GetString(cfgKeyRedisAddr); addr != "" {
		client, err := cache.Dial(ctx, addr, a.cfg.GetString(cfgKeyRedisPassword), a.cfg.GetInt(cfgKeyRedisDB))
		if err != nil {
			s.Close()
			return nil, sysError(err)
		}
		s.closers = append(s.closers, client.Close)
		s.transients = cache.NewRedisTransients(client, a.cfg.GetString(cfgKeyRedisPrefix))
		a.log.Debug("transients routed to redis", "addr", addr)
	}
	return s, nil
}

// plugin describes the running URL Coupons release.
func (a *app) plugin() lifecycle.Plugin {
	return lifecycle.Plugin{
		ID:      urlcoupons.PluginID,
		Version: a.cfg.GetString(cfgKeyPluginVersion),
		Logger:  a.log.With("plugin", urlcoupons.PluginID),
	}
}

func (a *app) lifecycle(s *session, opts ...lifecycle.Option) *lifecycle.Lifecycle {
	opts = append([]lifecycle.Option{lifecycle.WithTransients(s.transients)}, opts...)
	return lifecycle.New(s.site, s.accessor, a.plugin(), opts...)
}
