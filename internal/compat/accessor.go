package compat

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/urlcoupons/pkg/types"
)

// ViewFilter rewrites a property value read in ContextView.
type ViewFilter func(c *Coupon, prop string, value any) any

// Accessor reads and writes coupon properties and metadata on a site,
// translating property names for the site's generation.
type Accessor struct {
	site       types.Site
	generation Generation
	filter     ViewFilter
}

// Option configures an Accessor.
type Option func(*Accessor)

// WithViewFilter installs the filter applied to ContextView reads.
func WithViewFilter(f ViewFilter) Option {
	return func(a *Accessor) { a.filter = f }
}

// NewAccessor returns an accessor for site running generation g.
func NewAccessor(site types.Site, g Generation, opts ...Option) *Accessor {
	a := &Accessor{site: site, generation: g}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Generation returns the generation the accessor was built for.
func (a *Accessor) Generation() Generation {
	return a.generation
}

// IsCRUD reports whether the site runs WooCommerce 3.0 or later.
func (a *Accessor) IsCRUD() bool {
	return a.generation == CRUD
}

// GetProperty returns the value of prop. Legacy coupons are read through
// the compatibility alias table. ContextView applies the view filter on
// CRUD coupons only, as WooCommerce filters CRUD getters only. Unknown
// properties return nil.
func (a *Accessor) GetProperty(c *Coupon, prop string, ctx Context) any {
	if c == nil {
		return nil
	}
	v := c.props[propertyName(c.Generation, prop)]
	if ctx == ContextView && c.Generation == CRUD && a.filter != nil {
		v = a.filter(c, prop, v)
	}
	return v
}

// SetProperties applies props to c in memory only and returns c.
func (a *Accessor) SetProperties(c *Coupon, props map[string]any) *Coupon {
	if c == nil {
		return nil
	}
	if c.props == nil {
		c.props = make(map[string]any, len(props))
	}
	for prop, v := range props {
		c.props[propertyName(c.Generation, prop)] = v
	}
	return c
}

// ResolveCoupon turns ref into a coupon handle. It accepts a *Coupon
// (returned unchanged), a post handle (loaded by its ID), or a numeric
// identifier (looked up by code). It returns nil when ref is none of these
// or no published coupon matches.
func (a *Accessor) ResolveCoupon(ctx context.Context, ref any) (*Coupon, error) {
	switch r := ref.(type) {
	case nil:
		return nil, nil
	case *Coupon:
		return r, nil
	case *types.Post:
		if r == nil {
			return nil, nil
		}
		return a.loadByID(ctx, r.ID)
	case types.Post:
		return a.loadByID(ctx, r.ID)
	}

	id, ok := numericID(ref)
	if !ok {
		return nil, nil
	}
	code, err := a.site.CouponCodeByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolving coupon code for %d: %w", id, err)
	}
	if code == "" {
		return nil, nil
	}
	return a.loadByCode(ctx, code)
}

// loadByID loads the shop_coupon post with the given ID.
func (a *Accessor) loadByID(ctx context.Context, id int64) (*Coupon, error) {
	if id <= 0 {
		return nil, nil
	}
	post, err := a.site.GetPost(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading coupon %d: %w", id, err)
	}
	if post == nil || post.Type != types.TypeShopCoupon {
		return nil, nil
	}
	return a.load(ctx, post.ID, post.Title)
}

// loadByCode loads the newest published coupon with the given code.
func (a *Accessor) loadByCode(ctx context.Context, code string) (*Coupon, error) {
	id, err := a.site.CouponIDByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("looking up coupon %q: %w", code, err)
	}
	if id == 0 {
		return nil, nil
	}
	return a.load(ctx, id, code)
}

func (a *Accessor) load(ctx context.Context, id int64, code string) (*Coupon, error) {
	meta, err := a.site.GetAllPostMeta(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading coupon %d meta: %w", id, err)
	}
	return couponFromMeta(id, code, a.generation, meta), nil
}

// GetMeta returns the coupon's first value for key, or "" when absent.
func (a *Accessor) GetMeta(ctx context.Context, c *Coupon, key string) (string, error) {
	if c == nil {
		return "", nil
	}
	return a.site.GetPostMeta(ctx, c.ID, key)
}

// UpdateMetaData writes key on the coupon and saves it.
func (a *Accessor) UpdateMetaData(ctx context.Context, c *Coupon, key, value string) error {
	if c == nil {
		return nil
	}
	return a.site.UpdatePostMeta(ctx, c.ID, key, value)
}

// DeleteMetaData removes key from the coupon and saves it.
func (a *Accessor) DeleteMetaData(ctx context.Context, c *Coupon, key string) error {
	if c == nil {
		return nil
	}
	return a.site.DeletePostMeta(ctx, c.ID, key)
}

// numericID extracts a coupon ID from an integer, an integral float, a
// json.Number, or a numeric string.
func numericID(ref any) (int64, bool) {
	switch r := ref.(type) {
	case string:
		s := strings.TrimSpace(r)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
			return int64(f), true
		}
		return 0, false
	case json.Number:
		return numericID(string(r))
	case float32:
		return numericID(float64(r))
	case float64:
		if r != float64(int64(r)) {
			return 0, false
		}
		return int64(r), true
	case bool:
		return 0, false
	}
	if !types.IsNumeric(ref) {
		return 0, false
	}
	return types.IntVal(ref), true
}
