package lifecycle

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mesh-intelligence/urlcoupons/pkg/types"
)

// Step is one upgrade routine, tagged with the version that introduced it.
type Step struct {
	// Version is the milestone; the step runs when installed < Version.
	Version string

	// From, when set, restricts the step to installed versions stored as
	// exactly this string.
	From string

	Run func(ctx context.Context, l *Lifecycle) error
}

func (s Step) applies(installed string) bool {
	if compareVersions(installed, s.Version) >= 0 {
		return false
	}
	return s.From == "" || installed == s.From
}

// UpgradePath returns the URL Coupons upgrade steps in ascending order.
// New steps are appended; existing ones are never reordered.
func UpgradePath() []Step {
	return []Step{
		{Version: "1.0.2", Run: upgradeTo102},
		{Version: "2.0.0", Run: upgradeTo200},
		{Version: "2.1.1", Run: upgradeTo211},
		{Version: "2.5.1", From: "2.5.0", Run: upgradeTo251},
	}
}

// upgradeTo102 drops registry entries whose coupon is missing or not
// published. Earlier versions left trashed coupons in the active list,
// which broke every visit to their unique URL.
func upgradeTo102(ctx context.Context, l *Lifecycle) error {
	reg, err := l.loadRegistry(ctx)
	if err != nil {
		return err
	}

	for _, id := range reg.IDs() {
		status, err := l.site.PostStatus(ctx, id)
		if err != nil {
			return fmt.Errorf("reading status of coupon %d: %w", id, err)
		}
		if status != types.StatusPublish {
			delete(reg, id)
		}
	}

	return l.saveRegistry(ctx, reg)
}

// upgradeTo200 renames "force apply" to "defer apply" and records the
// redirect page type on every entry that redirects.
func upgradeTo200(ctx context.Context, l *Lifecycle) error {
	reg, err := l.loadRegistry(ctx)
	if err != nil {
		return err
	}

	for _, id := range reg.IDs() {
		rec := reg[id]
		if rec == nil {
			rec = types.URLRecord{}
			reg[id] = rec
		}
		data := rec.Clone()

		switch {
		case rec.Has(types.FieldForce):
			rec[types.FieldDefer] = types.Truthy(rec[types.FieldForce])
		case rec.Has(types.FieldDefer):
			// Already migrated.
			rec[types.FieldDefer] = types.Truthy(rec[types.FieldDefer])
		default:
			rec[types.FieldDefer] = false
		}

		if rec.Defer() {
			if err := l.updateCouponMeta(ctx, id, types.MetaDeferApply, "yes"); err != nil {
				return err
			}
		}

		delete(rec, types.FieldForce)
		if err := l.deleteCouponMeta(ctx, id, types.MetaForceApply); err != nil {
			return err
		}

		if data.RedirectEmpty() {
			continue
		}
		pageType, err := l.redirectPageType(ctx, data.Redirect())
		if err != nil {
			return err
		}
		rec[types.FieldRedirectPageType] = pageType
	}

	return l.saveRegistry(ctx, reg)
}

// upgradeTo211 backfills the redirect page type coupon meta, which earlier
// versions never wrote. The registry itself is unchanged.
func upgradeTo211(ctx context.Context, l *Lifecycle) error {
	reg, err := l.loadRegistry(ctx)
	if err != nil {
		return err
	}

	for _, id := range reg.IDs() {
		rec := reg[id]
		if rec.RedirectEmpty() {
			continue
		}

		existing, err := l.couponMeta(ctx, id, types.MetaRedirectPageType)
		if err != nil {
			return err
		}
		if types.Truthy(existing) {
			continue
		}

		pageType, err := l.redirectPageType(ctx, rec.Redirect())
		if err != nil {
			return err
		}
		if err := l.updateCouponMeta(ctx, id, types.MetaRedirectPageType, pageType); err != nil {
			return err
		}
	}
	return nil
}

// upgradeTo251 recovers redirect IDs that 2.5.0 failed to save on
// WooCommerce 3.0+. The coupon meta was never overwritten, so it still
// holds the right value. Only the 2.5.1 release itself applies the fix.
func upgradeTo251(ctx context.Context, l *Lifecycle) error {
	if l.plugin.Version != "2.5.1" || !l.compat.IsCRUD() {
		l.plugin.logger().Debug("skipping 2.5.1 redirect correction",
			"plugin_version", l.plugin.Version, "generation", l.compat.Generation().String())
		return nil
	}

	reg, err := l.loadRegistry(ctx)
	if err != nil {
		return err
	}

	for _, id := range reg.IDs() {
		rec := reg[id]
		if !types.LooseZero(rec[types.FieldRedirect]) {
			continue
		}

		coupon, err := l.compat.ResolveCoupon(ctx, id)
		if err != nil {
			return err
		}
		if coupon == nil {
			l.plugin.logger().Debug("coupon not found, redirect left as is", "coupon_id", id)
			continue
		}
		v, err := l.compat.GetMeta(ctx, coupon, types.MetaRedirectPage)
		if err != nil {
			return err
		}

		if rec == nil {
			rec = types.URLRecord{}
			reg[id] = rec
		}
		if types.IsNumeric(v) {
			rec[types.FieldRedirect] = types.IntVal(v)
		} else {
			rec[types.FieldRedirect] = v
		}
	}

	return l.saveRegistry(ctx, reg)
}

// redirectPageType returns the post type of the redirect target, defaulting
// to page and folding variations into product.
func (l *Lifecycle) redirectPageType(ctx context.Context, redirect int64) (string, error) {
	postType, err := l.site.PostType(ctx, redirect)
	if err != nil {
		return "", fmt.Errorf("reading type of redirect %d: %w", redirect, err)
	}
	switch postType {
	case "":
		return types.TypePage, nil
	case types.TypeProductVariation:
		return types.TypeProduct, nil
	}
	return postType, nil
}

// loadRegistry reads the active-URL option the way PHP's (array) cast
// would: a scalar value becomes an empty registry and entries that are not
// records become empty records.
func (l *Lifecycle) loadRegistry(ctx context.Context) (types.Registry, error) {
	var raw any
	if _, err := l.site.GetOption(ctx, types.OptionActiveURLs, &raw); err != nil {
		return nil, fmt.Errorf("loading active URLs: %w", err)
	}

	reg := types.Registry{}
	add := func(key string, v any) {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			l.plugin.logger().Warn("skipping active URL entry", "key", key)
			return
		}
		rec, ok := v.(map[string]any)
		if !ok {
			rec = map[string]any{}
		}
		reg[id] = types.URLRecord(rec)
	}

	switch v := raw.(type) {
	case nil:
	case map[string]any:
		for key, rec := range v {
			add(key, rec)
		}
	case []any:
		for i, rec := range v {
			add(strconv.Itoa(i), rec)
		}
	default:
		l.plugin.logger().Warn("active URLs option is not an array, treating as empty", "type", fmt.Sprintf("%T", raw))
	}
	return reg, nil
}

// saveRegistry writes the registry and invalidates its transient mirror.
func (l *Lifecycle) saveRegistry(ctx context.Context, reg types.Registry) error {
	if err := l.site.UpdateOption(ctx, types.OptionActiveURLs, reg); err != nil {
		return fmt.Errorf("saving active URLs: %w", err)
	}
	if err := l.transients.DeleteTransient(ctx, types.TransientActiveURLs); err != nil {
		return fmt.Errorf("clearing active URLs transient: %w", err)
	}
	return nil
}

// couponMeta reads a coupon meta value. On CRUD sites the coupon must
// resolve; an unresolvable coupon reads as "".
func (l *Lifecycle) couponMeta(ctx context.Context, id int64, key string) (string, error) {
	if !l.compat.IsCRUD() {
		return l.site.GetPostMeta(ctx, id, key)
	}
	coupon, err := l.compat.ResolveCoupon(ctx, id)
	if err != nil || coupon == nil {
		return "", err
	}
	return l.compat.GetMeta(ctx, coupon, key)
}

// updateCouponMeta writes a coupon meta value. On CRUD sites the write is
// skipped when the coupon does not resolve.
func (l *Lifecycle) updateCouponMeta(ctx context.Context, id int64, key, value string) error {
	if !l.compat.IsCRUD() {
		return l.site.UpdatePostMeta(ctx, id, key, value)
	}
	coupon, err := l.compat.ResolveCoupon(ctx, id)
	if err != nil {
		return err
	}
	if coupon == nil {
		l.plugin.logger().Debug("coupon not found, meta not written", "coupon_id", id, "key", key)
		return nil
	}
	return l.compat.UpdateMetaData(ctx, coupon, key, value)
}

// deleteCouponMeta removes a coupon meta key, best-effort like updateCouponMeta.
func (l *Lifecycle) deleteCouponMeta(ctx context.Context, id int64, key string) error {
	if !l.compat.IsCRUD() {
		return l.site.DeletePostMeta(ctx, id, key)
	}
	coupon, err := l.compat.ResolveCoupon(ctx, id)
	if err != nil {
		return err
	}
	if coupon == nil {
		return nil
	}
	return l.compat.DeleteMetaData(ctx, coupon, key)
}
