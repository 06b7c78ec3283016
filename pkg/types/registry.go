package types

import (
	"maps"
	"slices"
)

// Option, transient and post meta keys owned by the URL Coupons plugin.
const (
	OptionActiveURLs      = "wc_url_coupons_active_urls"
	OptionVersion         = "wc_url_coupons_version"
	OptionLifecycleEvents = "wc_url_coupons_lifecycle_events"
	OptionWooCommerceVer  = "woocommerce_version"

	TransientActiveURLs = "wc_url_coupons_active_urls"

	MetaDeferApply       = "_wc_url_coupons_defer_apply"
	MetaForceApply       = "_wc_url_coupons_force_apply"
	MetaRedirectPageType = "_wc_url_coupons_redirect_page_type"
	MetaRedirectPage     = "_wc_url_coupons_redirect_page"
)

// Active-URL record fields.
const (
	FieldForce            = "force"
	FieldDefer            = "defer"
	FieldRedirect         = "redirect"
	FieldRedirectPageType = "redirect_page_type"
)

// URLRecord is one coupon's unique-URL configuration. It is kept as a loose
// map so fields written by other plugin versions survive a migration.
type URLRecord map[string]any

// Registry maps coupon IDs to their unique-URL records. It is persisted as
// the OptionActiveURLs option.
type Registry map[int64]URLRecord

// Has reports whether field is set to a non-nil value (PHP isset).
func (r URLRecord) Has(field string) bool {
	v, ok := r[field]
	return ok && v != nil
}

// Redirect returns the redirect target ID, or 0 when none is set.
func (r URLRecord) Redirect() int64 {
	return IntVal(r[FieldRedirect])
}

// RedirectEmpty reports whether the redirect field is empty (PHP empty).
func (r URLRecord) RedirectEmpty() bool {
	return Empty(r[FieldRedirect])
}

// Defer reports whether the record asks for deferred apply.
func (r URLRecord) Defer() bool {
	return Truthy(r[FieldDefer])
}

// Clone returns a shallow copy of the record.
func (r URLRecord) Clone() URLRecord {
	if r == nil {
		return URLRecord{}
	}
	return maps.Clone(r)
}

// IDs returns the coupon IDs in ascending order.
func (reg Registry) IDs() []int64 {
	return slices.Sorted(maps.Keys(reg))
}

// Clone returns a copy of the registry with cloned records.
func (reg Registry) Clone() Registry {
	out := make(Registry, len(reg))
	for id, rec := range reg {
		out[id] = rec.Clone()
	}
	return out
}
