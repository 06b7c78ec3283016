package compat

import (
	"maps"
	"strings"
)

// Coupon is a resolved coupon handle. Properties are keyed by the storage
// names of the generation the coupon was loaded under.
type Coupon struct {
	ID         int64
	Code       string
	Generation Generation

	props map[string]any
}

// NewCoupon returns an unsaved coupon carrying props.
func NewCoupon(id int64, code string, g Generation, props map[string]any) *Coupon {
	c := &Coupon{ID: id, Code: code, Generation: g, props: make(map[string]any, len(props))}
	maps.Copy(c.props, props)
	return c
}

// couponFromMeta builds a coupon from its post meta. Keys starting with an
// underscore are plugin metadata, not coupon properties.
func couponFromMeta(id int64, code string, g Generation, meta map[string]string) *Coupon {
	c := &Coupon{ID: id, Code: code, Generation: g, props: make(map[string]any, len(meta))}
	for k, v := range meta {
		if strings.HasPrefix(k, "_") {
			continue
		}
		c.props[k] = v
	}
	return c
}

// Props returns a copy of the coupon's stored properties.
func (c *Coupon) Props() map[string]any {
	return maps.Clone(c.props)
}
