// Package compat shims coupon property access across the two WooCommerce
// data-model generations: post-meta coupons before 3.0 and CRUD data objects
// from 3.0 on. It also resolves loosely-typed coupon references.
package compat

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Generation is the WooCommerce data-model generation in use on a site.
type Generation int

const (
	// CRUD is WooCommerce 3.0 and later.
	CRUD Generation = iota
	// Legacy is WooCommerce before 3.0.
	Legacy
)

func (g Generation) String() string {
	if g == Legacy {
		return "legacy"
	}
	return "crud"
}

// crudVersion is the first WooCommerce release with CRUD data objects.
const crudVersion = "v3.0.0"

// GenerationFor maps a WooCommerce version to its generation. An empty or
// unparsable version is assumed to be current.
func GenerationFor(wcVersion string) Generation {
	v := Canonical(wcVersion)
	if v == "" {
		return CRUD
	}
	if semver.Compare(v, crudVersion) < 0 {
		return Legacy
	}
	return CRUD
}

// Canonical converts a plugin-style version ("2.5.0", "v3.6") into the form
// golang.org/x/mod/semver accepts, or "" when it is not a version.
func Canonical(version string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		return ""
	}
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	if !semver.IsValid(version) {
		return ""
	}
	return version
}

// Context selects how a property is read.
type Context string

const (
	// ContextEdit returns the raw stored value.
	ContextEdit Context = "edit"
	// ContextView applies the accessor's output filter.
	ContextView Context = "view"
)

// compatProps maps CRUD property names to their pre-3.0 names.
var compatProps = map[string]string{
	"date_expires":       "expiry_date",
	"email_restrictions": "customer_email",
}

// propertyName returns the storage name of prop under generation g.
func propertyName(g Generation, prop string) string {
	if g == Legacy {
		if old, ok := compatProps[prop]; ok {
			return old
		}
	}
	return prop
}
