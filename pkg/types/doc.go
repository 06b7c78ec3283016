// Package types defines the site store interfaces, the active-URL registry
// and its records, configuration, and the standard errors shared by the
// URL Coupons lifecycle tooling.
package types
