// Package urlcoupons holds release constants shared by the CLI and library.
package urlcoupons

// Version is the urlcoupons tool version.
const Version = "0.3.0"

// PluginVersion is the URL Coupons release whose upgrade path this module
// carries. It is the default running version for lifecycle runs.
const PluginVersion = "2.5.1"

// PluginID is the plugin identifier used in logs.
const PluginID = "url_coupons"
