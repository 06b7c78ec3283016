package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/urlcoupons/pkg/urlcoupons"
)

const modulePath = "github.com/mesh-intelligence/urlcoupons"

func (a *app) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the urlcoupons version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := map[string]string{
				"version":        urlcoupons.Version,
				"plugin_version": urlcoupons.PluginVersion,
				"module":         modulePath,
			}
			return a.render(cmd, out, func(w io.Writer) {
				fmt.Fprintf(w, "urlcoupons v%s\nplugin: URL Coupons v%s\nmodule: %s\n",
					urlcoupons.Version, urlcoupons.PluginVersion, modulePath)
			})
		},
	}
}
