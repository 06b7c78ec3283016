package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/urlcoupons/pkg/types"
)

func (a *app) newRegistryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "registry",
		Short: "Print the active-URL registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if cerr := s.Close(); cerr != nil && err == nil {
					err = sysError(cerr)
				}
			}()

			reg := types.Registry{}
			if _, err := s.site.GetOption(cmd.Context(), types.OptionActiveURLs, &reg); err != nil {
				return sysError(err)
			}
			if reg == nil {
				reg = types.Registry{}
			}

			return a.render(cmd, reg, func(w io.Writer) {
				if len(reg) == 0 {
					fmt.Fprintln(w, "no active URLs")
					return
				}
				for _, id := range reg.IDs() {
					rec := reg[id]
					fmt.Fprintf(w, "%d", id)
					for _, field := range slices.Sorted(maps.Keys(rec)) {
						fmt.Fprintf(w, "\t%s=%v", field, rec[field])
					}
					fmt.Fprintln(w)
				}
			})
		},
	}
}
