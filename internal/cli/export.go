package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/urlcoupons/pkg/site"
)

func (a *app) newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir>",
		Short: "Write a JSONL snapshot of the site store",
		Args:  cobra.ExactArgs(1),
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

			exp, ok := s.site.(site.Exporter)
			if !ok {
				return userError(errors.New("export requires the sqlite backend"))
			}
			if err := exp.Export(cmd.Context(), args[0]); err != nil {
				return sysError(err)
			}

			out := map[string]string{"dir": args[0]}
			return a.render(cmd, out, func(w io.Writer) {
				fmt.Fprintf(w, "exported to %s\n", args[0])
			})
		},
	}
}
