package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// status is the output of the status command.
type status struct {
	Backend     string   `json:"backend"`
	Installed   string   `json:"installed"`
	Running     string   `json:"running"`
	WooCommerce string   `json:"woocommerce_version"`
	Generation  string   `json:"generation"`
	Pending     []string `json:"pending"`
}

func (a *app) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show installed and running versions and pending upgrade steps",
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

			l := a.lifecycle(s)
			installed, err := l.InstalledVersion(cmd.Context())
			if err != nil {
				return sysError(err)
			}
			st := status{
				Backend:     s.cfg.Backend,
				Installed:   installed,
				Running:     a.plugin().Version,
				WooCommerce: s.wcVersion,
				Generation:  s.accessor.Generation().String(),
				Pending:     []string{},
			}
			for _, step := range l.Pending(installed) {
				st.Pending = append(st.Pending, step.Version)
			}

			return a.render(cmd, st, func(w io.Writer) {
				installed := st.Installed
				if installed == "" {
					installed = "(not installed)"
				}
				pending := "none"
				if len(st.Pending) > 0 {
					pending = strings.Join(st.Pending, ", ")
				}
				fmt.Fprintf(w, "backend:     %s\n", st.Backend)
				fmt.Fprintf(w, "installed:   %s\n", installed)
				fmt.Fprintf(w, "running:     %s\n", st.Running)
				fmt.Fprintf(w, "woocommerce: %s (%s)\n", st.WooCommerce, st.Generation)
				fmt.Fprintf(w, "pending:     %s\n", pending)
			})
		},
	}
}
