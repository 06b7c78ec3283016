package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the site store",
		Long: "Create the configuration directory and config.yaml, then open the\n" +
			"configured site store once. For the sqlite backend this creates the\n" +
			"data directory and its JSONL files.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			if err := s.Close(); err != nil {
				return sysError(fmt.Errorf("finalize storage: %w", err))
			}

			out := map[string]string{"backend": s.cfg.Backend, "data_dir": s.cfg.DataDir}
			return a.render(cmd, out, func(w io.Writer) {
				fmt.Fprintf(w, "Initialized %s site store\n", s.cfg.Backend)
			})
		},
	}
}
