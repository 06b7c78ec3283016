package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/urlcoupons/internal/lifecycle"
)

func (a *app) newUpgradeCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Install or upgrade URL Coupons data",
		Long: "Compare the installed URL Coupons version with the running version and\n" +
			"run the install routine or every pending upgrade step. The installed\n" +
			"version is advanced only after all steps succeed.",
		Args: cobra.NoArgs,
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

			res, err := a.lifecycle(s, lifecycle.WithDryRun(dryRun)).Init(cmd.Context())
			if err != nil {
				return classify(err)
			}
			return a.render(cmd, res, func(w io.Writer) { writeResult(w, res) })
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report the plan without writing")
	return cmd
}

func writeResult(w io.Writer, res lifecycle.Result) {
	prefix := ""
	if res.DryRun {
		prefix = "[dry run] "
	}
	switch res.Action {
	case lifecycle.ActionInstall:
		fmt.Fprintf(w, "%sinstalled v%s\n", prefix, res.To)
	case lifecycle.ActionUpgrade:
		steps := "none"
		if len(res.Steps) > 0 {
			steps = strings.Join(res.Steps, ", ")
		}
		fmt.Fprintf(w, "%supgraded v%s -> v%s (steps: %s)\n", prefix, res.From, res.To, steps)
	case lifecycle.ActionDowngrade:
		fmt.Fprintf(w, "%sdowngraded v%s -> v%s (no steps run)\n", prefix, res.From, res.To)
	default:
		fmt.Fprintf(w, "up to date (v%s)\n", res.To)
	}
}
