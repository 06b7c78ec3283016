package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/urlcoupons/internal/lifecycle"
)

func (a *app) newEventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Print the lifecycle event history, newest first",
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

			events, err := a.lifecycle(s).Events(cmd.Context())
			if err != nil {
				return sysError(err)
			}
			if events == nil {
				events = []lifecycle.Event{}
			}

			return a.render(cmd, events, func(w io.Writer) {
				if len(events) == 0 {
					fmt.Fprintln(w, "no lifecycle events")
					return
				}
				for _, e := range events {
					ts := time.Unix(e.Time, 0).UTC().Format(time.RFC3339)
					fmt.Fprintf(w, "%s\t%s\tv%s", ts, e.Name, e.Version)
					if from, ok := e.Data["from_version"]; ok {
						fmt.Fprintf(w, "\tfrom v%v", from)
					}
					fmt.Fprintln(w)
				}
			})
		},
	}
}
