package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/urlcoupons/internal/compat"
	"github.com/mesh-intelligence/urlcoupons/pkg/types"
)

func (a *app) newCouponCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coupon",
		Short: "Read coupons through the compatibility accessor",
	}
	cmd.AddCommand(a.newCouponGetCmd())
	return cmd
}

// couponProperty is the output of coupon get.
type couponProperty struct {
	ID         int64  `json:"id"`
	Code       string `json:"code"`
	Generation string `json:"generation"`
	Property   string `json:"property"`
	Value      any    `json:"value"`
}

func (a *app) newCouponGetCmd() *cobra.Command {
	var view bool
	cmd := &cobra.Command{
		Use:   "get <id-or-code> <property>",
		Short: "Print a coupon property",
		Long: "Resolve a coupon by ID or code and print one property. Property names\n" +
			"are the WooCommerce 3.0 names; on older sites they are translated\n" +
			"(date_expires reads expiry_date, email_restrictions reads customer_email).",
		Args: cobra.ExactArgs(2),
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

			c, err := resolveCouponArg(cmd.Context(), s, args[0])
			if err != nil {
				return sysError(err)
			}
			if c == nil {
				return userError(fmt.Errorf("coupon %q not found", args[0]))
			}

			ctx := compat.ContextEdit
			if view {
				ctx = compat.ContextView
			}
			out := couponProperty{
				ID:         c.ID,
				Code:       c.Code,
				Generation: c.Generation.String(),
				Property:   args[1],
				Value:      s.accessor.GetProperty(c, args[1], ctx),
			}
			return a.render(cmd, out, func(w io.Writer) {
				if out.Value == nil {
					fmt.Fprintln(w)
					return
				}
				fmt.Fprintln(w, out.Value)
			})
		},
	}
	cmd.Flags().BoolVar(&view, "view", false, "read in view context")
	return cmd
}

// resolveCouponArg resolves a numeric ID through the accessor and falls
// back to a coupon code lookup.
func resolveCouponArg(ctx context.Context, s *session, ref string) (*compat.Coupon, error) {
	c, err := s.accessor.ResolveCoupon(ctx, ref)
	if err != nil || c != nil {
		return c, err
	}
	id, err := s.site.CouponIDByCode(ctx, ref)
	if err != nil || id == 0 {
		return nil, err
	}
	return s.accessor.ResolveCoupon(ctx, &types.Post{ID: id})
}
