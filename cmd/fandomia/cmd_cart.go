package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fandomia/internal/cart"
	"fandomia/internal/domain"
	"fandomia/internal/slug"
)

var (
	cartVariant int64
	cartQty     int
	cartSlug    string
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Work with the device cart",
}

var cartAddCmd = &cobra.Command{
	Use:   "add [product-id]",
	Short: "Add a product to the device cart",
	Long: `Add a product to the device cart, then mirror the cart to the backend
when a customer is signed in. The product is given by id or by --slug.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCartAdd,
}

var cartCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of items in the device cart",
	Args:  cobra.NoArgs,
	RunE:  runCartCount,
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List the device cart",
	Args:  cobra.NoArgs,
	RunE:  runCartShow,
}

var cartSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror the device cart to the backend, or restore it when empty",
	Args:  cobra.NoArgs,
	RunE:  runCartSync,
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the device cart",
	Args:  cobra.NoArgs,
	RunE:  runCartClear,
}

func init() {
	cartAddCmd.Flags().Int64Var(&cartVariant, "variant", 0, "Variant id (0: none)")
	cartAddCmd.Flags().IntVar(&cartQty, "qty", 1, "Quantity")
	cartAddCmd.Flags().StringVar(&cartSlug, "slug", "", "Product slug or name instead of an id")

	cartCmd.AddCommand(cartAddCmd, cartCountCmd, cartShowCmd, cartSyncCmd, cartClearCmd)
}

func runCartAdd(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)
	d, err := openDevice()
	if err != nil {
		return err
	}
	defer d.Close()

	var productID int64
	variantID := cartVariant
	switch {
	case len(args) == 1:
		productID, err = strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}
	case cartSlug != "":
		p, err := d.front.Product(ctx, slug.Make(cartSlug))
		if err != nil {
			return fmt.Errorf("look up %q: %w", cartSlug, err)
		}
		productID = p.Product.ID
		if variantID == 0 && len(p.Variants) == 1 {
			variantID = p.Variants[0].ID
		}
	default:
		return fmt.Errorf("give a product id or --slug")
	}

	var variant *int64
	if variantID != 0 {
		variant = domain.Int64(variantID)
	}
	if err := d.cart.AddToCart(ctx, productID, variant, cartQty); err != nil {
		return err
	}
	printf(cmd, "%d\n", d.cart.CartCount(ctx))
	return nil
}

func runCartCount(cmd *cobra.Command, _ []string) error {
	ctx := cmdContext(cmd)
	d, err := openDevice()
	if err != nil {
		return err
	}
	defer d.Close()

	printf(cmd, "%d\n", d.cart.CartCount(ctx))
	return nil
}

func runCartShow(cmd *cobra.Command, _ []string) error {
	ctx := cmdContext(cmd)
	d, err := openDevice()
	if err != nil {
		return err
	}
	defer d.Close()

	lines := d.cart.Lines(ctx)
	if len(lines) == 0 {
		printf(cmd, "Cart is empty\n")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tVARIANT\tQTY")
	for _, l := range lines {
		v := "-"
		if l.VariantID != nil {
			v = strconv.FormatInt(*l.VariantID, 10)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\n", l.ProductID, v, l.Quantity)
	}
	return tw.Flush()
}

func runCartSync(cmd *cobra.Command, _ []string) error {
	ctx := cmdContext(cmd)
	d, err := openDevice()
	if err != nil {
		return err
	}
	defer d.Close()

	res := d.cart.SyncCartToDbIfClient(ctx)
	printf(cmd, "sync %s\n", describeSync(res))
	if res.Status == cart.SyncFailed {
		return res.Reason
	}
	return nil
}

func runCartClear(cmd *cobra.Command, _ []string) error {
	ctx := cmdContext(cmd)
	d, err := openDevice()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.cart.Clear(ctx); err != nil {
		return err
	}
	printf(cmd, "Cart cleared\n")
	return nil
}

func describeSync(res cart.SyncResult) string {
	switch res.Status {
	case cart.SyncOK:
		if res.Action == cart.ActionNone {
			return "ok (nothing to do)"
		}
		return fmt.Sprintf("ok (%s %d)", res.Action, res.Rows)
	case cart.SyncSkippedNotEligible:
		return fmt.Sprintf("skipped (%v)", res.Reason)
	default:
		return fmt.Sprintf("failed (%v)", res.Reason)
	}
}
