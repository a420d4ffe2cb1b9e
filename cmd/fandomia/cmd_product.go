package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fandomia/internal/slug"
)

var productCmd = &cobra.Command{
	Use:   "product <slug>",
	Short: "Show a product and its variants in stock",
	Args:  cobra.ExactArgs(1),
	RunE:  runProduct,
}

var catalogCategory string

var catalogCmd = &cobra.Command{
	Use:   "catalog [search terms]",
	Short: "List active products, newest first",
	RunE:  runCatalog,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List product categories",
	Args:  cobra.NoArgs,
	RunE:  runCategories,
}

func init() {
	catalogCmd.Flags().StringVar(&catalogCategory, "category", "", "Only products in this category slug")
}

func runCatalog(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)
	d, err := openDevice()
	if err != nil {
		return err
	}
	defer d.Close()

	items, err := d.front.Catalog(ctx, strings.Join(args, " "), catalogCategory)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		printf(cmd, "No products found\n")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSLUG\tNAME\tFROM\tVARIANTS")
	for _, it := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", it.ProductID, it.Slug, it.Name, it.PriceFrom.StringFixed(2), it.VariantsAvailable)
	}
	return tw.Flush()
}

func runCategories(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)
	d, err := openDevice()
	if err != nil {
		return err
	}
	defer d.Close()

	cats, err := d.front.Categories(ctx)
	if err != nil {
		return err
	}
	for _, c := range cats {
		printf(cmd, "%s\t%s\n", c.Slug, c.Name)
	}
	return nil
}

func runProduct(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)
	d, err := openDevice()
	if err != nil {
		return err
	}
	defer d.Close()

	p, err := d.front.Product(ctx, slug.Make(args[0]))
	if err != nil {
		return err
	}
	printf(cmd, "%s  (id %d, from $%s)\n", p.Product.Name, p.Product.ID, p.Product.PriceFrom.StringFixed(2))
	if p.Product.Description != "" {
		printf(cmd, "%s\n", p.Product.Description)
	}
	for _, img := range p.Images {
		printf(cmd, "image: %s\n", img.URL)
	}
	if len(p.Variants) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VARIANT\tOPTION\tPRICE\tSTOCK")
	for _, v := range p.Variants {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", v.ID, v.Label(), v.Price.StringFixed(2), v.Stock)
	}
	return tw.Flush()
}
