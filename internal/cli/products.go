package cli

import (
	"fmt"

	"marketplace/internal/domain"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// productFlags collects the payload flags shared by add and update.
type productFlags struct {
	Name        string
	Description string
	Image       string
	Price       string
}

func (f *productFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.Name, "name", "", "product name")
	fs.StringVar(&f.Description, "description", "", "product description")
	fs.StringVar(&f.Image, "image", "", "image URL or path")
	fs.StringVar(&f.Price, "price", "", "price, e.g. 19.99")
}

// input includes only the flags set on the command line.
func (f *productFlags) input(fs *pflag.FlagSet) domain.ProductInput {
	var in domain.ProductInput
	if fs.Changed("name") {
		in.Name = &f.Name
	}
	if fs.Changed("description") {
		in.Description = &f.Description
	}
	if fs.Changed("image") {
		in.Image = &f.Image
	}
	if fs.Changed("price") {
		n := domain.Number(f.Price)
		in.Price = &n
	}
	return in
}

// NewProductsCommand creates the products command group.
func NewProductsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List and edit products",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List products, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.loadedStore(cmd)
			if err != nil {
				return err
			}
			return printProducts(cmd.OutOrStdout(), opts.Format, store.Products())
		},
	})

	addFlags := &productFlags{}
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.ownerStore(cmd)
			if err != nil {
				return err
			}
			product, err := store.AddProduct(cmd.Context(), addFlags.input(cmd.Flags()))
			if err != nil {
				return err
			}
			return printRecord(cmd.OutOrStdout(), opts.Format, product, product.ID)
		},
	}
	addFlags.register(add.Flags())
	cmd.AddCommand(add)

	updateFlags := &productFlags{}
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.ownerStore(cmd)
			if err != nil {
				return err
			}
			product, err := store.UpdateProduct(cmd.Context(), args[0], updateFlags.input(cmd.Flags()))
			if err != nil {
				return err
			}
			return printRecord(cmd.OutOrStdout(), opts.Format, product, product.ID)
		},
	}
	updateFlags.register(update.Flags())
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.ownerStore(cmd)
			if err != nil {
				return err
			}
			if err := store.DeleteProduct(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return err
		},
	})

	return cmd
}
