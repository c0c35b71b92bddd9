package cli

import (
	"fmt"

	"marketplace/internal/domain"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type affiliateFlags struct {
	Name        string
	Description string
	Image       string
	DiscordURL  string
	RobloxURL   string
}

func (f *affiliateFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.Name, "name", "", "affiliate name")
	fs.StringVar(&f.Description, "description", "", "affiliate description")
	fs.StringVar(&f.Image, "image", "", "image URL or path")
	fs.StringVar(&f.DiscordURL, "discord-url", "", "communications invite link")
	fs.StringVar(&f.RobloxURL, "roblox-url", "", "Roblox group link")
}

func (f *affiliateFlags) input(fs *pflag.FlagSet) domain.AffiliateInput {
	var in domain.AffiliateInput
	if fs.Changed("name") {
		in.Name = &f.Name
	}
	if fs.Changed("description") {
		in.Description = &f.Description
	}
	if fs.Changed("image") {
		in.Image = &f.Image
	}
	if fs.Changed("discord-url") {
		in.DiscordURL = &f.DiscordURL
	}
	if fs.Changed("roblox-url") {
		in.RobloxURL = &f.RobloxURL
	}
	return in
}

// NewAffiliatesCommand creates the affiliates command group.
func NewAffiliatesCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "affiliates",
		Short: "List and edit affiliates",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List affiliates, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.loadedStore(cmd)
			if err != nil {
				return err
			}
			return printAffiliates(cmd.OutOrStdout(), opts.Format, store.Affiliates())
		},
	})

	addFlags := &affiliateFlags{}
	add := &cobra.Command{
		Use:   "add",
		Short: "Create an affiliate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.ownerStore(cmd)
			if err != nil {
				return err
			}
			affiliate, err := store.AddAffiliate(cmd.Context(), addFlags.input(cmd.Flags()))
			if err != nil {
				return err
			}
			return printRecord(cmd.OutOrStdout(), opts.Format, affiliate, affiliate.ID)
		},
	}
	addFlags.register(add.Flags())
	cmd.AddCommand(add)

	updateFlags := &affiliateFlags{}
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of an affiliate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.ownerStore(cmd)
			if err != nil {
				return err
			}
			affiliate, err := store.UpdateAffiliate(cmd.Context(), args[0], updateFlags.input(cmd.Flags()))
			if err != nil {
				return err
			}
			return printRecord(cmd.OutOrStdout(), opts.Format, affiliate, affiliate.ID)
		},
	}
	updateFlags.register(update.Flags())
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an affiliate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.ownerStore(cmd)
			if err != nil {
				return err
			}
			if err := store.DeleteAffiliate(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return err
		},
	})

	return cmd
}
