package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/calcman/internal/cli"
	"github.com/Veraticus/calcman/internal/common"
)

func seoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seo",
		Short: "Manage SEO templates",
		Long: `Manage the global SEO formulas and render per-calculator SEO text.

Templates may use {category} and {year}. A calculator's own title,
description or h1 overrides the global formula for that field.`,
	}

	cmd.AddCommand(seoGlobalCmd())
	cmd.AddCommand(seoSetGlobalCmd())
	cmd.AddCommand(seoRenderCmd())

	return cmd
}

func seoGlobalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "global",
		Short: "Show the global SEO formulas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			store, closeStore, err := openStore(cmd.Context(), settings)
			if err != nil {
				return err
			}
			defer closeStore()

			f := store.GlobalFormulas()
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox("Global SEO formulas", fmt.Sprintf(
				"%s %s\n%s %s\n%s %s",
				cli.BoldStyle.Render("Title:"), f.Title,
				cli.BoldStyle.Render("Description:"), f.Description,
				cli.BoldStyle.Render("H1:"), f.H1,
			)))
			return nil
		},
	}
}

func seoSetGlobalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-global",
		Short: "Replace the global SEO formulas",
		Long: `Replace the global SEO formulas. Fields that are not given keep their
current value. Per-calculator overrides are not touched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if !flags.Changed("title") && !flags.Changed("description") && !flags.Changed("h1") {
				return common.NewUserError("pass at least one of --title, --description or --h1", nil)
			}

			settings, err := loadSettings()
			if err != nil {
				return err
			}
			store, closeStore, err := openStore(cmd.Context(), settings)
			if err != nil {
				return err
			}
			defer closeStore()

			formulas := store.GlobalFormulas()
			if flags.Changed("title") {
				formulas.Title, _ = flags.GetString("title")
			}
			if flags.Changed("description") {
				formulas.Description, _ = flags.GetString("description")
			}
			if flags.Changed("h1") {
				formulas.H1, _ = flags.GetString("h1")
			}

			if err := store.UpdateGlobalFormulas(cmd.Context(), formulas); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Global SEO formulas updated for %d calculators", store.Len())))
			return nil
		},
	}

	cmd.Flags().String("title", "", "title formula")
	cmd.Flags().String("description", "", "description formula")
	cmd.Flags().String("h1", "", "h1 formula")

	return cmd
}

func seoRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <id>",
		Short: "Render the SEO text of a calculator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, _ := cmd.Flags().GetInt("year")

			settings, err := loadSettings()
			if err != nil {
				return err
			}
			store, closeStore, err := openStore(cmd.Context(), settings)
			if err != nil {
				return err
			}
			defer closeStore()

			rendered, err := store.RenderSEO(args[0], year)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "title: %s\ndescription: %s\nh1: %s\nkeywords: %s\n",
				rendered.Title, rendered.Description, rendered.H1, rendered.Keywords)
			return nil
		},
	}

	cmd.Flags().Int("year", time.Now().Year(), "year substituted into {year}")

	return cmd
}
