package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/calcman/internal/catalog"
	"github.com/Veraticus/calcman/internal/cli"
	"github.com/Veraticus/calcman/internal/sitemap"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Export or import the whole configuration",
	}

	cmd.AddCommand(configExportCmd())
	cmd.AddCommand(configImportCmd())

	return cmd
}

func configExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the configuration to calculator-config-<date>.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			settings, err := loadSettings()
			if err != nil {
				return err
			}
			store, closeStore, err := openStore(cmd.Context(), settings)
			if err != nil {
				return err
			}
			defer closeStore()

			snap := store.Export()
			var buf bytes.Buffer
			if err := catalog.EncodeSnapshot(&buf, snap); err != nil {
				return err
			}

			path, err := writeOutput(dir, sitemap.ExportFilename(snap.ExportedAt), buf.Bytes())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %d calculators to %s", len(snap.Calculators), path)))
			return nil
		},
	}

	cmd.Flags().String("dir", ".", "output directory")

	return cmd
}

func configImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the configuration with an exported file",
		Long: `Replace the whole configuration with an exported file. Nothing is merged:
calculators missing from the file are removed. The file is fully validated
first; if anything is wrong the current configuration is kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
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

			if err := store.ImportJSON(cmd.Context(), data); err != nil {
				return describeValidation(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Imported %d calculators from %s", store.Len(), args[0])))
			return nil
		},
	}
}
