package main

import (
	"bytes"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/calcman/internal/cli"
	"github.com/Veraticus/calcman/internal/common"
	"github.com/Veraticus/calcman/internal/config"
	"github.com/Veraticus/calcman/internal/sitemap"
)

func sitemapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitemap",
		Short: "Write sitemap-<date>.xml for every calculator page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			settings, err := loadSettings()
			if err != nil {
				return err
			}
			if settings.Sitemap.BaseURL == "" {
				return common.NewUserError("sitemap base URL is not configured",
					fmt.Errorf("%w: %s", common.ErrMissingConfig, config.KeySitemapBaseURL))
			}

			store, closeStore, err := openStore(cmd.Context(), settings)
			if err != nil {
				return err
			}
			defer closeStore()

			entries := store.SitemapData()
			var buf bytes.Buffer
			if err := sitemap.Encode(&buf, entries); err != nil {
				return err
			}

			path, err := writeOutput(dir, sitemap.Filename(time.Now()), buf.Bytes())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Wrote %d URLs to %s", len(entries), path)))
			return nil
		},
	}

	cmd.Flags().String("dir", ".", "output directory")

	return cmd
}
