package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/calcman/internal/cli"
	"github.com/Veraticus/calcman/internal/common"
	"github.com/Veraticus/calcman/internal/config"
	"github.com/Veraticus/calcman/internal/sheets"
)

const sheetsTokenFile = "sheets-token.json"

func publishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish the catalog with rendered SEO text to Google Sheets",
		Long: `Publish every calculator with its bounds and rendered SEO text to a
Google Sheet for editorial review. The target sheet is cleared first.

Authenticate with a service account (sheets.service_account_path) or with
OAuth2 credentials; run 'calcman publish auth' once to obtain a refresh token.`,
		Args: cobra.NoArgs,
		RunE: runPublish,
	}

	cmd.Flags().Int("year", time.Now().Year(), "year substituted into {year}")
	cmd.Flags().String("spreadsheet-id", "", "existing spreadsheet to write to (overrides sheets.spreadsheet_id)")
	_ = viper.BindPFlag("sheets.spreadsheet_id", cmd.Flags().Lookup("spreadsheet-id"))

	cmd.AddCommand(publishAuthCmd())

	return cmd
}

func runPublish(cmd *cobra.Command, _ []string) error {
	year, _ := cmd.Flags().GetInt("year")

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	sheetsCfg, err := config.LoadSheetsConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if sheetsCfg.ServiceAccountPath == "" && sheetsCfg.RefreshToken == "" {
		// Fall back to the token saved by 'publish auth'.
		if tokenFile, err := defaultTokenFile(); err == nil {
			if token, err := sheets.LoadToken(tokenFile); err == nil {
				sheetsCfg.RefreshToken = token.RefreshToken
			}
		}
	}
	if err := sheetsCfg.Validate(); err != nil {
		return common.NewUserError("Google Sheets is not configured; set sheets.* or run 'calcman publish auth'", err)
	}

	store, closeStore, err := openStore(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer closeStore()

	publisher, err := sheets.NewPublisher(cmd.Context(), *sheetsCfg, settings.Sitemap, slog.Default())
	if err != nil {
		return err
	}

	result, err := publisher.Publish(cmd.Context(), store.List(), store.GlobalFormulas(), year)
	if err != nil {
		return fmt.Errorf("failed to publish: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Published %d calculators", result.Rows)))
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(result.URL))
	return nil
}

func publishAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with Google Sheets using OAuth2",
		Long: `Authenticate with Google Sheets using OAuth2.

This command opens a local callback server, prints the Google consent URL
and saves the resulting token next to the config file. Run it once before
publishing with OAuth2 credentials.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			clientID := viper.GetString("sheets.client_id")
			clientSecret := viper.GetString("sheets.client_secret")
			if flagID, _ := cmd.Flags().GetString("client-id"); flagID != "" {
				clientID = flagID
			}
			if flagSecret, _ := cmd.Flags().GetString("client-secret"); flagSecret != "" {
				clientSecret = flagSecret
			}
			if clientID == "" || clientSecret == "" {
				return common.NewUserError("OAuth2 credentials not found: set sheets.client_id and sheets.client_secret or use --client-id and --client-secret", nil)
			}

			tokenFile, err := defaultTokenFile()
			if err != nil {
				return err
			}
			callback, _ := cmd.Flags().GetString("callback-addr")

			slog.Info("Starting Google Sheets authentication", "token_file", tokenFile)
			token, err := sheets.GetOrCreateToken(cmd.Context(), sheets.OAuth2Config{
				ClientID:     clientID,
				ClientSecret: clientSecret,
				TokenFile:    tokenFile,
				CallbackAddr: callback,
				Timeout:      5 * time.Minute,
			})
			if err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Authentication successful"))
			if token.RefreshToken != "" {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Token saved to " + tokenFile))
			}
			return nil
		},
	}

	cmd.Flags().String("client-id", "", "OAuth2 Client ID (overrides config)")
	cmd.Flags().String("client-secret", "", "OAuth2 Client Secret (overrides config)")
	cmd.Flags().String("callback-addr", sheets.DefaultCallbackAddr, "address of the local OAuth2 callback server")

	return cmd
}

func defaultTokenFile() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(dir, sheetsTokenFile), nil
}
