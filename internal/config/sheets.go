package config

import (
	"os"

	"github.com/spf13/viper"

	"github.com/Veraticus/calcman/internal/sheets"
)

// LoadSheetsConfig loads Google Sheets configuration from v and the environment.
// It follows this precedence:
// 1. Viper configuration (from config file or CALCMAN_ env vars)
// 2. Direct environment variables (GOOGLE_SHEETS_*)
// 3. Default values
func LoadSheetsConfig(v *viper.Viper) (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	fields := []struct {
		dst    *string
		key    string
		env    string
		isPath bool
	}{
		{&config.ServiceAccountPath, "sheets.service_account_path", "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", true},
		{&config.ClientID, "sheets.client_id", "GOOGLE_SHEETS_CLIENT_ID", false},
		{&config.ClientSecret, "sheets.client_secret", "GOOGLE_SHEETS_CLIENT_SECRET", false},
		{&config.RefreshToken, "sheets.refresh_token", "GOOGLE_SHEETS_REFRESH_TOKEN", false},
		{&config.SpreadsheetID, "sheets.spreadsheet_id", "GOOGLE_SHEETS_SPREADSHEET_ID", false},
		{&config.SpreadsheetName, "sheets.spreadsheet_name", "GOOGLE_SHEETS_SPREADSHEET_NAME", false},
		{&config.SheetName, "sheets.sheet_name", "", false},
		{&config.TimeZone, "sheets.time_zone", "", false},
	}
	for _, s := range fields {
		value := v.GetString(s.key)
		if value == "" && s.env != "" {
			value = os.Getenv(s.env)
		}
		if value == "" {
			continue
		}
		if s.isPath {
			value = ExpandPath(value)
		}
		*s.dst = value
	}

	if v.IsSet("sheets.batch_size") {
		config.BatchSize = v.GetInt("sheets.batch_size")
	}
	if v.IsSet("sheets.retry_attempts") {
		config.RetryAttempts = v.GetInt("sheets.retry_attempts")
	}
	if v.IsSet("sheets.retry_delay") {
		config.RetryDelay = v.GetDuration("sheets.retry_delay")
	}
	if v.IsSet("sheets.enable_formatting") {
		config.EnableFormatting = v.GetBool("sheets.enable_formatting")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
