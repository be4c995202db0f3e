package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/calcman/internal/certs"
	"github.com/Veraticus/calcman/internal/common"
	"github.com/Veraticus/calcman/internal/config"
	"github.com/Veraticus/calcman/internal/server"
	"github.com/Veraticus/calcman/internal/watch"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API, the CMS endpoint and the sitemap",
		Long: `Serve the catalog over HTTP until interrupted.

With --watch, the given snapshot file is re-imported whenever it changes.
A file that fails to import is reported and the current catalog is kept.

With --tls, a self-signed localhost certificate is created on first use
under the config directory and the server accepts HTTPS only.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	cmd.Flags().String("watch", "", "snapshot file to re-import on change")
	cmd.Flags().Bool("tls", false, "serve HTTPS with a self-signed localhost certificate")
	_ = viper.BindPFlag(config.KeyServerAddr, cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	watchPath, _ := cmd.Flags().GetString("watch")
	useTLS, _ := cmd.Flags().GetBool("tls")

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	store, closeStore, err := openStore(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer closeStore()

	logger := slog.Default()
	cfg := server.Config{
		Addr:            settings.Server.Addr,
		RateLimit:       settings.Server.RateLimit,
		Burst:           settings.Server.Burst,
		MaxBodyBytes:    settings.Server.MaxBodyBytes,
		ShutdownTimeout: settings.Server.ShutdownTimeout,
	}
	if useTLS {
		tlsConfig, err := loadTLSConfig()
		if err != nil {
			return err
		}
		cfg.TLS = tlsConfig
	}
	srv := server.New(store, cfg, logger)

	// Setup errors must return before the server starts listening.
	var w *watch.Watcher
	if cmd.Flags().Changed("watch") {
		w, err = watch.New(config.ExpandPath(watchPath), store,
			watch.WithDebounce(settings.Watch.Debounce),
			watch.WithLogger(logger),
		)
		if err != nil {
			return common.NewUserError("cannot watch snapshot file", err)
		}
	}

	g, ctx := errgroup.WithContext(cmd.Context())

	g.Go(func() error {
		return srv.ListenAndServe(ctx)
	})
	if w != nil {
		g.Go(func() error {
			return w.Run(ctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func loadTLSConfig() (*tls.Config, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config directory: %w", err)
	}
	manager := certs.NewFileManager(filepath.Join(dir, "certs"))
	tlsConfig, err := manager.TLSConfig()
	if err != nil {
		return nil, err
	}
	slog.Info("Using self-signed certificate", "cert", manager.CertFile())
	return tlsConfig, nil
}
