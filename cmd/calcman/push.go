package main

import (
	"context"
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/calcman/internal/cli"
	"github.com/Veraticus/calcman/internal/client"
	"github.com/Veraticus/calcman/internal/common"
	"github.com/Veraticus/calcman/internal/config"
	"github.com/Veraticus/calcman/internal/model"
)

const (
	targetREST = "rest"
	targetCMS  = "cms"
)

// pusher sends definitions and formulas to one remote target.
type pusher interface {
	PushDefinition(ctx context.Context, def model.Definition) error
	PushFormulas(ctx context.Context, formulas model.GlobalFormulas) error
}

type restPusher struct {
	c *client.REST
}

func (p restPusher) PushDefinition(ctx context.Context, def model.Definition) error {
	_, err := p.c.Create(ctx, def)
	return err
}

func (p restPusher) PushFormulas(ctx context.Context, formulas model.GlobalFormulas) error {
	return p.c.UpdateGlobalSEO(ctx, formulas)
}

type cmsPusher struct {
	c *client.CMS
}

func (p cmsPusher) PushDefinition(ctx context.Context, def model.Definition) error {
	return p.c.AddCalculator(ctx, def)
}

func (p cmsPusher) PushFormulas(ctx context.Context, formulas model.GlobalFormulas) error {
	return p.c.UpdateSEOFormulas(ctx, formulas)
}

func pushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Send the local catalog to a remote REST API or CMS",
		Long: `Send every local calculator and the global SEO formulas to a remote
deployment. Each request is sent once; the first failure stops the push
and is reported as returned by the remote side.`,
		Args: cobra.NoArgs,
		RunE: runPush,
	}

	cmd.Flags().String("target", targetREST, "remote target: rest or cms")
	cmd.Flags().Bool("skip-formulas", false, "do not send the global SEO formulas")

	return cmd
}

func runPush(cmd *cobra.Command, _ []string) error {
	target, _ := cmd.Flags().GetString("target")
	skipFormulas, _ := cmd.Flags().GetBool("skip-formulas")

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	p, endpoint, err := newPusher(target, settings)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer closeStore()

	defs := store.List()
	out := cmd.OutOrStdout()
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(fmt.Sprintf("Pushing %d calculators to %s", len(defs), endpoint)))

	interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Push")
	ctx := interrupts.HandleInterrupts(cmd.Context())
	defer interrupts.Stop()

	progress := func(sent int) {
		interrupts.SetHint(fmt.Sprintf("%d of %d calculators were sent", sent, len(defs)))
	}
	progress(0)

	sent, err := pushAll(ctx, p, defs, out, progress)
	if err != nil {
		return fmt.Errorf("push stopped after %d of %d calculators: %w", sent, len(defs), err)
	}

	if !skipFormulas {
		if err := p.PushFormulas(ctx, store.GlobalFormulas()); err != nil {
			return fmt.Errorf("calculators were sent but the global formulas were not: %w", err)
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Pushed %d calculators to %s", sent, endpoint)))
	return nil
}

func newPusher(target string, settings config.Settings) (pusher, string, error) {
	opts := []client.Option{client.WithTimeout(settings.Client.Timeout)}

	switch target {
	case targetREST:
		endpoint, err := settings.RequireAPIURL()
		if err != nil {
			return nil, "", common.NewUserError("the REST API URL (api.url) is not configured", err)
		}
		c, err := client.NewREST(endpoint, opts...)
		if err != nil {
			return nil, "", err
		}
		return restPusher{c: c}, endpoint, nil

	case targetCMS:
		endpoint, err := settings.RequireAjaxURL()
		if err != nil {
			return nil, "", common.NewUserError("the CMS ajax URL (cms.ajax_url) is not configured", err)
		}
		c, err := client.NewCMS(endpoint, opts...)
		if err != nil {
			return nil, "", err
		}
		return cmsPusher{c: c}, endpoint, nil

	default:
		return nil, "", common.NewUserError(fmt.Sprintf("unknown target %q: use rest or cms", target), nil)
	}
}

// pushAll sends defs in order and returns how many were sent. progress is
// called after every definition that was accepted.
func pushAll(ctx context.Context, p pusher, defs []model.Definition, out io.Writer, progress func(int)) (int, error) {
	bar := progressbar.NewOptions(len(defs),
		progressbar.OptionSetWriter(out),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Pushing calculators...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(out)
		}),
	)

	for i, def := range defs {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		bar.Describe(fmt.Sprintf("[cyan][bold]Pushing[reset] %s", def.ID))
		if err := p.PushDefinition(ctx, def); err != nil {
			_ = bar.Exit()
			return i, fmt.Errorf("%s: %w", def.ID, err)
		}
		_ = bar.Add(1)
		progress(i + 1)
	}
	return len(defs), nil
}
