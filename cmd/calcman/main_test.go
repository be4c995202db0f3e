package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/calcman/internal/catalog"
	"github.com/Veraticus/calcman/internal/common"
	"github.com/Veraticus/calcman/internal/model"
	"github.com/Veraticus/calcman/internal/server"
)

// testEnv runs calcman commands against a private database and config file.
type testEnv struct {
	t      *testing.T
	dir    string
	dbPath string
	config string
}

func newTestEnv(t *testing.T, configYAML string) *testEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("logging:\n  level: error\n"+configYAML), 0o600))
	t.Cleanup(func() {
		viper.Reset()
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	})
	return &testEnv{t: t, dir: dir, dbPath: filepath.Join(dir, "calcman.db"), config: cfg}
}

func (e *testEnv) run(stdin string, args ...string) (string, error) {
	e.t.Helper()
	viper.Reset()

	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", e.config, "--db", e.dbPath}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run("", args...)
	require.NoError(e.t, err, out)
	return out
}

func (e *testEnv) writeFile(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(e.t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const autoYAML = `id: auto
name: Автокредит
category: Автокредит
description: Кредит на автомобиль
variables:
  minAmount: 100000
  maxAmount: 5000000
  defaultAmount: 1000000
  minRate: 5
  maxRate: 25
  defaultRate: 12
seo:
  title: "{category} онлайн {year}"
`

const mortgageJSON = `{
  "id": "mortgage",
  "name": "Ипотека",
  "slug": "ipoteka-kalkulyator",
  "category": "Ипотека",
  "variables": {"minAmount": 300000, "maxAmount": 30000000, "defaultAmount": 3000000,
                "minRate": 3, "maxRate": 18, "defaultRate": 9.5}
}`

func TestCalculators_AddListShow(t *testing.T) {
	env := newTestEnv(t, "")

	out := env.mustRun("calculators", "add", "--file", env.writeFile("auto.yaml", autoYAML))
	assert.Contains(t, out, "Added Автокредит (auto) as /avtokredit")

	out = env.mustRun("calculators", "add", "-f", env.writeFile("mortgage.json", mortgageJSON))
	assert.Contains(t, out, "/ipoteka-kalkulyator")

	out = env.mustRun("calculators", "list")
	assert.Contains(t, out, "Calculators (2)")
	assert.Less(t, strings.Index(out, "avtokredit"), strings.Index(out, "ipoteka-kalkulyator"))

	out = env.mustRun("calculators", "show", "auto", "--year", "2025")
	assert.Contains(t, out, "Автокредит онлайн 2025")
}

func TestCalculators_AddRejectsInvalidFile(t *testing.T) {
	env := newTestEnv(t, "")

	bad := strings.Replace(autoYAML, "minAmount: 100000", "minAmount: 50000000", 1)
	_, err := env.run("", "calculators", "add", "--file", env.writeFile("bad.yaml", bad))
	require.Error(t, err)
	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.UserMessage, "invalid variables.minAmount")

	_, err = env.run("", "calculators", "add", "--file", env.writeFile("typo.yaml", autoYAML+"colour: red\n"))
	assert.ErrorIs(t, err, common.ErrParse)

	out := env.mustRun("calculators", "list")
	assert.Contains(t, out, "No calculators configured.")
}

func TestCalculators_Update(t *testing.T) {
	env := newTestEnv(t, "")
	env.mustRun("calculators", "add", "--file", env.writeFile("auto.yaml", autoYAML))

	out := env.mustRun("calculators", "update", "auto", "--name", "Автокредит онлайн", "--default-rate", "10", "--changefreq", "monthly")
	assert.Contains(t, out, "Updated Автокредит онлайн (auto)")

	out = env.mustRun("calculators", "show", "auto")
	assert.Contains(t, out, "5 ≤ 10 ≤ 25")
	assert.Contains(t, out, "monthly")

	_, err := env.run("", "calculators", "update", "auto", "--min-rate", "30")
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = env.run("", "calculators", "update", "auto")
	assert.Error(t, err)

	_, err = env.run("", "calculators", "update", "missing", "--name", "x")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCalculators_UpdateSitemapFlags(t *testing.T) {
	env := newTestEnv(t, "")
	env.mustRun("calculators", "add", "--file", env.writeFile("auto.yaml", autoYAML))

	env.mustRun("calculators", "update", "auto", "--priority", "0.35")
	env.mustRun("calculators", "update", "auto", "--changefreq", "daily")

	out := env.mustRun("calculators", "show", "auto")
	assert.Contains(t, out, "daily")
	assert.Contains(t, out, "0.35")

	env.mustRun("calculators", "update", "auto", "--clear-sitemap")
	out = env.mustRun("calculators", "show", "auto")
	assert.NotContains(t, out, "Sitemap priority")
	assert.NotContains(t, out, "daily")
}

func TestCalculators_Delete(t *testing.T) {
	env := newTestEnv(t, "")
	env.mustRun("calculators", "add", "--file", env.writeFile("auto.yaml", autoYAML))

	out, err := env.run("n\n", "calculators", "delete", "auto")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing deleted")

	out, err = env.run("yes\n", "calculators", "delete", "auto")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted Автокредит (auto)")

	_, err = env.run("", "calculators", "delete", "auto", "--force")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSEO_SetGlobalAndRender(t *testing.T) {
	env := newTestEnv(t, "")
	env.mustRun("calculators", "add", "--file", env.writeFile("mortgage.json", mortgageJSON))

	env.mustRun("seo", "set-global", "--title", "{category} X {year}")

	out := env.mustRun("seo", "render", "mortgage", "--year", "2025")
	assert.Contains(t, out, "title: Ипотека X 2025")
	assert.Contains(t, out, "h1: Ипотека калькулятор")

	out = env.mustRun("seo", "global")
	assert.Contains(t, out, "{category} X {year}")

	_, err := env.run("", "seo", "set-global")
	assert.Error(t, err)
}

func TestConfig_ExportImportRoundTrip(t *testing.T) {
	src := newTestEnv(t, "")
	src.mustRun("calculators", "add", "--file", src.writeFile("auto.yaml", autoYAML))
	src.mustRun("calculators", "add", "--file", src.writeFile("mortgage.json", mortgageJSON))

	exportDir := filepath.Join(src.dir, "exports")
	src.mustRun("config", "export", "--dir", exportDir)

	matches, err := filepath.Glob(filepath.Join(exportDir, "calculator-config-*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	dst := newTestEnv(t, "")
	dst.mustRun("calculators", "add", "--file", dst.writeFile("other.yaml", strings.Replace(autoYAML, "id: auto", "id: other", 1)))

	out := dst.mustRun("config", "import", matches[0])
	assert.Contains(t, out, "Imported 2 calculators")

	out = dst.mustRun("calculators", "list")
	assert.Contains(t, out, "Calculators (2)")
	assert.NotContains(t, out, "other")

	_, err = dst.run("", "config", "import", dst.writeFile("broken.json", `{"calculators": [{"id": "x"}]}`))
	assert.ErrorIs(t, err, common.ErrParse)
	assert.Contains(t, dst.mustRun("calculators", "list"), "Calculators (2)")
}

func TestSitemap(t *testing.T) {
	env := newTestEnv(t, "sitemap:\n  base_url: https://example.com/calc\n  priority: 0.5\n")
	env.mustRun("calculators", "add", "--file", env.writeFile("mortgage.json", mortgageJSON))

	outDir := filepath.Join(env.dir, "public")
	env.mustRun("sitemap", "--dir", outDir)

	matches, err := filepath.Glob(filepath.Join(outDir, "sitemap-*.xml"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "<loc>https://example.com/calc/ipoteka-kalkulyator</loc>")
	assert.Contains(t, string(data), "<priority>0.5</priority>")
}

func TestSitemap_RequiresBaseURL(t *testing.T) {
	env := newTestEnv(t, "")

	_, err := env.run("", "sitemap", "--dir", env.dir)
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestPush_REST(t *testing.T) {
	remote := catalog.New()
	srv := server.New(remote, server.Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	env := newTestEnv(t, "api:\n  url: "+ts.URL+"\n")
	env.mustRun("calculators", "add", "--file", env.writeFile("auto.yaml", autoYAML))
	env.mustRun("calculators", "add", "--file", env.writeFile("mortgage.json", mortgageJSON))
	env.mustRun("seo", "set-global", "--h1", "{category}!")

	out := env.mustRun("push", "--target", "rest")
	assert.Contains(t, out, "Pushed 2 calculators")
	assert.Equal(t, 2, remote.Len())
	assert.Equal(t, "{category}!", remote.GlobalFormulas().H1)

	// Pushing again fails on the first duplicate and is not retried.
	_, err := env.run("", "push", "--target", "rest")
	assert.ErrorIs(t, err, common.ErrTransport)
	assert.Contains(t, err.Error(), "after 0 of 2")
}

func TestPush_CMS(t *testing.T) {
	remote := catalog.New()
	srv := server.New(remote, server.Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	env := newTestEnv(t, "cms:\n  ajax_url: "+ts.URL+server.AjaxPath+"\n")
	env.mustRun("calculators", "add", "--file", env.writeFile("mortgage.json", mortgageJSON))

	env.mustRun("push", "--target", "cms", "--skip-formulas")
	assert.Equal(t, 1, remote.Len())
	assert.Equal(t, model.DefaultGlobalFormulas(), remote.GlobalFormulas())
}

func TestPush_MissingURLAndUnknownTarget(t *testing.T) {
	env := newTestEnv(t, "")

	_, err := env.run("", "push", "--target", "rest")
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	_, err = env.run("", "push", "--target", "ftp")
	assert.Error(t, err)
}

func TestMigrate(t *testing.T) {
	env := newTestEnv(t, "")

	out := env.mustRun("migrate", "--status")
	assert.Contains(t, out, "current version: 0")

	env.mustRun("migrate")
	out = env.mustRun("migrate", "--status")
	assert.Contains(t, out, "current version: 4")
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	env := newTestEnv(t, "")
	viper.Reset()

	root := newRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"--config", env.config, "--db", env.dbPath, "serve", "--addr", "127.0.0.1:0"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestServe_InvalidWatchPathStartsNothing(t *testing.T) {
	env := newTestEnv(t, "")

	reserved, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := reserved.Addr().String()
	require.NoError(t, reserved.Close())

	_, err = env.run("", "serve", "--addr", addr, "--watch", "")
	require.ErrorIs(t, err, common.ErrMissingConfig)
	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)

	// The address is still free: no server was left running.
	ln, err := net.Listen("tcp", addr)
	require.NoError(t, err)
	require.NoError(t, ln.Close())
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t, "")
	assert.Contains(t, env.mustRun("version"), "calcman dev")
}
