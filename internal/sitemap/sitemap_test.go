package sitemap_test

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/calcman/internal/model"
	"github.com/Veraticus/calcman/internal/sitemap"
)

func TestEncode(t *testing.T) {
	entries := []model.SitemapEntry{
		{Loc: "https://calc.example.com/lizing-kalkulyator", LastMod: "2025-03-14", ChangeFreq: "weekly", Priority: 0.8},
		{Loc: "https://calc.example.com/a&b", LastMod: "2025-03-15", ChangeFreq: "daily", Priority: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, sitemap.Encode(&buf, entries))

	want := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url>
    <loc>https://calc.example.com/lizing-kalkulyator</loc>
    <lastmod>2025-03-14</lastmod>
    <changefreq>weekly</changefreq>
    <priority>0.8</priority>
  </url>
  <url>
    <loc>https://calc.example.com/a&amp;b</loc>
    <lastmod>2025-03-15</lastmod>
    <changefreq>daily</changefreq>
    <priority>1.0</priority>
  </url>
</urlset>
`
	assert.Equal(t, want, buf.String())
}

func TestEncode_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sitemap.Encode(&buf, nil))

	assert.True(t, strings.HasPrefix(buf.String(), xml.Header))
	assert.Contains(t, buf.String(), `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"></urlset>`)
}

func TestEncode_IsValidXML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sitemap.Encode(&buf, []model.SitemapEntry{
		{Loc: "https://x/<script>", LastMod: "2025-01-01", ChangeFreq: "never", Priority: 0.3},
	}))

	var doc struct {
		URLs []struct {
			Loc      string `xml:"loc"`
			Priority string `xml:"priority"`
		} `xml:"url"`
	}
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.URLs, 1)
	assert.Equal(t, "https://x/<script>", doc.URLs[0].Loc)
	assert.Equal(t, "0.3", doc.URLs[0].Priority)
}

func TestEncode_PriorityPrecision(t *testing.T) {
	tests := []struct {
		priority float64
		want     string
	}{
		{0, "0.0"},
		{0.5, "0.5"},
		{0.85, "0.85"},
		{0.125, "0.125"},
		{1, "1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, sitemap.Encode(&buf, []model.SitemapEntry{
				{Loc: "https://example.com/a", LastMod: "2025-01-01", ChangeFreq: "weekly", Priority: tt.priority},
			}))
			assert.Contains(t, buf.String(), "<priority>"+tt.want+"</priority>")
		})
	}
}

func TestFilenames(t *testing.T) {
	at := time.Date(2025, time.July, 4, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "sitemap-2025-07-04.xml", sitemap.Filename(at))
	assert.Equal(t, "calculator-config-2025-07-04.json", sitemap.ExportFilename(at))
}
