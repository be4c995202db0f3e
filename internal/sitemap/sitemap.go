// Package sitemap writes calculator pages as a sitemap protocol document.
package sitemap

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/calcman/internal/model"
)

// Namespace is the sitemap protocol namespace.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ContentType is served with sitemap documents.
const ContentType = "application/xml; charset=utf-8"

type urlset struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []url    `xml:"url"`
}

type url struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// Encode writes entries as an indented sitemap document.
func Encode(w io.Writer, entries []model.SitemapEntry) error {
	doc := urlset{
		Xmlns: Namespace,
		URLs:  make([]url, 0, len(entries)),
	}
	for _, e := range entries {
		doc.URLs = append(doc.URLs, url{
			Loc:        e.Loc,
			LastMod:    e.LastMod,
			ChangeFreq: e.ChangeFreq,
			Priority:   formatPriority(e.Priority),
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write sitemap header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode sitemap: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("failed to write sitemap: %w", err)
	}
	return nil
}

// formatPriority keeps every significant digit but always shows at least
// one decimal, so 1 becomes "1.0" and 0.85 stays "0.85".
func formatPriority(p float64) string {
	s := strconv.FormatFloat(p, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Filename names a sitemap generated at t.
func Filename(t time.Time) string {
	return "sitemap-" + t.Format(time.DateOnly) + ".xml"
}

// ExportFilename names a configuration export taken at t.
func ExportFilename(t time.Time) string {
	return "calculator-config-" + t.Format(time.DateOnly) + ".json"
}
