package augment

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// Web searches a results page and joins the top snippets.
type Web struct {
	fetcher *Fetcher
	conv    *md.Converter
	cfg     Config
}

// NewWeb builds a web augmenter. fetcher may be nil, in which case one is
// created from cfg.
func NewWeb(cfg Config, fetcher *Fetcher) *Web {
	if fetcher == nil {
		fetcher = NewFetcher(cfg.Timeout, cfg.UserAgent, cfg.MaxBodyBytes)
	}
	return &Web{
		fetcher: fetcher,
		conv:    md.NewConverter("", true, nil),
		cfg:     cfg,
	}
}

func (w *Web) Augment(ctx context.Context, topic, level string) (string, error) {
	query := strings.TrimSpace(strings.Join([]string{topic, level, w.cfg.QuerySuffix}, " "))
	if query == "" {
		return "", nil
	}
	if !strings.Contains(w.cfg.SearchURL, "%s") {
		return "", fmt.Errorf("search url %q has no %%s placeholder", w.cfg.SearchURL)
	}

	page, err := w.fetcher.Fetch(ctx, fmt.Sprintf(w.cfg.SearchURL, url.QueryEscape(query)))
	if err != nil {
		return "", fmt.Errorf("search %q: %w", query, err)
	}

	snippets := extractSnippets(w.conv, page, w.cfg.MaxSnippets)
	var b strings.Builder
	for _, s := range snippets {
		line := "- " + s + "\n"
		if w.cfg.MaxChars > 0 && b.Len()+len(line) > w.cfg.MaxChars {
			break
		}
		b.WriteString(line)
	}
	return strings.TrimSpace(b.String()), nil
}
