// Package fetcher downloads a web page and extracts its readable text.
package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var (
	ErrDomainNotAllowed = errors.New("domain not allowed")
	ErrTooLarge         = errors.New("page too large")
)

type Page struct {
	Title string
	Text  string
}

type Fetcher struct {
	allow    map[string]bool
	maxBytes int64
	httpc    *http.Client
}

// New allows only the listed hosts. An empty list rejects every URL.
func New(allowed []string, maxBytes int64) *Fetcher {
	allow := map[string]bool{}
	for _, h := range allowed {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			allow[h] = true
		}
	}
	if maxBytes <= 0 {
		maxBytes = 1500000
	}
	f := &Fetcher{allow: allow, maxBytes: maxBytes}
	f.httpc = &http.Client{
		Timeout: 20 * time.Second,
		// every hop must stay on the allow-list
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return errors.New("too many redirects")
			}
			_, err := f.Allowed(req.URL.String())
			return err
		},
	}
	return f
}

// Allowed reports whether rawURL is http(s) on an allowed host.
func (f *Fetcher) Allowed(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("bad url %q", rawURL)
	}
	if !f.allow[strings.ToLower(u.Host)] && !f.allow[strings.ToLower(u.Hostname())] {
		return nil, ErrDomainNotAllowed
	}
	return u, nil
}

func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	u, err := f.Allowed(rawURL)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("fetch %s: status %d", u.Host, resp.StatusCode)
	}
	if resp.ContentLength > f.maxBytes {
		return nil, ErrTooLarge
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > f.maxBytes {
		return nil, ErrTooLarge
	}

	ct, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	switch ct {
	case "text/plain":
		text := cleanWhitespace(string(b))
		return &Page{Title: guessTitleFromText(text), Text: text}, nil
	case "text/html", "application/xhtml+xml":
		return mainText(b)
	default:
		return nil, fmt.Errorf("unsupported content-type: %s", ct)
	}
}

// mainText keeps headings, paragraphs and list items, preferring main/article.
func mainText(b []byte) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("script, style, nav, footer, header").Remove()
	sel := doc.Find("main, article")
	if sel.Length() == 0 {
		sel = doc.Selection
	}
	var parts []string
	sel.Find("h1,h2,h3,h4,p,li,td").Each(func(_ int, s *goquery.Selection) {
		if t := strings.Join(strings.Fields(s.Text()), " "); t != "" {
			parts = append(parts, t)
		}
	})
	text := cleanWhitespace(strings.Join(parts, "\n"))
	if title == "" {
		title = guessTitleFromText(text)
	}
	return &Page{Title: title, Text: text}, nil
}

var wsRX = regexp.MustCompile(`[ \t]+\n`)

func cleanWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	return strings.TrimSpace(wsRX.ReplaceAllString(s, "\n"))
}

func guessTitleFromText(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	if r := []rune(line); len(r) > 120 {
		line = string(r[:120])
	}
	return line
}
