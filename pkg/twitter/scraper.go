// Package twitter resolves a social profile to the stock tickers it mentions.
//
// Profiles are read from a public HTML mirror (nitter by default) and every
// $CASHTAG in the visible text is collected.
package twitter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/entrhq/autochart/pkg/fetch"
)

var (
	// ErrInvalidProfile is returned for handles that cannot exist.
	ErrInvalidProfile = errors.New("invalid profile handle")

	// ErrProfileNotFound is returned when the profile page does not exist.
	ErrProfileNotFound = errors.New("profile not found")
)

var (
	handlePattern  = regexp.MustCompile(`^@?([A-Za-z0-9_]{1,15})$`)
	cashtagPattern = regexp.MustCompile(`\$([A-Za-z][A-Za-z0-9.]{0,9})\b`)
)

// Getter fetches a URL. *fetch.Client satisfies it.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Scraper implements the profile-to-ticker lookup.
type Scraper struct {
	getter  Getter
	baseURL string
}

// NewScraper creates a scraper reading profiles from baseURL/<handle>.
func NewScraper(getter Getter, baseURL string) *Scraper {
	return &Scraper{
		getter:  getter,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Resolve returns the tickers mentioned on a profile, in order of first
// appearance. A profile that mentions none yields an empty slice.
func (s *Scraper) Resolve(ctx context.Context, profile string) ([]string, error) {
	handle, err := ParseHandle(profile)
	if err != nil {
		return nil, err
	}

	body, err := s.getter.Get(ctx, s.baseURL+"/"+handle)
	if err != nil {
		var statusErr *fetch.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%s: %w", handle, ErrProfileNotFound)
		}
		return nil, fmt.Errorf("failed to fetch profile %s: %w", handle, err)
	}

	text, err := visibleText(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", handle, err)
	}
	return ExtractCashtags(text), nil
}

// ParseHandle validates a handle such as "@jack" or "jack" and returns it
// without the leading @.
func ParseHandle(profile string) (string, error) {
	m := handlePattern.FindStringSubmatch(strings.TrimSpace(profile))
	if m == nil {
		return "", fmt.Errorf("%q: %w", profile, ErrInvalidProfile)
	}
	return m[1], nil
}

// ExtractCashtags returns the uppercased $CASHTAG symbols in text without
// the dollar sign, de-duplicated in order of appearance.
func ExtractCashtags(text string) []string {
	seen := make(map[string]struct{})
	tickers := []string{}
	for _, m := range cashtagPattern.FindAllStringSubmatch(text, -1) {
		ticker := strings.ToUpper(strings.TrimRight(m[1], "."))
		if _, dup := seen[ticker]; dup {
			continue
		}
		seen[ticker] = struct{}{}
		tickers = append(tickers, ticker)
	}
	return tickers
}

// visibleText concatenates the text nodes of an HTML document, skipping
// elements that never render.
func visibleText(doc []byte) (string, error) {
	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && isSkippedElement(n.Data) {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				b.WriteString(t)
				b.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return b.String(), nil
}

func isSkippedElement(tag string) bool {
	switch strings.ToLower(tag) {
	case "script", "style", "noscript", "template", "head":
		return true
	}
	return false
}
