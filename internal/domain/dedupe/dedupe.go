// Package dedupe prepares a submitted URL list: it drops noise and duplicates,
// caps the batch size and checks that every URL belongs to one site.
package dedupe

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// Parser turns free text into a clean, ordered URL list.
type Parser struct {
	limit    int
	sameHost bool
}

// NewParser creates a parser with the default limit and the same-host check on.
func NewParser(opts ...Option) *Parser {
	p := &Parser{limit: DefaultLimit, sameHost: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is a prepared URL list.
type Result struct {
	URLs []string
	Host string
	// Dropped counts non-URL lines, duplicates and entries past the limit.
	Dropped int
}

// Parse keeps the lines of text that start with http, in order, without
// duplicates and at most up to the limit. The first occurrence of a URL wins.
func (p *Parser) Parse(text string) (Result, error) {
	var res Result
	seen := make(map[string]struct{})
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(strings.ToLower(line), "http") {
			res.Dropped++
			continue
		}
		key, err := Normalize(line)
		if err != nil {
			res.Dropped++
			continue
		}
		if _, dup := seen[key]; dup {
			res.Dropped++
			continue
		}
		if len(res.URLs) == p.limit {
			res.Dropped++
			continue
		}
		seen[key] = struct{}{}
		res.URLs = append(res.URLs, line)
	}
	if len(res.URLs) == 0 {
		return Result{}, ErrNoURLs
	}

	host, err := SameHost(res.URLs)
	if err != nil && p.sameHost {
		return Result{}, err
	}
	res.Host = host
	return res, nil
}

// Normalize returns the identity of a URL used for duplicate detection:
// lower-case scheme and host, no fragment, no trailing slash on the path.
func Normalize(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing url: %w", err)
	}
	if !strings.EqualFold(u.Scheme, "http") && !strings.EqualFold(u.Scheme, "https") {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("url %q has no host", raw)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String(), nil
}

// SameHost returns the shared hostname of urls. When more than one host is
// present it still returns the first one together with an error wrapping
// ErrMixedHosts that lists every host.
func SameHost(urls []string) (string, error) {
	var hosts []string
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("parsing url: %w", err)
		}
		h := strings.ToLower(u.Hostname())
		if !slices.Contains(hosts, h) {
			hosts = append(hosts, h)
		}
	}
	if len(hosts) == 0 {
		return "", ErrNoURLs
	}
	if len(hosts) > 1 {
		return hosts[0], fmt.Errorf("%w: %s", ErrMixedHosts, strings.Join(hosts, ", "))
	}
	return hosts[0], nil
}

// ParseURLs prepares text with the given limit and the same-host check on.
func ParseURLs(text string, limit int) (Result, error) {
	return NewParser(WithLimit(limit)).Parse(text)
}
