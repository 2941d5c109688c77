// Package emoji turns GitHub :shortcode: tokens into Unicode emoji.
package emoji

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/go-github/v58/github"
	"github.com/h0rv/gpx/internal/logging"
	"go.uber.org/zap"
)

// emojiPrefix marks table codepoints in the emoji planes. Everything else
// (GitHub's custom images such as :octocat:) stays literal.
const emojiPrefix = "1f"

// Table maps ":code:" tokens to hex codepoints, e.g. ":+1:" -> "1f44d".
// Multi-codepoint sequences are joined with "-".
type Table map[string]string

// Fetcher retrieves GitHub's emoji listing: shortcode name to image URL.
type Fetcher interface {
	Emojis(ctx context.Context) (map[string]string, error)
}

// GitHubFetcher reads the listing from the REST API's /emojis endpoint.
type GitHubFetcher struct {
	client *github.Client
}

// NewGitHubFetcher creates a fetcher. An empty apiURL means api.github.com.
// The endpoint is public, so no token is sent.
func NewGitHubFetcher(apiURL string, httpClient *http.Client) (*GitHubFetcher, error) {
	client := github.NewClient(httpClient)
	if apiURL != "" {
		u, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid github api url: %w", err)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		client.BaseURL = u
	}
	return &GitHubFetcher{client: client}, nil
}

// Emojis implements Fetcher.
func (f *GitHubFetcher) Emojis(ctx context.Context) (map[string]string, error) {
	emojis, _, err := f.client.Emojis.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list emojis: %w", err)
	}
	return emojis, nil
}

// BuildTable converts a listing into a Table. Each value is the file stem
// of the image URL, which GitHub names after the codepoint.
func BuildTable(listing map[string]string) Table {
	table := make(Table, len(listing))
	for name, imageURL := range listing {
		stem := imageURL
		if u, err := url.Parse(imageURL); err == nil {
			stem = path.Base(u.Path)
		} else if i := strings.LastIndex(stem, "/"); i >= 0 {
			stem = stem[i+1:]
		}
		if i := strings.Index(stem, "."); i >= 0 {
			stem = stem[:i]
		}
		table[":"+name+":"] = stem
	}
	return table
}

// buildTimeout bounds the detached fetch of the emoji listing.
const buildTimeout = 30 * time.Second

// Cache lazily builds the emoji table on first use and keeps it for the
// life of the process. A failed build leaves an empty table, which makes
// Replace a no-op; it is never retried.
//
// The build runs in the background, detached from the request that started
// it. Callers wait for it only as long as their own context allows.
type Cache struct {
	fetcher Fetcher
	logger  *zap.Logger

	start   sync.Once
	ready   chan struct{} // closed once table and pattern are set
	table   Table
	pattern *regexp.Regexp
}

// NewCache creates a cache that builds its table from fetcher.
func NewCache(fetcher Fetcher, logger *zap.Logger) *Cache {
	return &Cache{
		fetcher: fetcher,
		logger:  logging.OrNop(logger),
		ready:   make(chan struct{}),
	}
}

// NewStatic creates a cache that is ready with table.
func NewStatic(table Table) *Cache {
	c := &Cache{logger: zap.NewNop(), ready: make(chan struct{})}
	c.start.Do(func() {
		c.install(table)
		close(c.ready)
	})
	return c
}

// Table returns the emoji table, starting the build if needed. It returns
// nil when ctx ends before the table is ready.
// The returned map must not be modified.
func (c *Cache) Table(ctx context.Context) Table {
	if !c.wait(ctx) {
		return nil
	}
	return c.table
}

// Replace substitutes every known :code: token in text whose codepoint lies
// in the emoji planes. Unknown tokens are kept as written, and so is the
// whole text when ctx ends before the table is ready.
func (c *Cache) Replace(ctx context.Context, text string) string {
	if !strings.Contains(text, ":") || !c.wait(ctx) || c.pattern == nil {
		return text
	}
	return c.pattern.ReplaceAllStringFunc(text, func(token string) string {
		if r, ok := toEmoji(c.table[token]); ok {
			return r
		}
		return token
	})
}

// wait starts the build once and reports whether it finished before ctx ended.
func (c *Cache) wait(ctx context.Context) bool {
	c.start.Do(func() {
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), buildTimeout)
		go func() {
			defer close(c.ready)
			defer cancel()
			c.build(buildCtx)
		}()
	})

	select {
	case <-c.ready:
		return true
	default:
	}
	select {
	case <-c.ready:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Cache) build(ctx context.Context) {
	if c.fetcher == nil {
		c.install(nil)
		return
	}

	listing, err := c.fetcher.Emojis(ctx)
	if err != nil {
		c.logger.Warn("emoji table unavailable, substitution disabled", zap.Error(err))
		c.install(nil)
		return
	}

	table := BuildTable(listing)
	c.install(table)
	c.logger.Debug("emoji table built", zap.Int("size", len(table)))
}

func (c *Cache) install(table Table) {
	if table == nil {
		table = Table{}
	}
	c.table = table
	c.pattern = compile(table)
}

// compile builds one alternation of every token, longest first so that no
// token is shadowed by a shorter one sharing its prefix.
func compile(table Table) *regexp.Regexp {
	if len(table) == 0 {
		return nil
	}
	tokens := make([]string, 0, len(table))
	for token := range table {
		tokens = append(tokens, token)
	}
	sort.Slice(tokens, func(i, j int) bool {
		if len(tokens[i]) != len(tokens[j]) {
			return len(tokens[i]) > len(tokens[j])
		}
		return tokens[i] < tokens[j]
	})
	for i, token := range tokens {
		tokens[i] = regexp.QuoteMeta(token)
	}
	return regexp.MustCompile(strings.Join(tokens, "|"))
}

// toEmoji decodes a hex codepoint, or a "-"-joined sequence of them.
func toEmoji(code string) (string, bool) {
	if !strings.HasPrefix(code, emojiPrefix) {
		return "", false
	}
	var b strings.Builder
	for _, part := range strings.Split(code, "-") {
		cp, err := strconv.ParseUint(part, 16, 32)
		if err != nil {
			return "", false
		}
		b.WriteRune(rune(cp))
	}
	return b.String(), true
}
