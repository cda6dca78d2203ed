// Package notes reads the remote notes catalogue: topics grouped by
// category, each with a markdown body.
package notes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/pbaille/unikit/internal/config"
	"github.com/pbaille/unikit/internal/domain"
)

const (
	userAgent = "unikit/1.0 (notes)"
	// 5MB, a single article never comes close
	maxBody = 5 * 1024 * 1024
)

// Topic is one entry of the catalogue
type Topic struct {
	Category string `json:"category"`
	Topic    string `json:"topic"`
}

type Client struct {
	baseURL     string
	http        *http.Client
	limiter     *rate.Limiter
	concurrency int
	log         *zap.Logger
}

// New returns a client for the API described by cfg
func New(cfg config.NotesConfig, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	limit := rate.Inf
	if cfg.Rate > 0 {
		limit = rate.Limit(cfg.Rate)
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		http:        &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(limit, concurrency),
		concurrency: concurrency,
		log:         log,
	}
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	u := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("fetch %s: %w", path, domain.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("fetch %s: HTTP %d: %s", path, resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Topics returns the whole catalogue keyed by category
func (c *Client) Topics(ctx context.Context) (map[string][]Topic, error) {
	var grouped map[string][]Topic
	if err := c.getJSON(ctx, "/api/topics", &grouped); err != nil {
		return nil, err
	}
	if grouped == nil {
		grouped = map[string][]Topic{}
	}
	return grouped, nil
}

// Categories returns the category names in alphabetical order
func Categories(grouped map[string][]Topic) []string {
	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Category returns the topics of one category
func (c *Client) Category(ctx context.Context, category string) ([]Topic, error) {
	grouped, err := c.Topics(ctx)
	if err != nil {
		return nil, err
	}
	topics, ok := grouped[category]
	if !ok {
		return nil, fmt.Errorf("category %s: %w", category, domain.ErrNotFound)
	}
	return topics, nil
}

// Content returns the markdown body of one topic
func (c *Client) Content(ctx context.Context, category, topic string) (string, error) {
	var resp struct {
		Content string `json:"content"`
	}
	path := "/api/topic/" + url.PathEscape(category) + "/" + url.PathEscape(topic)
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return "", err
	}
	return resp.Content, nil
}

// Export downloads every topic of category into dir as <topic>.md and
// returns the written paths. Topics whose names map to the same file get a
// numeric suffix (<topic>-2.md). Downloads run concurrently, bounded by the
// configured concurrency and request rate; the first failure cancels the rest.
func (c *Client) Export(ctx context.Context, category, dir string) ([]string, error) {
	topics, err := c.Category(ctx, category)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	names := uniqueFileNames(topics)
	paths := make([]string, len(topics))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, t := range topics {
		g.Go(func() error {
			if err := c.limiter.Wait(gctx); err != nil {
				return err
			}
			content, err := c.Content(gctx, t.Category, t.Topic)
			if err != nil {
				return fmt.Errorf("topic %s: %w", t.Topic, err)
			}
			path := filepath.Join(dir, names[i])
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			c.log.Debug("exported topic", zap.String("category", category), zap.String("topic", t.Topic))
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// FileName turns a topic name into a safe markdown file name
func FileName(topic string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return r
	}, strings.TrimSpace(topic))
	name = strings.Trim(name, ". ")
	if name == "" {
		name = "untitled"
	}
	return name + ".md"
}

// uniqueFileNames returns one FileName per topic, suffixing repeats. Names
// are compared case-insensitively for case-folding filesystems.
func uniqueFileNames(topics []Topic) []string {
	names := make([]string, len(topics))
	seen := make(map[string]bool, len(topics))
	for i, t := range topics {
		name := FileName(t.Topic)
		base := strings.TrimSuffix(name, ".md")
		for n := 2; seen[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s-%d.md", base, n)
		}
		seen[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}
