// Package ingest resolves reference arguments into document text: inline
// strings pass through, local files are read, URLs are fetched politely and
// reduced to visible text. Long documents are chunked for per-segment
// checking.
package ingest

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/aletheia/internal/model"
	"github.com/ppiankov/aletheia/internal/util"
	"github.com/ppiankov/aletheia/internal/worker"
)

const maxRedirects = 5

// Config controls reference-document fetching
type Config struct {
	UserAgent     string
	Timeout       time.Duration
	MaxBodyBytes  int64
	RespectRobots bool
	InsecureTLS   bool

	// Per-host politeness
	RequestsPerSecond float64
	Burst             int

	// FetchWorkers bounds concurrent fetches in FetchAll
	FetchWorkers int

	// SystemRetry bounds attempts per URL on transient failures
	SystemRetry int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// Document is one loaded reference document
type Document struct {
	Text   string
	Source model.SourceMeta
}

// Fetcher retrieves reference documents over HTTP. It honors robots.txt
// (including crawl delays), rate-limits per host, caps redirects and body
// size, and retries transient failures.
type Fetcher struct {
	client  *http.Client
	robots  *util.RobotsChecker
	limiter *worker.Limiter
	config  Config
	log     *slog.Logger
	sleep   func(time.Duration)
}

// NewFetcher creates a new fetcher
func NewFetcher(config Config, log *slog.Logger) *Fetcher {
	if log == nil {
		log = slog.Default()
	}
	if config.SystemRetry < 1 {
		config.SystemRetry = 1
	}
	if config.FetchWorkers < 1 {
		config.FetchWorkers = 1
	}

	transport := &http.Transport{
		Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
	}
	if config.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	f := &Fetcher{
		client: &http.Client{
			Timeout:   config.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		limiter: worker.NewLimiter(config.RequestsPerSecond, config.Burst),
		config:  config,
		log:     log,
		sleep:   time.Sleep,
	}
	if config.RespectRobots {
		f.robots = util.NewRobotsChecker(config.UserAgent, config.Timeout)
	}
	return f
}

// Fetch retrieves one URL and reduces it to text. Transient failures retry
// with doubling backoff up to the configured budget.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Document, error) {
	crawlDelay := time.Duration(0)
	if f.robots != nil {
		allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return Document{}, fmt.Errorf("robots check: %w", err)
		}
		if !allowed {
			return Document{}, fmt.Errorf("blocked by robots.txt: %s", rawURL)
		}
		crawlDelay = delay
	}

	var doc Document
	var lastErr error
	backoff := time.Second
	for attempt := 1; attempt <= f.config.SystemRetry; attempt++ {
		if err := f.limiter.WaitWithDelay(ctx, rawURL, crawlDelay); err != nil {
			return Document{}, fmt.Errorf("rate limit wait: %w", err)
		}

		doc, lastErr = f.fetchOnce(ctx, rawURL)
		if lastErr == nil {
			return doc, nil
		}
		if !transientFetch(lastErr) || ctx.Err() != nil {
			return Document{}, lastErr
		}
		if attempt < f.config.SystemRetry {
			f.log.Warn("retrying fetch",
				"url", rawURL,
				"attempt", attempt,
				"error", lastErr)
			f.sleep(backoff)
			backoff *= 2
		}
	}
	return Document{}, fmt.Errorf("fetch failed after %d attempts: %w", f.config.SystemRetry, lastErr)
}

// FetchAll retrieves many URLs with bounded concurrency. Results align with
// the input slice; the first failure aborts remaining fetches.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) ([]Document, error) {
	docs := make([]Document, len(urls))
	sem := make(chan struct{}, f.config.FetchWorkers)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i, u := range urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			mu.Lock()
			aborted := firstErr != nil
			mu.Unlock()
			if aborted {
				return
			}

			doc, err := f.Fetch(ctx, u)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("fetch %s: %w", u, err)
				}
				return
			}
			docs[i] = doc
		}(i, u)
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return docs, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Document{}, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Document{}, &fetchStatusError{status: resp.StatusCode, text: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodyBytes))
	if err != nil {
		return Document{}, fmt.Errorf("read body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	text := string(body)
	if strings.Contains(contentType, "text/html") {
		text, err = HTMLToText(text)
		if err != nil {
			return Document{}, fmt.Errorf("parse html: %w", err)
		}
	}

	return Document{
		Text: text,
		Source: model.SourceMeta{
			URL:         resp.Request.URL.String(),
			StatusCode:  resp.StatusCode,
			ContentType: contentType,
			FetchedAt:   time.Now().UTC(),
			Bytes:       len(body),
		},
	}, nil
}

type fetchStatusError struct {
	status int
	text   string
}

func (e *fetchStatusError) Error() string {
	return fmt.Sprintf("unexpected status: %s", e.text)
}

// transientFetch reports whether the fetch is worth retrying. Network-level
// failures, timeouts, throttling and server errors are; other client errors
// are not.
func transientFetch(err error) bool {
	var statusErr *fetchStatusError
	if errors.As(err, &statusErr) {
		return statusErr.status == http.StatusTooManyRequests || statusErr.status >= 500
	}
	return !errors.Is(err, context.Canceled)
}
