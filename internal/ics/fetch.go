// Package ics turns subscribed ICS feeds into calendar events for the
// visualization: fetch with HTTP caching, parse, expand recurrences,
// group by week.
package ics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/peterbourgon/diskv/v3"

	applog "github.com/komapc/year-shape/internal/log"
)

// Source is a single ICS subscription.
type Source struct {
	// ID is an internal identifier (the config ICS id).
	ID string
	// URL is the ICS endpoint.
	URL string
}

// FetchResult is the outcome of fetching one source.
type FetchResult struct {
	Source    Source
	Body      []byte
	FromCache bool // true when the cached body was reused
}

// cacheMeta holds the HTTP validators for one cached URL.
type cacheMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Fetcher fetches ICS feeds with conditional requests (ETag /
// If-Modified-Since) backed by a disk cache, so an unreachable or
// unchanged feed still yields the last known body.
type Fetcher struct {
	client *http.Client
	store  *diskv.Diskv
}

// NewFetcher creates a Fetcher caching under cacheDir.
func NewFetcher(cacheDir string) *Fetcher {
	if cacheDir == "" {
		// Relative fallback so development runs without privileged paths.
		cacheDir = "./var/ics-cache"
	}
	return &Fetcher{
		client: &http.Client{Timeout: 15 * time.Second},
		store: diskv.New(diskv.Options{
			BasePath:     cacheDir,
			Transform:    func(string) []string { return nil },
			CacheSizeMax: 8 << 20,
		}),
	}
}

// FetchAll fetches every source, logging and collecting per-source
// errors. The result slice only holds sources that produced a body.
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source) ([]FetchResult, []error) {
	results := make([]FetchResult, 0, len(sources))
	var errs []error

	for _, src := range sources {
		res, err := f.FetchOne(ctx, src)
		if err != nil {
			errs = append(errs, err)
			applog.Error("ics fetch failed", err, "id", src.ID, "url", redactURL(src.URL))
			continue
		}
		results = append(results, res)
	}
	return results, errs
}

// FetchOne fetches a single source, honoring the cached validators.
func (f *Fetcher) FetchOne(ctx context.Context, src Source) (FetchResult, error) {
	if src.URL == "" {
		return FetchResult{}, errors.New("source URL is empty")
	}

	meta := f.loadMeta(src.URL)
	cachedBody, _ := f.store.Read(bodyKey(src.URL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return FetchResult{}, err
	}
	if meta.ETag != "" {
		req.Header.Set("If-None-Match", meta.ETag)
	}
	if meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}

	applog.Info("ics fetch start", "id", src.ID, "url", redactURL(src.URL))

	resp, err := f.client.Do(req)
	if err != nil {
		if len(cachedBody) > 0 {
			applog.Error("ics fetch network error, using cached body", err,
				"id", src.ID, "url", redactURL(src.URL))
			return FetchResult{Source: src, Body: cachedBody, FromCache: true}, nil
		}
		return FetchResult{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return FetchResult{}, readErr
		}
		f.saveCache(src.URL, cacheMeta{
			URL:          src.URL,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
			UpdatedAt:    time.Now().UTC(),
		}, body)
		applog.Info("ics fetch success", "id", src.ID, "url", redactURL(src.URL),
			"bytes", len(body))
		return FetchResult{Source: src, Body: body}, nil

	case http.StatusNotModified:
		if len(cachedBody) == 0 {
			return FetchResult{}, errors.New("304 Not Modified without a cached body")
		}
		applog.Info("ics fetch not modified, using cache", "id", src.ID, "url", redactURL(src.URL))
		return FetchResult{Source: src, Body: cachedBody, FromCache: true}, nil

	default:
		if len(cachedBody) > 0 {
			applog.Error("ics fetch non-OK, using cached body", errors.New(resp.Status),
				"id", src.ID, "url", redactURL(src.URL), "status", resp.StatusCode)
			return FetchResult{Source: src, Body: cachedBody, FromCache: true}, nil
		}
		return FetchResult{}, errors.New(resp.Status)
	}
}

func urlHash(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:8])
}

func bodyKey(url string) string { return urlHash(url) + ".ics" }
func metaKey(url string) string { return urlHash(url) + ".meta" }

func (f *Fetcher) loadMeta(url string) cacheMeta {
	var meta cacheMeta
	data, err := f.store.Read(metaKey(url))
	if err != nil {
		return cacheMeta{}
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return cacheMeta{}
	}
	return meta
}

// saveCache writes the body first so the meta never points at a
// missing body. Cache failures are logged, never propagated: the
// freshly fetched body is still good.
func (f *Fetcher) saveCache(url string, meta cacheMeta, body []byte) {
	if err := f.store.Write(bodyKey(url), body); err != nil {
		applog.Error("ics cache body write failed", err, "url", redactURL(url))
		return
	}
	data, err := json.Marshal(meta)
	if err != nil {
		applog.Error("ics cache meta marshal failed", err, "url", redactURL(url))
		return
	}
	if err := f.store.Write(metaKey(url), data); err != nil {
		applog.Error("ics cache meta write failed", err, "url", redactURL(url))
	}
}

// redactURL strips path and query from a feed URL before logging;
// subscription URLs routinely embed access tokens.
func redactURL(u string) string {
	const suffix = "/...(redacted)"
	i := strings.Index(u, "://")
	if i < 0 {
		return "ics://...(redacted)"
	}
	rest := u[i+3:]
	if j := strings.IndexByte(rest, '/'); j >= 0 {
		return u[:i+3+j] + suffix
	}
	return u + suffix
}
