package migration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

var errNoFetcher = errors.New("no fetcher configured")

// Fetcher loads the bytes behind a legacy recap file URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher downloads over HTTP, retrying connection errors and 5xx/429 responses.
type HTTPFetcher struct {
	Client   *http.Client
	MaxBytes int64
	executor failsafe.Executor[*http.Response]
}

func NewHTTPFetcher(client *http.Client, maxRetries int, maxBytes int64) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	retry := retrypolicy.NewBuilder[*http.Response]().
		HandleIf(func(resp *http.Response, err error) bool {
			return err != nil || retryable(resp)
		}).
		WithBackoff(200*time.Millisecond, 5*time.Second).
		WithMaxRetries(maxRetries).
		ReturnLastFailure().
		Build()
	return &HTTPFetcher{Client: client, MaxBytes: maxBytes, executor: failsafe.With(retry)}
}

func retryable(resp *http.Response) bool {
	return resp != nil && (resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests)
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.executor.WithContext(ctx).Get(func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := f.Client.Do(req)
		if err == nil && retryable(resp) {
			// only the status is inspected past this point
			_ = resp.Body.Close()
		}
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	limit := f.MaxBytes
	if limit <= 0 {
		limit = defaultMaxDocumentBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("fetch %s: larger than %d bytes", url, limit)
	}
	return data, nil
}

// ObjectReader reads objects from the site's own bucket.
type ObjectReader interface {
	KeyForURL(url string) (string, bool)
	Read(ctx context.Context, key string) ([]byte, error)
}

// ObjectFetcher serves URLs that point into the bucket straight from the
// bucket and hands anything else to Next.
type ObjectFetcher struct {
	Objects ObjectReader
	Next    Fetcher
}

func (f *ObjectFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.Objects != nil {
		if key, ok := f.Objects.KeyForURL(url); ok {
			return f.Objects.Read(ctx, key)
		}
	}
	if f.Next == nil {
		return nil, fmt.Errorf("fetch %s: %w", url, errNoFetcher)
	}
	return f.Next.Fetch(ctx, url)
}
