package adapters

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"rewin/internal/ports"
	"rewin/internal/shared"
)

const defaultHTTPTimeout = 60 * time.Second
const defaultHTTPRetries = 3
const defaultHTTPRetryDelay = 200 * time.Millisecond
const maxHTTPRetryDelay = 2 * time.Second

const fetchUserAgent = "rewin-downloader"

type httpRetryConfig struct {
	timeout   time.Duration
	retries   int
	baseDelay time.Duration
}

func normalizeHTTPConfig(timeoutSec int, retries int, delayMs int) httpRetryConfig {
	timeout := time.Duration(timeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	retryCount := retries
	if retryCount <= 0 {
		retryCount = defaultHTTPRetries
	}
	baseDelay := time.Duration(delayMs) * time.Millisecond
	if baseDelay <= 0 {
		baseDelay = defaultHTTPRetryDelay
	}
	return httpRetryConfig{
		timeout:   timeout,
		retries:   retryCount,
		baseDelay: baseDelay,
	}
}

// HTTPFetcherAdapter downloads installers over HTTP(S). Transport errors,
// 5xx and 429 responses are retried with capped exponential backoff. The
// timeout bounds connecting and waiting for response headers only; the body
// of a large installer may take as long as ctx allows.
type HTTPFetcherAdapter struct {
	cfg httpRetryConfig
}

func NewHTTPFetcherAdapter(timeoutSec int, retries int, delayMs int) HTTPFetcherAdapter {
	return HTTPFetcherAdapter{cfg: normalizeHTTPConfig(timeoutSec, retries, delayMs)}
}

// Fetch streams url into a temporary file next to destPath and renames it
// into place once the body is complete.
func (a HTTPFetcherAdapter) Fetch(ctx context.Context, url string, destPath string) (int64, error) {
	cfg := a.cfg
	if cfg.retries == 0 {
		cfg = normalizeHTTPConfig(0, 0, 0)
	}
	resp, err := doRequest(ctx, url, cfg)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return 0, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("download failed with HTTP %d", resp.StatusCode)).
			WithCause(shared.HTTPStatusError(resp.StatusCode, url))
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), "."+filepath.Base(destPath)+".part-*")
	if err != nil {
		return 0, errbuilder.New().
			WithCode(errbuilder.CodePermissionDenied).
			WithMsg("failed to create download file").
			WithCause(err)
	}
	tmpName := tmp.Name()
	written, copyErr := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(tmpName)
		cause := copyErr
		if cause == nil {
			cause = closeErr
		}
		return 0, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("download interrupted").
			WithCause(cause)
	}
	if err := os.Rename(tmpName, destPath); err != nil {
		_ = os.Remove(tmpName)
		return 0, errbuilder.New().
			WithCode(errbuilder.CodePermissionDenied).
			WithMsg("failed to move download into place").
			WithCause(err)
	}
	return written, nil
}

func doRequest(ctx context.Context, url string, cfg httpRetryConfig) (*http.Response, error) {
	client := newDownloadClient(cfg.timeout)
	var lastErr error
	for attempt := 0; attempt < cfg.retries; attempt++ {
		if ctx.Err() != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("request canceled").
				WithCause(ctx.Err())
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("invalid download url").
				WithCause(err)
		}
		req.Header.Set("User-Agent", fetchUserAgent)
		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg("request canceled").
					WithCause(ctx.Err())
			}
			lastErr = err
			if attempt < cfg.retries-1 {
				sleepContext(ctx, httpRetryDelay(attempt, cfg))
				continue
			}
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("request failed").
				WithCause(err)
		}
		if (resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests) && attempt < cfg.retries-1 {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			sleepContext(ctx, httpRetryDelay(attempt, cfg))
			continue
		}
		return resp, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("request failed")
	}
	return nil, errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("request failed").
		WithCause(lastErr)
}

func newDownloadClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   timeout,
			ResponseHeaderTimeout: timeout,
			ExpectContinueTimeout: time.Second,
		},
	}
}

func httpRetryDelay(attempt int, cfg httpRetryConfig) time.Duration {
	delay := cfg.baseDelay * time.Duration(1<<attempt)
	if delay > maxHTTPRetryDelay {
		delay = maxHTTPRetryDelay
	}
	jitter := time.Duration(time.Now().UnixNano() % int64(delay/2+1))
	return delay + jitter
}

// sleepContext waits for d and reports false when ctx ended first.
func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

var _ ports.FetcherPort = HTTPFetcherAdapter{}
