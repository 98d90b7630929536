package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/inbucket/html2text"
	"github.com/sandevgo/annabot/internal/core"
	"github.com/sandevgo/annabot/pkg/retry"
)

const (
	maxResponseSize     = 1 << 20 // 1MB limit
	defaultFetchTimeout = 15 * time.Second
)

var _ core.Tool = (*Fetch)(nil)

// Fetch downloads a page and returns it as plain text.
// Usage: get <url>. A bare url as the command works too.
type Fetch struct {
	client  *http.Client
	retrier *retry.Retrier
}

func NewFetchWithTimeout(timeout time.Duration, retryCfg *retry.Config) *Fetch {
	if retryCfg == nil {
		retryCfg = retry.NewDefaultConfig()
	}
	return &Fetch{
		client:  &http.Client{Timeout: timeout},
		retrier: retry.NewRetrier(retryCfg),
	}
}

func NewFetch() *Fetch {
	return NewFetchWithTimeout(defaultFetchTimeout, nil)
}

func (f *Fetch) Name() string { return "fetch" }

func (f *Fetch) Initialize(context.Context) error { return nil }

func (f *Fetch) IsAvailable() bool { return true }

func (f *Fetch) Cleanup(context.Context) error {
	f.client.CloseIdleConnections()
	return nil
}

func (f *Fetch) Execute(ctx context.Context, command string, args []string) (string, error) {
	target := command
	if command == "get" {
		if len(args) == 0 {
			return "", errors.New("fetch: missing url")
		}
		target = args[0]
	}

	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("fetch: invalid url %q", target)
	}
	return f.FetchURL(ctx, u.String())
}

func (f *Fetch) FetchURL(ctx context.Context, target string) (string, error) {
	var body string
	err := f.retrier.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return retry.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("User-Agent", core.AppUserAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to fetch url: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			err := fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
			if resp.StatusCode < 500 {
				return retry.Permanent(err)
			}
			return err
		}

		limited := io.LimitReader(resp.Body, maxResponseSize)
		if !strings.Contains(resp.Header.Get("Content-Type"), "html") {
			data, err := io.ReadAll(limited)
			if err != nil {
				return fmt.Errorf("failed to read body: %w", err)
			}
			body = string(data)
			return nil
		}

		body, err = html2text.FromReader(limited, html2text.Options{
			OmitLinks:    true,
			PrettyTables: true,
		})
		if err != nil {
			return fmt.Errorf("failed to read body: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(body), nil
}
