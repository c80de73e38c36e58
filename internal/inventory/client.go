// Package inventory implements the HTTP document provider: it lists device
// hostnames from an inventory API and downloads their latest configuration
// dumps. The search core never talks to it directly; it only sees the
// materialized documents.
package inventory

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/confscan/confscan/internal/logger"
	"github.com/confscan/confscan/internal/types"
	"golang.org/x/time/rate"
)

const defaultMaxBody = 4 << 20 // 4MB per config dump

// ErrNotFound is returned when the inventory has no config for a hostname.
// Callers treat it as a skip, not a failure.
var ErrNotFound = errors.New("configuration not found")

// Options configures a Client.
type Options struct {
	BaseURL  string
	Token    string
	Snapshot string // snapshot selector, e.g. "$last"
	Insecure bool   // accept any TLS certificate
	Timeout  time.Duration
	Rate     float64 // requests per second; 0 disables throttling
	MaxBytes int64   // per-config body cap; 0 = defaultMaxBody
}

// Client talks to the inventory API. Safe for concurrent use.
type Client struct {
	baseURL  string
	token    string
	snapshot string
	maxBytes int64
	hc       *http.Client
	limiter  *rate.Limiter
}

// New builds a Client from options. BaseURL is required.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("inventory URL is required")
	}
	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid inventory URL %q: %w", opts.BaseURL, err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBody
	}
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: opts.Insecure},
	}
	var limiter *rate.Limiter
	if opts.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.Rate), 1)
	}
	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		token:    opts.Token,
		snapshot: opts.Snapshot,
		maxBytes: maxBytes,
		hc:       &http.Client{Transport: transport, Timeout: timeout},
		limiter:  limiter,
	}, nil
}

type deviceRow struct {
	Hostname string `json:"hostname"`
}

// Hostnames lists every hostname the inventory knows for the configured
// snapshot, in inventory order.
func (c *Client) Hostnames(ctx context.Context) ([]string, error) {
	var rows []deviceRow
	if err := c.getJSON(ctx, "/api/v1/inventory/devices", &rows); err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.Hostname != "" {
			out = append(out, r.Hostname)
		}
	}
	logger.Debug("inventory returned %d hostnames", len(out))
	return out, nil
}

type configRow struct {
	Hostname     string `json:"hostname"`
	Hash         string `json:"hash"`
	LastChangeAt int64  `json:"lastChangeAt"` // epoch milliseconds
	Text         string `json:"text"`
}

// Fetch downloads the latest configuration for hostname. Returns ErrNotFound
// when the inventory has never collected a config for the device.
func (c *Client) Fetch(ctx context.Context, hostname string) (types.Document, error) {
	var row configRow
	if err := c.getJSON(ctx, "/api/v1/configs/"+url.PathEscape(hostname), &row); err != nil {
		return types.Document{}, fmt.Errorf("fetch config for %s: %w", hostname, err)
	}
	doc := types.Document{
		Hostname: hostname,
		Hash:     row.Hash,
		Text:     row.Text,
	}
	if row.Hostname != "" {
		doc.Hostname = row.Hostname
	}
	if row.LastChangeAt > 0 {
		doc.LastChange = time.UnixMilli(row.LastChangeAt)
	}
	return doc, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	for attempt := 0; ; attempt++ {
		resp, err := c.get(ctx, path)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusTooManyRequests && attempt == 0 {
			wait := retryAfter(resp)
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			logger.Warn("rate limited by inventory, retrying in %s", wait)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			continue
		}
		defer resp.Body.Close()
		switch {
		case resp.StatusCode == http.StatusNotFound:
			return ErrNotFound
		case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
			return fmt.Errorf("inventory rejected token (HTTP %d)", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("inventory returned HTTP %d", resp.StatusCode)
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, dst); err != nil {
			return fmt.Errorf("decode inventory response: %w", err)
		}
		return nil
	}
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	u := c.baseURL + path
	if c.snapshot != "" {
		u += "?snapshot=" + url.QueryEscape(c.snapshot)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "confscan")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.hc.Do(req)
}

func retryAfter(resp *http.Response) time.Duration {
	if s := resp.Header.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return time.Second
}
