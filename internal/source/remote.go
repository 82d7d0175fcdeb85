package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	remoteTimeout  = 30 * time.Second
	maxFetchBytes  = 32 * 1024 * 1024
	fetchRetries   = 2
)

// logBodyKeys are tried in order when a remote endpoint returns JSON
// instead of a raw text log.
var logBodyKeys = []string{"output", "log", "logs", "build_log", "stdout", "stderr"}

// rtdBuildPage matches a Read the Docs build page URL in a browser, which
// users paste directly. The API endpoint variant serves the raw log.
var rtdBuildPage = regexp.MustCompile(`^https?://(?:readthedocs\.org|app\.readthedocs\.org)/projects/([^/]+)/builds/(\d+)/?`)

// Remote fetches a completed build log over HTTP and streams its lines.
type Remote struct {
	url    string
	client *http.Client
	err    error
}

// NewRemote creates a source for the given URL. Read the Docs build page
// URLs are rewritten to the corresponding API txt endpoint.
func NewRemote(url string) *Remote {
	return &Remote{
		url:    NormalizeURL(url),
		client: &http.Client{Timeout: remoteTimeout},
	}
}

// NormalizeURL rewrites known build-page URLs to their raw-log form.
// Unrecognized URLs pass through unchanged.
func NormalizeURL(url string) string {
	if m := rtdBuildPage.FindStringSubmatch(url); m != nil {
		return fmt.Sprintf("https://readthedocs.org/api/v2/build/%s.txt", m[2])
	}
	return url
}

func (r *Remote) Lines(ctx context.Context) (<-chan string, error) {
	body, err := r.fetch(ctx)
	if err != nil {
		return nil, err
	}

	ch := make(chan string, 64)
	go func() {
		defer close(ch)
		r.err = scanLines(ctx, strings.NewReader(body), ch)
	}()
	return ch, nil
}

func (r *Remote) Err() error { return r.err }

func (r *Remote) fetch(ctx context.Context) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= fetchRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * time.Second):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		body, err := r.fetchOnce(ctx)
		if err == nil {
			return body, nil
		}
		lastErr = err
	}
	return "", lastErr
}

func (r *Remote) fetchOnce(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return "", fmt.Errorf("source: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("source: fetch %s: %w", r.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("source: fetch %s: HTTP %d", r.url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", fmt.Errorf("source: read %s: %w", r.url, err)
	}

	return unwrapJSON(data), nil
}

// unwrapJSON extracts the log text from a JSON response body. Raw text
// passes through unchanged.
func unwrapJSON(data []byte) string {
	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "{") {
		return trimmed
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return trimmed
	}
	for _, key := range logBodyKeys {
		if v, ok := doc[key].(string); ok && v != "" {
			return v
		}
	}
	return trimmed
}
