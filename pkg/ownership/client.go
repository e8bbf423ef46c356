package ownership

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jsterling/ownerchart/pkg/cache"
	"github.com/jsterling/ownerchart/pkg/errors"
	"github.com/jsterling/ownerchart/pkg/httputil"
)

const (
	resolvePath = "/ownership-structure"
	httpTimeout = 30 * time.Second

	// cacheTTL bounds how long a resolved structure is reused. Ownership data
	// changes rarely; an hour keeps repeat lookups cheap without going stale.
	cacheTTL = time.Hour
)

// Client calls the remote ownership-resolution service.
// It handles caching, retry logic and backend error translation.
type Client struct {
	baseURL string
	http    *http.Client
	cache   cache.Cache
}

// NewClient creates a Client for the backend at baseURL.
// Pass a nil cache to disable response caching.
func NewClient(baseURL string, c cache.Cache) (*Client, error) {
	if err := errors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: httpTimeout},
		cache:   c,
	}, nil
}

// SetTimeout overrides the default request timeout. Non-positive values are
// ignored.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.http.Timeout = d
	}
}

// resolveRequest is the JSON body sent to the backend.
type resolveRequest struct {
	CompanyName string `json:"company_name"`
}

// backendError is the JSON error body returned by the backend on non-2xx.
type backendError struct {
	Detail string `json:"detail"`
}

// Resolve fetches the ownership structure for the given company name.
//
// The query is validated locally first: an empty or whitespace-only name never
// reaches the network. Successful responses are validated structurally and
// cached under the normalized name; refresh bypasses the cache. Transient
// failures (network errors, 5xx) are retried with exponential backoff; 4xx
// responses are terminal and surface the backend's detail message verbatim.
func (c *Client) Resolve(ctx context.Context, companyName string, refresh bool) (*Response, error) {
	if err := errors.ValidateCompanyName(companyName); err != nil {
		return nil, err
	}

	key := cacheKey(companyName)
	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, key); ok {
			var resp Response
			if err := json.Unmarshal(data, &resp); err == nil {
				resp.Cached = true
				return &resp, nil
			}
			// Corrupt entry: fall through and refetch.
		}
	}

	var resp *Response
	err := httputil.RetryWithBackoff(ctx, func() error {
		var fetchErr error
		resp, fetchErr = c.fetch(ctx, companyName)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}

	if err := Validate(resp.RootCompany); err != nil {
		return nil, err
	}

	if data, err := json.Marshal(resp); err == nil {
		_ = c.cache.Set(ctx, key, data, cacheTTL)
	}
	return resp, nil
}

func (c *Client) fetch(ctx context.Context, companyName string) (*Response, error) {
	body, err := json.Marshal(resolveRequest{CompanyName: companyName})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+resolvePath, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, &httputil.RetryableError{
			Err: errors.Wrap(errors.ErrCodeNetwork, err, "could not reach the ownership service"),
		}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, c.statusError(httpResp)
	}

	var resp Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, errors.Wrap(errors.ErrCodeBackend, err, "invalid response from ownership service")
	}
	return &resp, nil
}

// statusError translates a non-2xx response into a user-facing error. The
// backend's detail string is used verbatim when present; otherwise a generic
// message carries the status code.
func (c *Client) statusError(resp *http.Response) error {
	detail := ""
	if body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)); err == nil {
		var be backendError
		if json.Unmarshal(body, &be) == nil {
			detail = be.Detail
		}
	}
	if detail == "" {
		detail = fmt.Sprintf("ownership lookup failed (status %d)", resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errors.New(errors.ErrCodeCompanyNotFound, "%s", detail)
	case resp.StatusCode >= 500:
		return &httputil.RetryableError{Err: errors.New(errors.ErrCodeBackend, "%s", detail)}
	default:
		return errors.New(errors.ErrCodeBackend, "%s", detail)
	}
}

// cacheKey normalizes a company name into a stable cache key.
func cacheKey(companyName string) string {
	return "ownership:" + strings.ToLower(strings.Join(strings.Fields(companyName), " "))
}

// FormatProcessingTime renders the backend's processing_time seconds for
// display, e.g. 1.23 -> "1.23s".
func FormatProcessingTime(seconds float64) string {
	return fmt.Sprintf("%.2fs", seconds)
}
