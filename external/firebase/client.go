package firebase

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/riskibarqy/starleague/internal/domain/remote"
	"github.com/riskibarqy/starleague/internal/platform/logging"
	"github.com/riskibarqy/starleague/internal/platform/metrics"
	"github.com/riskibarqy/starleague/internal/platform/resilience"
	"github.com/riskibarqy/starleague/internal/platform/snapshot"
	"github.com/riskibarqy/starleague/internal/usecase"
)

const (
	dependencyName        = "firebase"
	defaultTimeout        = 15 * time.Second
	defaultReconnectDelay = 3 * time.Second
	maxResponseBytes      = 8 << 20
	jsonContentType       = "application/json"
)

var (
	authParamRegex = regexp.MustCompile(`auth=[^&\s"']+`)
	errTransient   = crerr.New("firebase transient failure")
)

var _ remote.Store = (*Client)(nil)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	AuthToken      string
	Timeout        time.Duration
	MaxRetries     int
	ReconnectDelay time.Duration
	Logger         *logging.Logger
	Metrics        *metrics.Manager
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to a Firebase Realtime Database over its REST and streaming API.
type Client struct {
	httpClient     *http.Client
	streamClient   *http.Client
	baseURL        string
	token          string
	maxRetries     int
	reconnectDelay time.Duration
	readBudget     time.Duration
	logger         *logging.Logger
	metrics        *metrics.Manager
	breaker        *resilience.CircuitBreaker
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	parsed, err := url.Parse(baseURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, crerr.Newf("invalid firebase database url %q", cfg.BaseURL)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	if httpClient.Timeout <= 0 {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient.Timeout = timeout
	}
	// The event stream stays open indefinitely, so it shares the transport but not the timeout.
	streamClient := &http.Client{Transport: httpClient.Transport, CheckRedirect: httpClient.CheckRedirect}

	reconnectDelay := cfg.ReconnectDelay
	if reconnectDelay <= 0 {
		reconnectDelay = defaultReconnectDelay
	}

	c := &Client{
		httpClient:     httpClient,
		streamClient:   streamClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.AuthToken),
		maxRetries:     max(cfg.MaxRetries, 0),
		reconnectDelay: reconnectDelay,
		readBudget:     requestBudget(httpClient.Timeout, max(cfg.MaxRetries, 0)),
		logger:         logger.Named("firebase"),
		metrics:        cfg.Metrics,
		breaker:        resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
	}
	c.breaker.OnStateChange(func(_, to resilience.CircuitState) {
		c.metrics.SetCircuitOpen(dependencyName, to == resilience.CircuitStateOpen)
	})
	return c, nil
}

// Read fetches the value at path. Concurrent reads of one path share a single request, which
// keeps running when the caller that started it goes away.
func (c *Client) Read(ctx context.Context, path string) (snapshot.Snapshot, error) {
	out, err, _ := c.flight.DoContext(ctx, "read:"+path, func(shared context.Context) (any, error) {
		readCtx, cancel := context.WithTimeout(shared, c.readBudget)
		defer cancel()
		return c.do(readCtx, http.MethodGet, path, nil)
	})
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	raw, ok := out.([]byte)
	if !ok {
		return snapshot.Snapshot{}, crerr.Newf("unexpected response payload type %T", out)
	}
	return snapshot.Snapshot{Path: path, Raw: raw}, nil
}

func (c *Client) Write(ctx context.Context, path string, value any) error {
	_, err := c.send(ctx, http.MethodPut, path, value)
	return err
}

func (c *Client) Update(ctx context.Context, path string, fields map[string]any) error {
	_, err := c.send(ctx, http.MethodPatch, path, fields)
	return err
}

func (c *Client) Remove(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodDelete, path, nil)
	return err
}

// Push appends value under a server generated key.
func (c *Client) Push(ctx context.Context, path string, value any) (string, error) {
	raw, err := c.send(ctx, http.MethodPost, path, value)
	if err != nil {
		return "", err
	}
	var resp struct {
		Name string `json:"name"`
	}
	if err := sonic.Unmarshal(raw, &resp); err != nil {
		return "", crerr.Wrap(err, "decode push response")
	}
	if resp.Name == "" {
		return "", crerr.New("push response without key")
	}
	return resp.Name, nil
}

func (c *Client) send(ctx context.Context, method, path string, value any) ([]byte, error) {
	body, err := sonic.ConfigStd.Marshal(value)
	if err != nil {
		return nil, crerr.Wrapf(err, "encode %s %s", method, path)
	}
	return c.do(ctx, method, path, body)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var raw []byte
	err := c.breaker.Do(func() error {
		var reqErr error
		raw, reqErr = c.executeRequest(ctx, method, c.endpoint(path), body)
		return reqErr
	}, isCircuitFailure)
	if crerr.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "firebase circuit breaker rejected request", "method", method, "path", path)
		return nil, crerr.Wrapf(usecase.ErrDependencyUnavailable, "remote store is temporarily unavailable")
	}
	return raw, err
}

func (c *Client) executeRequest(ctx context.Context, method, fullURL string, body []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
		if err != nil {
			return nil, crerr.Wrap(err, "build request")
		}
		req.Header.Set("accept", jsonContentType)
		if body != nil {
			req.Header.Set("content-type", jsonContentType)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = crerr.Wrapf(errTransient, "send request: %s", c.sanitize(err.Error()))
		} else {
			raw, readErr := readBody(resp.Body)
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = crerr.Wrapf(errTransient, "read response body: %v", readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = crerr.Wrapf(errTransient, "firebase status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, crerr.Newf("firebase status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = crerr.New("firebase request failed")
	}
	c.logger.WarnContext(ctx, "firebase request failed", "method", method, "url", c.redact(fullURL), "error", lastErr)
	return nil, lastErr
}

// requestBudget covers every attempt of one request plus the backoff between attempts.
func requestBudget(timeout time.Duration, retries int) time.Duration {
	backoff := time.Duration(retries*(retries+1)/2) * time.Second
	return timeout*time.Duration(retries+1) + backoff
}

func (c *Client) endpoint(path string) string {
	segs := make([]string, 0, 4)
	for _, p := range strings.Split(path, "/") {
		if p = strings.TrimSpace(p); p != "" {
			segs = append(segs, url.PathEscape(p))
		}
	}
	full := c.baseURL + "/" + strings.Join(segs, "/") + ".json"
	if c.token != "" {
		full += "?auth=" + url.QueryEscape(c.token)
	}
	return full
}

func (c *Client) sanitize(value string) string {
	if c.token != "" {
		value = strings.ReplaceAll(value, c.token, "REDACTED")
	}
	return authParamRegex.ReplaceAllString(value, "auth=REDACTED")
}

func (c *Client) redact(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return c.sanitize(rawURL)
	}
	query := parsed.Query()
	if query.Has("auth") {
		query.Set("auth", "REDACTED")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

func readBody(r io.Reader) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if _, err := buf.ReadFrom(io.LimitReader(r, maxResponseBytes)); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.B)
	return out, nil
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func isCircuitFailure(err error) bool {
	return crerr.Is(err, errTransient)
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
