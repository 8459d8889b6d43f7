package httpcache

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"time"

	logging "github.com/inconshreveable/log15"

	"boscoin.io/devote/lib/errors"
)

// Client caches the responses of the wrapped handler. A response is never
// cached when its `Cache-Control` header has `no-store`.
type Client struct {
	adapter     Adapter
	ttl         time.Duration
	methods     map[string]bool
	statusCodes map[int]time.Duration
	logger      logging.Logger
}

type ClientOption func(c *Client) error

func NewClient(opts ...ClientOption) (*Client, error) {
	c := &Client{
		methods:     map[string]bool{"GET": true},
		statusCodes: map[int]time.Duration{},
		ttl:         time.Duration(0),
		logger:      log,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.adapter == nil {
		return nil, errors.InvalidConfig.Clone().SetData("reason", "cache client adapter is nil")
	}

	return c, nil
}

func WithAdapter(a Adapter) ClientOption {
	return func(c *Client) error {
		c.adapter = a
		return nil
	}
}

func WithExpire(ttl time.Duration) ClientOption {
	return func(c *Client) error {
		c.ttl = ttl
		return nil
	}
}

func WithMethods(methods ...string) ClientOption {
	return func(c *Client) error {
		for _, m := range methods {
			c.methods[m] = true
		}
		return nil
	}
}

func WithStatusCode(code int, ttl time.Duration) ClientOption {
	return func(c *Client) error {
		c.statusCodes[code] = ttl
		return nil
	}
}

func WithLogger(logger logging.Logger) ClientOption {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

func (c *Client) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ok := c.handleCache(next, w, r); !ok {
			next.ServeHTTP(w, r)
		}
	})
}

func (c *Client) handleCache(next http.Handler, w http.ResponseWriter, r *http.Request) bool {
	if ok := c.methods[r.Method]; !ok {
		return false
	}

	key := cacheKey(r.URL)
	if resp, ok := c.adapter.Get(key); ok {
		if resp.Expiration.IsZero() || resp.Expiration.After(time.Now()) {
			writeResponse(w, resp.StatusCode, resp.Header, resp.Value)
			c.logger.Debug("return cache", "url", key)
			return true
		}
		c.adapter.Remove(key)
	}

	rec := httptest.NewRecorder()
	next.ServeHTTP(rec, r)

	var (
		result              = rec.Result()
		value               = rec.Body.Bytes()
		expiration, caching = c.cachingExpiration(result)
	)

	if caching {
		c.adapter.Set(key, &Response{
			Value:      value,
			StatusCode: result.StatusCode,
			Header:     result.Header,
			Expiration: expiration,
		}, expiration)
		c.logger.Debug("page cached", "url", key, "code", result.StatusCode, "expiration", expiration)
	}

	writeResponse(w, result.StatusCode, result.Header, value)

	return true
}

func (c *Client) cachingExpiration(result *http.Response) (time.Time, bool) {
	if strings.Contains(result.Header.Get("Cache-Control"), "no-store") {
		return time.Time{}, false
	}

	if ttl, ok := c.statusCodes[result.StatusCode]; ok {
		return expiration(ttl), true
	} else if result.StatusCode < 400 {
		return expiration(c.ttl), true
	}

	return time.Time{}, false
}

func writeResponse(w http.ResponseWriter, code int, header http.Header, value []byte) {
	for k, v := range header {
		w.Header().Set(k, strings.Join(v, ","))
	}
	w.WriteHeader(code)
	w.Write(value)
}

func expiration(ttl time.Duration) time.Time {
	if ttl == 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}

func cacheKey(u *url.URL) string {
	params := u.Query()
	for _, p := range params {
		sort.Strings(p)
	}

	key := *u
	key.RawQuery = params.Encode()

	return key.String()
}
