package devnet

import (
	"fmt"
	"net/http"
	"net/url"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/go-redis/redis"
	"github.com/gorilla/mux"
	logging "github.com/inconshreveable/log15"
	"github.com/ulule/limiter"
	"github.com/ulule/limiter/drivers/middleware/stdlib"
	limitermemory "github.com/ulule/limiter/drivers/store/memory"
	limiterredis "github.com/ulule/limiter/drivers/store/redis"

	"boscoin.io/devote/lib/common"
	"boscoin.io/devote/lib/errors"
	"boscoin.io/devote/lib/metrics"
	"boscoin.io/devote/lib/network/httputils"
)

const rateLimitStorePrefix = "devote-ratelimit"

func RecoverMiddleware(logger logging.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if r := recover(); r != nil {
					err, ok := r.(error)
					if !ok {
						err = fmt.Errorf("panic: %v", r)
					}
					httputils.WriteJSONError(w, errors.HTTPServerError.Wrap(err))
					logger.Error("recover an panic", "error", err, "stack", string(debug.Stack()))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// NewRateLimitStore makes the limiter store from uri; `memory://` or
// `redis://host:port/db`.
func NewRateLimitStore(s string) (limiter.Store, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, errors.InvalidConfig.Wrap(err).SetData("rate-limit-store", s)
	}

	switch u.Scheme {
	case "memory":
		return limitermemory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          rateLimitStorePrefix,
			CleanUpInterval: time.Minute,
		}), nil
	case "redis":
		var option *redis.Options
		if option, err = redis.ParseURL(s); err != nil {
			return nil, errors.InvalidConfig.Wrap(err).SetData("rate-limit-store", s)
		}

		store, err := limiterredis.NewStoreWithOptions(redis.NewClient(option), limiter.StoreOptions{
			Prefix:   rateLimitStorePrefix,
			MaxRetry: 3,
		})
		if err != nil {
			return nil, errors.InvalidConfig.Wrap(err).SetData("rate-limit-store", s)
		}
		return store, nil
	default:
		return nil, errors.InvalidConfig.Clone().SetData("rate-limit-store", s).SetData("reason", "unknown scheme")
	}
}

// RateLimitMiddleware limits requests per client ip; `rate` is formatted
// like "100-S" or "1000-M".
func RateLimitMiddleware(store limiter.Store, rate string) (mux.MiddlewareFunc, error) {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, errors.InvalidConfig.Wrap(err).SetData("rate-limit", rate)
	}

	middleware := stdlib.NewMiddleware(limiter.New(store, r))

	return middleware.Handler, nil
}

// MetricsMiddleware records every request by its route pattern.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		endpoint := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				endpoint = tpl
			}
		}

		started := time.Now()
		writer := &ResponseLog15Writer{w: w}
		next.ServeHTTP(writer, r)

		status := strconv.Itoa(writer.Status())
		metrics.API.RequestsTotal.With("endpoint", endpoint, "method", r.Method, "status", status).Add(1)
		if writer.Status() >= http.StatusBadRequest {
			metrics.API.RequestErrorsTotal.With("endpoint", endpoint, "method", r.Method, "status", status).Add(1)
		}
		metrics.API.RequestDurationSeconds.With("endpoint", endpoint, "method", r.Method, "status", status).Observe(time.Since(started).Seconds())
	})
}

type ResponseLog15Writer struct {
	w      http.ResponseWriter
	status int
	size   int
}

func (l *ResponseLog15Writer) Header() http.Header {
	return l.w.Header()
}

func (l *ResponseLog15Writer) Write(b []byte) (int, error) {
	if l.status == 0 {
		l.status = http.StatusOK
	}
	size, err := l.w.Write(b)
	l.size += size
	return size, err
}

func (l *ResponseLog15Writer) WriteHeader(s int) {
	l.w.WriteHeader(s)
	l.status = s
}

func (l *ResponseLog15Writer) Status() int {
	if l.status == 0 {
		return http.StatusOK
	}
	return l.status
}

func (l *ResponseLog15Writer) Size() int {
	return l.size
}

func (l *ResponseLog15Writer) Flush() {
	f, ok := l.w.(http.Flusher)
	if ok {
		f.Flush()
	}
}

var HeaderKeyFiltered = []string{
	"Content-Length",
	"Content-Type",
	"Accept",
	"Accept-Encoding",
	"User-Agent",
}

// Log15Handler logs in 2 phase, when request received and response sent.
// This was derived from github.com/gorilla/handlers/handlers.go
type Log15Handler struct {
	log     logging.Logger
	handler http.Handler
}

func NewLog15Handler(logger logging.Logger, handler http.Handler) Log15Handler {
	return Log15Handler{log: logger, handler: handler}
}

func (l Log15Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	uid := common.GenerateUUID()

	uri := r.RequestURI
	if uri == "" {
		uri = r.URL.RequestURI()
	}

	header := http.Header{}
	for key, value := range r.Header {
		if _, found := common.InStringArray(HeaderKeyFiltered, key); found {
			continue
		}
		header[key] = value
	}

	l.log.Debug(
		"request",
		"content-length", r.ContentLength,
		"content-type", r.Header.Get("Content-Type"),
		"headers", header,
		"id", uid,
		"method", r.Method,
		"proto", r.Proto,
		"remote", r.RemoteAddr,
		"uri", uri,
		"user-agent", r.UserAgent(),
	)

	started := time.Now()
	writer := &ResponseLog15Writer{w: w}
	l.handler.ServeHTTP(writer, r)

	l.log.Debug(
		"response",
		"id", uid,
		"status", writer.Status(),
		"size", writer.Size(),
		"elapsed", time.Since(started),
	)
}
