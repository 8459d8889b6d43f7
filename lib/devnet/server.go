package devnet

import (
	"context"
	"io"
	"io/ioutil"
	"net"
	"net/http"
	"time"

	ghandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"

	"boscoin.io/devote/lib/client"
	"boscoin.io/devote/lib/errors"
	"boscoin.io/devote/lib/network/httpcache"
)

const UrlPathPrefixMetric = "/metrics"

type ServerConfig struct {
	Addr string

	ReadTimeout,
	ReadHeaderTimeout,
	WriteTimeout,
	IdleTimeout time.Duration

	TLSCertFile,
	TLSKeyFile string

	// RateLimit is the rate per client ip, like "100-S"; empty means no
	// limit.
	RateLimit      string
	RateLimitStore string

	// HTTPCache caches final transaction statuses; `memory://?size=N`,
	// `redis://host:port` or empty.
	HTTPCache string

	AccessLogOutput io.Writer
}

func NewServerConfig(addr string) ServerConfig {
	return ServerConfig{
		Addr:              addr,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		RateLimitStore:    "memory://",
		AccessLogOutput:   ioutil.Discard,
	}
}

func (c ServerConfig) Validate() error {
	if len(c.Addr) < 1 {
		return errors.InvalidConfig.Clone().SetData("field", "addr")
	}
	if (len(c.TLSCertFile) < 1) != (len(c.TLSKeyFile) < 1) {
		return errors.InvalidConfig.Clone().SetData("field", "tls").SetData("reason", "both cert and key files are needed")
	}

	return nil
}

// Server serves the dev ledger API.
type Server struct {
	config   ServerConfig
	server   *http.Server
	listener net.Listener
}

func NewServer(l *Ledger, config ServerConfig) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	handler, err := NewHandler(l, config)
	if err != nil {
		return nil, err
	}

	server := &http.Server{
		Addr:              config.Addr,
		Handler:           handler,
		ReadTimeout:       config.ReadTimeout,
		ReadHeaderTimeout: config.ReadHeaderTimeout,
		WriteTimeout:      config.WriteTimeout,
	}
	server.SetKeepAlivesEnabled(true)

	if err = http2.ConfigureServer(server, &http2.Server{IdleTimeout: config.IdleTimeout}); err != nil {
		return nil, errors.InvalidConfig.Wrap(err)
	}

	return &Server{config: config, server: server}, nil
}

// NewHandler builds the router of the dev ledger API.
func NewHandler(l *Ledger, config ServerConfig) (http.Handler, error) {
	router := mux.NewRouter()
	router.Use(RecoverMiddleware(log))

	apiRouter := router.PathPrefix(client.UrlPrefixForAPIV1).Subrouter()
	apiRouter.Use(MetricsMiddleware)

	if len(config.RateLimit) > 0 {
		store, err := NewRateLimitStore(config.RateLimitStore)
		if err != nil {
			return nil, err
		}
		rateLimitMiddleware, err := RateLimitMiddleware(store, config.RateLimit)
		if err != nil {
			return nil, err
		}
		apiRouter.Use(rateLimitMiddleware)
	}

	apiRouter.Use(ghandlers.CORS(
		ghandlers.AllowedOrigins([]string{"*"}),
		ghandlers.AllowedMethods([]string{"GET", "POST"}),
		ghandlers.AllowedHeaders([]string{"Content-Type", "X-Requested-With", "Cache-Control", "Access-Control"}),
	))

	api := NewNetworkHandlerAPI(l)

	statusHandler := http.Handler(http.HandlerFunc(api.GetTransactionStatusHandler))
	if len(config.HTTPCache) > 0 {
		adapter, err := httpcache.NewAdapterFromString(config.HTTPCache)
		if err != nil {
			return nil, err
		}
		cache, err := httpcache.NewClient(httpcache.WithAdapter(adapter), httpcache.WithLogger(log))
		if err != nil {
			return nil, err
		}
		statusHandler = cache.Middleware(statusHandler)
	}

	apiRouter.HandleFunc(GetAccountHandlerPattern, api.GetAccountHandler).Methods("GET", "OPTIONS")
	apiRouter.HandleFunc(PostTransactionPattern, api.PostTransactionHandler).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc(GetTransactionHandlerPattern, api.GetTransactionHandler).Methods("GET", "OPTIONS")
	apiRouter.Handle(GetTransactionStatusHandlerPattern, statusHandler).Methods("GET", "OPTIONS")
	apiRouter.HandleFunc(GetBallotHandlerPattern, api.GetBallotHandler).Methods("GET", "OPTIONS")
	apiRouter.HandleFunc(GetBallotChoicesHandlerPattern, api.GetBallotChoicesHandler).Methods("GET", "OPTIONS")
	apiRouter.HandleFunc(GetBallotVotersHandlerPattern, api.GetBallotVotersHandler).Methods("GET", "OPTIONS")
	apiRouter.HandleFunc(GetBallotVoterHandlerPattern, api.GetBallotVoterHandler).Methods("GET", "OPTIONS")

	router.Handle(UrlPathPrefixMetric, promhttp.Handler()).Methods("GET")

	output := config.AccessLogOutput
	if output == nil {
		output = ioutil.Discard
	}

	return ghandlers.CombinedLoggingHandler(output, NewLog15Handler(log, router)), nil
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start listens and serves until the server is stopped; it returns nil for
// a stopped server.
func (s *Server) Start() (err error) {
	if s.listener, err = net.Listen("tcp", s.config.Addr); err != nil {
		return
	}

	log.Info("dev ledger started", "addr", s.listener.Addr().String(), "tls", len(s.config.TLSCertFile) > 0)

	if len(s.config.TLSCertFile) > 0 {
		err = s.server.ServeTLS(s.listener, s.config.TLSCertFile, s.config.TLSKeyFile)
	} else {
		err = s.server.Serve(s.listener)
	}

	if err == http.ErrServerClosed {
		err = nil
	}

	return
}

func (s *Server) Stop(ctx context.Context) error {
	log.Info("dev ledger stopping")

	return s.server.Shutdown(ctx)
}
