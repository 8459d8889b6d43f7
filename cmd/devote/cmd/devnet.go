package cmd

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/run"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"

	cmdcommon "boscoin.io/devote/cmd/devote/common"
	"boscoin.io/devote/lib/common"
	"boscoin.io/devote/lib/devnet"
	"boscoin.io/devote/lib/metrics"
	"boscoin.io/devote/lib/version"
)

const defaultBind string = "0.0.0.0:12345"

var (
	flagBind            string = common.GetENVValue("DEVOTE_BIND", defaultBind)
	flagStorage         string
	flagTLSCertFile     string = common.GetENVValue("DEVOTE_TLS_CERT", "")
	flagTLSKeyFile      string = common.GetENVValue("DEVOTE_TLS_KEY", "")
	flagRateLimit       string = common.GetENVValue("DEVOTE_RATE_LIMIT", "")
	flagRateLimitStore  string = common.GetENVValue("DEVOTE_RATE_LIMIT_STORE", "memory://")
	flagHTTPCache       string = common.GetENVValue("DEVOTE_HTTP_CACHE", "")
	flagAccessLog       string = common.GetENVValue("DEVOTE_ACCESS_LOG", "")
	flagVerbose         bool   = common.GetENVValue("DEVOTE_VERBOSE", "0") == "1"
	flagDevnetNetworkID string = common.GetENVValue("DEVOTE_NETWORK_ID", common.DefaultNetworkID)
)

var flagShutdownTimeout = 5 * time.Second

var devnetCmd *cobra.Command

func init() {
	devnetCmd = &cobra.Command{
		Use:   "devnet",
		Short: "Run the dev ledger",
		Run: func(c *cobra.Command, args []string) {
			config, err := parseFlagsDevnet()
			if err != nil {
				cmdcommon.PrintFlagsError(c, "", err)
			}

			if err = runDevnet(config); err != nil {
				cmdcommon.PrintError(c, err)
			}
		},
	}

	currentDirectory, err := os.Getwd()
	if err == nil {
		currentDirectory, err = filepath.Abs(currentDirectory)
	}
	if err != nil {
		currentDirectory = "."
	}
	flagStorage = common.GetENVValue("DEVOTE_STORAGE", fmt.Sprintf("file://%s/db", currentDirectory))

	devnetCmd.Flags().StringVar(&flagBind, "bind", flagBind, "address to listen on")
	devnetCmd.Flags().StringVar(&flagDevnetNetworkID, "network-id", flagDevnetNetworkID, "network id")
	devnetCmd.Flags().StringVar(&flagStorage, "storage", flagStorage, "storage uri, 'memory://' or 'file:///path'")
	devnetCmd.Flags().StringVar(&flagTLSCertFile, "tls-cert", flagTLSCertFile, "tls certificate file")
	devnetCmd.Flags().StringVar(&flagTLSKeyFile, "tls-key", flagTLSKeyFile, "tls key file")
	devnetCmd.Flags().StringVar(&flagRateLimit, "rate-limit", flagRateLimit, "rate limit per client ip, like '100-S'")
	devnetCmd.Flags().StringVar(&flagRateLimitStore, "rate-limit-store", flagRateLimitStore, "rate limit store, 'memory://' or 'redis://host:port/db'")
	devnetCmd.Flags().StringVar(&flagHTTPCache, "http-cache", flagHTTPCache, "cache of final transaction statuses, 'memory://?size=N' or 'redis://host:port'")
	devnetCmd.Flags().StringVar(&flagAccessLog, "access-log", flagAccessLog, "access log file; '-' is stdout")
	devnetCmd.Flags().BoolVar(&flagVerbose, "verbose", flagVerbose, "verbose http2 logs")
	devnetCmd.Flags().DurationVar(&flagShutdownTimeout, "shutdown-timeout", flagShutdownTimeout, "wait for open requests on shutdown")

	rootCmd.AddCommand(devnetCmd)
}

type devnetConfig struct {
	networkID []byte
	storage   string
	server    devnet.ServerConfig
}

func parseFlagsDevnet() (config devnetConfig, err error) {
	if len(flagDevnetNetworkID) < 1 {
		err = fmt.Errorf("--network-id must be given")
		return
	}
	if (len(flagTLSCertFile) > 0) != (len(flagTLSKeyFile) > 0) {
		err = fmt.Errorf("--tls-cert and --tls-key must be given together")
		return
	}
	for _, f := range []string{flagTLSCertFile, flagTLSKeyFile} {
		if len(f) < 1 {
			continue
		}
		if _, err = os.Stat(f); err != nil {
			return
		}
	}

	config.networkID = []byte(flagDevnetNetworkID)
	config.storage = flagStorage

	config.server = devnet.NewServerConfig(flagBind)
	config.server.TLSCertFile = flagTLSCertFile
	config.server.TLSKeyFile = flagTLSKeyFile
	config.server.RateLimit = flagRateLimit
	config.server.RateLimitStore = flagRateLimitStore
	config.server.HTTPCache = flagHTTPCache
	if config.server.AccessLogOutput, err = openAccessLog(flagAccessLog); err != nil {
		return
	}

	if err = config.server.Validate(); err != nil {
		return
	}

	if flagVerbose {
		http2.VerboseLogs = true
	}

	log.Debug(
		"parsed flags:",
		"\n\tbind", flagBind,
		"\n\tnetwork-id", flagDevnetNetworkID,
		"\n\tstorage", flagStorage,
		"\n\ttls-cert", flagTLSCertFile,
		"\n\ttls-key", flagTLSKeyFile,
		"\n\trate-limit", flagRateLimit,
		"\n\trate-limit-store", flagRateLimitStore,
		"\n\thttp-cache", flagHTTPCache,
		"\n\taccess-log", flagAccessLog,
		"\n\tlog-level", flagLogLevel,
		"\n\tlog-output", flagLogOutput,
	)

	return
}

func openAccessLog(path string) (io.Writer, error) {
	switch path {
	case "":
		return ioutil.Discard, nil
	case "-":
		return os.Stdout, nil
	default:
		return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	}
}

func runDevnet(config devnetConfig) error {
	l, err := devnet.OpenLedger(config.storage, config.networkID)
	if err != nil {
		log.Crit("failed to initialize storage", "error", err)
		return err
	}
	defer l.Close()

	metrics.InitPrometheusMetrics()
	metrics.SetBuild(time.Now())

	server, err := devnet.NewServer(l, config.server)
	if err != nil {
		return err
	}

	log.Info("starting dev ledger", "version", version.Version, "network-id", string(config.networkID))

	// Execution group.
	var g run.Group
	{
		g.Add(func() error {
			if err := server.Start(); err != nil {
				log.Crit("failed to start dev ledger", "error", err)
				return err
			}
			return nil
		}, func(error) {
			ctx, cancel := context.WithTimeout(context.Background(), flagShutdownTimeout)
			defer cancel()

			if err := server.Stop(ctx); err != nil {
				log.Error("failed to stop dev ledger", "error", err)
			}
		})
	}
	{
		cancel := make(chan struct{})
		g.Add(func() error {
			return cmdcommon.Interrupt(cancel)
		}, func(error) {
			close(cancel)
		})
	}

	if err := g.Run(); err != nil {
		log.Info("dev ledger stopped", "reason", err)
	}

	return nil
}
