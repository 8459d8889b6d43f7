package cmd

import (
	"os"

	logging "github.com/inconshreveable/log15"
	isatty "github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	cmdcommon "boscoin.io/devote/cmd/devote/common"
	"boscoin.io/devote/lib/common"
	"boscoin.io/devote/lib/devnet"
	"boscoin.io/devote/lib/ledger"
	"boscoin.io/devote/lib/lifecycle"
	"boscoin.io/devote/lib/network/httpcache"
	"boscoin.io/devote/lib/session"
	"boscoin.io/devote/lib/store"
	"boscoin.io/devote/lib/vote"
)

const defaultLogLevel logging.Lvl = logging.LvlWarn

var (
	flagLogLevel  string = common.GetENVValue("DEVOTE_LOG_LEVEL", defaultLogLevel.String())
	flagLogOutput string = common.GetENVValue("DEVOTE_LOG_OUTPUT", "")
)

var (
	logLevel logging.Lvl
	log      logging.Logger = logging.New("module", "main")
)

var rootCmd = &cobra.Command{
	Use:   os.Args[0],
	Short: "devote",
	PersistentPreRun: func(c *cobra.Command, args []string) {
		if err := setLogging(); err != nil {
			cmdcommon.PrintFlagsError(c, "--log-level", err)
		}
	},
	Run: func(c *cobra.Command, args []string) {
		if len(args) < 1 {
			c.Usage()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", flagLogLevel, "log level, {crit, error, warn, info, debug}")
	rootCmd.PersistentFlags().StringVar(&flagLogOutput, "log-output", flagLogOutput, "set log output file")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		cmdcommon.PrintFlagsError(rootCmd, "", err)
	}
}

func SetArgs(s []string) {
	rootCmd.SetArgs(s)
}

// setLogging sends the logs of every package to stderr, or to
// `--log-output` in json.
func setLogging() (err error) {
	if logLevel, err = logging.LvlFromString(flagLogLevel); err != nil {
		return
	}

	var formatter logging.Format
	if isatty.IsTerminal(os.Stderr.Fd()) {
		formatter = logging.TerminalFormat()
	} else {
		formatter = common.JsonFormatEx(false, true)
	}
	logHandler := logging.StreamHandler(os.Stderr, formatter)

	if len(flagLogOutput) > 0 {
		if logHandler, err = logging.FileHandler(flagLogOutput, common.JsonFormatEx(false, true)); err != nil {
			return
		}
	}

	if logLevel == logging.LvlDebug {
		logHandler = logging.CallerFileHandler(logHandler)
	}

	log.SetHandler(logging.LvlFilterHandler(logLevel, logHandler))
	common.SetLogging(logLevel, logHandler)
	ledger.SetLogging(logLevel, logHandler)
	store.SetLogging(logLevel, logHandler)
	session.SetLogging(logLevel, logHandler)
	lifecycle.SetLogging(logLevel, logHandler)
	vote.SetLogging(logLevel, logHandler)
	devnet.SetLogging(logLevel, logHandler)
	httpcache.SetLogging(logLevel, logHandler)

	return
}
