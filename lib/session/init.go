package session

import (
	logging "github.com/inconshreveable/log15"

	"boscoin.io/devote/lib/common"
)

var log logging.Logger = logging.New("module", "session")

func init() {
	SetLogging(common.DefaultLogLevel, common.DefaultLogHandler)
}

func SetLogging(level logging.Lvl, handler logging.Handler) {
	common.SetLoggingTo(log, level, handler)
}
