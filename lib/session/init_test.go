package session

import (
	logging "github.com/inconshreveable/log15"

	"boscoin.io/devote/lib/common"
	"boscoin.io/devote/lib/common/test"
)

func init() {
	common.SetLoggingTo(log, logging.LvlDebug, test.LogHandler())
}
