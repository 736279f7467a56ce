package logsvc

import (
	"log"
	"os"

	"github.com/tracked-edu/tracked/core"
)

// New returns the Rollbar logger when a token is configured, the zap logger otherwise.
func New(conf *core.Config) core.Logger {
	if conf.RollbarToken != "" && !conf.TestMode {
		std := log.New(os.Stderr, conf.AppName+" : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
		return NewRollbarLogger(std, conf)
	}
	return NewZapLogger(conf)
}
