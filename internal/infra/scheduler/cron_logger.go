package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// cronLogger routes robfig/cron's own logging into logrus. The engine's
// bookkeeping messages (start, wake, run, schedule) go to debug.
type cronLogger struct {
	entry *logrus.Entry
}

var _ cron.Logger = cronLogger{}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	e := l.entry.WithFields(kvFields(keysAndValues))
	if msg == "skip" {
		e.Warn("Previous reminder run still in progress, tick skipped")
		return
	}
	e.Debugf("cron: %s", msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(kvFields(keysAndValues)).WithError(err).Errorf("cron: %s", msg)
}

func kvFields(keysAndValues []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
