package scheduler

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// logger adapts logrus to gocron.Logger.
type logger struct {
	entry *log.Entry
}

func newLogger() *logger {
	return &logger{entry: log.WithField("component", "scheduler")}
}

func (l *logger) with(args []any) *log.Entry {
	fields := log.Fields{}
	for i := 0; i+1 < len(args); i += 2 {
		fields[fmt.Sprint(args[i])] = args[i+1]
	}
	if len(args)%2 == 1 {
		fields["extra"] = args[len(args)-1]
	}
	return l.entry.WithFields(fields)
}

func (l *logger) Debug(msg string, args ...any) { l.with(args).Debug(msg) }

func (l *logger) Error(msg string, args ...any) { l.with(args).Error(msg) }

func (l *logger) Info(msg string, args ...any) { l.with(args).Info(msg) }

func (l *logger) Warn(msg string, args ...any) { l.with(args).Warn(msg) }
