package logging

import (
	"log"

	"memtap/application"
)

// LogLogger delegates to the std log package.
type LogLogger struct {
}

func NewLogLogger() application.Logger {
	return &LogLogger{}
}

func (l LogLogger) Printf(format string, v ...any) {
	log.Printf(format, v...)
}

// PrefixedLogger tags every line, used to tell concurrent sessions apart.
type PrefixedLogger struct {
	prefix string
	inner  application.Logger
}

func NewPrefixedLogger(prefix string, inner application.Logger) application.Logger {
	return &PrefixedLogger{prefix: prefix, inner: inner}
}

func (l PrefixedLogger) Printf(format string, v ...any) {
	l.inner.Printf(l.prefix+": "+format, v...)
}
