package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// Logger is the leveled key/value logger used across the application.
type Logger interface {
	Debug(msg string, keyvals ...interface{})
	Info(msg string, keyvals ...interface{})
	Warn(msg string, keyvals ...interface{})
	Error(msg string, keyvals ...interface{})
}

type logLevel int

const (
	debugLevel logLevel = iota
	infoLevel
	warnLevel
	errorLevel
)

type leveledLogger struct {
	out   *log.Logger
	errs  *log.Logger
	level logLevel
}

// NewLogger creates a new logger filtering below the given level, one of
// "debug", "info", "warn" or "error". Unknown levels fall back to info.
func NewLogger(level string) Logger {
	var l logLevel

	switch strings.ToLower(level) {
	case "debug":
		l = debugLevel
	case "info":
		l = infoLevel
	case "warn":
		l = warnLevel
	case "error":
		l = errorLevel
	default:
		l = infoLevel
	}

	return &leveledLogger{
		out:   log.New(os.Stdout, "", log.Ldate|log.Ltime),
		errs:  log.New(os.Stderr, "", log.Ldate|log.Ltime),
		level: l,
	}
}

func (l *leveledLogger) Debug(msg string, keyvals ...interface{}) {
	if l.level <= debugLevel {
		l.out.Println(formatMsg("DEBUG", msg, keyvals...))
	}
}

func (l *leveledLogger) Info(msg string, keyvals ...interface{}) {
	if l.level <= infoLevel {
		l.out.Println(formatMsg("INFO", msg, keyvals...))
	}
}

func (l *leveledLogger) Warn(msg string, keyvals ...interface{}) {
	if l.level <= warnLevel {
		l.out.Println(formatMsg("WARN", msg, keyvals...))
	}
}

func (l *leveledLogger) Error(msg string, keyvals ...interface{}) {
	if l.level <= errorLevel {
		l.errs.Println(formatMsg("ERROR", msg, keyvals...))
	}
}

// formatMsg renders the message followed by space-separated key=value pairs.
// A trailing key without a value is rendered as key=<missing>.
func formatMsg(level, msg string, keyvals ...interface{}) string {
	var b strings.Builder
	b.WriteString(level)
	b.WriteString(": ")
	b.WriteString(msg)

	for i := 0; i < len(keyvals); i += 2 {
		b.WriteByte(' ')
		b.WriteString(fmt.Sprintf("%v", keyvals[i]))
		b.WriteByte('=')

		if i+1 < len(keyvals) {
			b.WriteString(fmt.Sprintf("%v", keyvals[i+1]))
		} else {
			b.WriteString("<missing>")
		}
	}

	return b.String()
}
