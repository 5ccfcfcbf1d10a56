package logger

import (
	"strings"

	"github.com/kataras/golog"
)

// Thin leveled facade over golog so packages don't carry the dependency.

var log = golog.New()

func init() {
	log.SetTimeFormat("2006-01-02 15:04:05")
}

func SetLevel(s string) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		log.SetLevel("debug")
	case "info":
		log.SetLevel("info")
	case "warn", "warning":
		log.SetLevel("warn")
	case "error":
		log.SetLevel("error")
	default:
		log.SetLevel("info")
	}
}

func Debugf(format string, v ...any) { log.Debugf(format, v...) }
func Infof(format string, v ...any)  { log.Infof(format, v...) }
func Warnf(format string, v ...any)  { log.Warnf(format, v...) }
func Errorf(format string, v ...any) { log.Errorf(format, v...) }
