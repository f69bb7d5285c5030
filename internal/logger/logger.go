package logger

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Init configures the global logrus logger.
// It is safe to call multiple times; later calls overwrite previous settings.
func Init(level, format string) {
	log.SetOutput(os.Stdout)
	if strings.EqualFold(format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	if level == "" {
		level = "info"
	}
	if lvl, err := log.ParseLevel(level); err == nil {
		log.SetLevel(lvl)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

// L returns the global logger for convenience.
func L() *log.Logger { return log.StandardLogger() }

// LogError writes a structured error entry tagged with where it happened.
func LogError(module, funcName, context string, data any, err error) {
	fields := log.Fields{
		"module":   module,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	L().WithFields(fields).Error(msg)
}
