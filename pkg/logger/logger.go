// Package logger configures the process-wide logrus logger used by every
// jadm package.
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var levels = []logrus.Level{
	logrus.ErrorLevel,
	logrus.WarnLevel,
	logrus.InfoLevel,
	logrus.DebugLevel,
	logrus.TraceLevel,
}

// LevelForVerbosity maps the number of -v flags to a log level.
func LevelForVerbosity(verbosity int) logrus.Level {
	if verbosity < 0 {
		verbosity = 0
	}
	if verbosity >= len(levels) {
		return logrus.TraceLevel
	}
	return levels[verbosity]
}

// Setup points the standard logrus logger at out with a terminal friendly
// text format.
func Setup(out io.Writer, verbosity int) {
	logrus.SetOutput(out)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	logrus.SetLevel(LevelForVerbosity(verbosity))
}

// Println writes user facing output, not log records.
func Println(a ...interface{}) {
	fmt.Fprintln(os.Stdout, a...)
}

// Printf writes user facing output, not log records.
func Printf(format string, a ...interface{}) {
	fmt.Fprintf(os.Stdout, format, a...)
}
