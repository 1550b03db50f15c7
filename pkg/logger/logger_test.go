package logger

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLevelForVerbosity(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(logrus.ErrorLevel, LevelForVerbosity(-1))
	assert.Equal(logrus.ErrorLevel, LevelForVerbosity(0))
	assert.Equal(logrus.WarnLevel, LevelForVerbosity(1))
	assert.Equal(logrus.InfoLevel, LevelForVerbosity(2))
	assert.Equal(logrus.DebugLevel, LevelForVerbosity(3))
	assert.Equal(logrus.TraceLevel, LevelForVerbosity(4))
	assert.Equal(logrus.TraceLevel, LevelForVerbosity(12))
}

func TestSetupFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, 1)
	defer logrus.SetLevel(logrus.InfoLevel)

	logrus.WithField("vm", "abc").Info("hidden")
	logrus.WithField("vm", "abc").Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "vm=abc")
}
