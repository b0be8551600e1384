package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"

	"kisanmitra-scheme-engine/internal/utils"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, utils.ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, utils.ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, utils.ParseLevel(" error "))
	assert.Equal(t, zapcore.InfoLevel, utils.ParseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, utils.ParseLevel("verbose"))
}

func TestGetLogger_NeverNil(t *testing.T) {
	utils.SetLogger(nil)
	assert.NotNil(t, utils.GetLogger())
}
