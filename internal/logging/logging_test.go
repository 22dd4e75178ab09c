package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"meertime/tpaclassifier/classifier"
)

func TestNewWithTee(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(classifier.LoggingConfig{Level: "warn"}, WriterCore(&buf, zapcore.InfoLevel))
	require.NoError(t, err)

	logger.Warn("classification refused", zap.String("jname", "J0835-4510"))
	assert.Contains(t, buf.String(), "classification refused")
	assert.Contains(t, buf.String(), "J0835-4510")
}

func TestNewBadLevel(t *testing.T) {
	_, err := New(classifier.LoggingConfig{Level: "loud"})
	assert.ErrorContains(t, err, "log level")
}
