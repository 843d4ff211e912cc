package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor_CarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.StandardLogger()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	t.Cleanup(func() { _, _, _ = Setup(Options{}) })

	ctx := ContextWithID(context.Background(), "abc-123")
	For(ctx).Info("hello")

	assert.Contains(t, buf.String(), `"request_id":"abc-123"`)
	assert.Equal(t, "abc-123", IDFrom(ctx))
	assert.Equal(t, "", IDFrom(context.Background()))
}

func TestSetup_Level(t *testing.T) {
	log, closer, err := Setup(Options{Level: "debug", JSON: true})
	require.NoError(t, err)
	defer closer.Close()
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	_, ok := log.Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok)

	_, _, err = Setup(Options{Level: "loud"})
	assert.Error(t, err)

	_, _, err = Setup(Options{})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}
