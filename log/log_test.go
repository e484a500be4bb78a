package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	pkgerrors "github.com/pkg/errors"
)

func TestNewReturnsNamedLogger(t *testing.T) {
	logger := New("txauth")
	assert.NotNil(t, logger)
	logger.Infow("component started")
}

func TestWrapAnnotatesError(t *testing.T) {
	cause := errors.New("boom")
	wrapped := Wrap(cause, "signing transaction")

	assert.Error(t, wrapped)
	assert.Contains(t, wrapped.Error(), "signing transaction")
	assert.Equal(t, cause, pkgerrors.Cause(wrapped))
}

func TestWrapPassesThroughNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "no-op"))
}
