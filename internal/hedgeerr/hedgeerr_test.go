package hedgeerr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigInvalid(t *testing.T) {
	err := NewConfigInvalid("default_hedge_ratio", "must be positive")
	assert.Equal(t, ConfigInvalid, err.Code)
	assert.Equal(t, "default_hedge_ratio", err.Field)
	assert.Equal(t, "must be positive", err.Reason)
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("pool exhausted")
	err := Wrap(cause, EstimationUnderflow, "no samples")
	require.NotNil(t, err)
	assert.Equal(t, cause, err.Unwrap())
	assert.NotEmpty(t, err.Error())
}

func TestWrapNilIsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ConfigInvalid, "x"))
}

func TestIsAndAs(t *testing.T) {
	err := New(SymbolUnknown, "unconfigured symbol")
	assert.True(t, Is(err, SymbolUnknown))
	assert.False(t, Is(err, Shutdown))

	var target *Error
	require.True(t, As(err, &target), "As should find the *Error")
	assert.Equal(t, SymbolUnknown, target.Code)
}
