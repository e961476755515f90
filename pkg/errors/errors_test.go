package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapAndIsCode(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := fmt.Errorf("resolve: %w", Wrap(CodeGeocodingUnavailable, "geocoder failed", cause))

	require.True(t, IsCode(err, CodeGeocodingUnavailable))
	require.False(t, IsCode(err, CodeGeocodingNotFound))
	require.Equal(t, CodeGeocodingUnavailable, CodeOf(err))
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "geocoder failed: dial tcp: timeout")
}

func TestCodeOfPlainError(t *testing.T) {
	require.Empty(t, CodeOf(errors.New("boom")))
	require.Empty(t, CodeOf(nil))
}
