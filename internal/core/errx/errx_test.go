package errx

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternalWrapsWithKind(t *testing.T) {
	cause := errors.New("boom")
	err := Internal("engine fault", cause)

	assert.Equal(t, KindInternal, KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "engine fault")
}

func TestKindOfUnwrapsChains(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(KindRateLimit, "throttled", nil))
	assert.Equal(t, KindRateLimit, KindOf(err))

	assert.Equal(t, KindInternal, KindOf(errors.New("untyped")))
}

func TestClassifyProvider(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{errors.New("429 Too Many Requests"), KindRateLimit},
		{errors.New("invalid x-api-key"), KindAuth},
		{errors.New("503 Service Unavailable"), KindUnavailable},
		{errors.New("connection refused"), KindUnavailable},
		{errors.New("400 invalid request"), KindBadRequest},
		{errors.New("something odd"), KindServer},
		{context.DeadlineExceeded, KindUnavailable},
	}
	for _, tc := range cases {
		classified := ClassifyProvider(tc.err)
		require.NotNil(t, classified, tc.err.Error())
		assert.Equal(t, tc.want, classified.Kind, tc.err.Error())
	}

	// Already-typed errors pass through unchanged.
	typed := New(KindAuth, "rejected", nil)
	assert.Same(t, typed, ClassifyProvider(typed))
	assert.Nil(t, ClassifyProvider(nil))
}

func TestIsRetryableOnlyForUnavailable(t *testing.T) {
	assert.True(t, IsRetryable(New(KindUnavailable, "outage", nil)))
	assert.False(t, IsRetryable(New(KindRateLimit, "throttled", nil)))
	assert.False(t, IsRetryable(New(KindServer, "broken", nil)))
}
