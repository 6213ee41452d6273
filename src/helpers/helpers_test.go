package helpers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTypesUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewDataSourceError("fetch 01.01.2024", cause)

	assert.Equal(t, "fetch 01.01.2024: boom", err.Error())
	assert.ErrorIs(t, err, cause)

	var dsErr *DataSourceError
	assert.True(t, errors.As(error(err), &dsErr))

	plain := NewCommandError("bad input", nil)
	assert.Equal(t, "bad input", plain.Error())
}

func TestRetryWithBackoffEventuallySucceeds(t *testing.T) {
	calls := 0
	var retried []int

	res, err := RetryWithBackoff(context.Background(), 3, time.Millisecond,
		func(attempt int, err error) { retried = append(retried, attempt) },
		func() (string, error) {
			calls++
			if calls < 3 {
				return "", errors.New("transient")
			}
			return "ok", nil
		})

	require.NoError(t, err)
	assert.Equal(t, "ok", res)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestRetryWithBackoffGivesUp(t *testing.T) {
	cause := errors.New("down")
	calls := 0

	_, err := RetryWithBackoff(context.Background(), 1, time.Millisecond, nil,
		func() (int, error) {
			calls++
			return 0, cause
		})

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 2, calls)
}

func TestRetryWithBackoffStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := RetryWithBackoff(ctx, 5, time.Hour, nil, func() (int, error) {
		calls++
		return 0, errors.New("fail")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestProxyManagerRotation(t *testing.T) {
	pm := NewProxyManager([]string{"10.0.0.1:3128", "", "http://10.0.0.2:3128"}, "", nil)
	require.True(t, pm.HasProxies())

	first, err := pm.GetCurrentProxy()
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.1:3128", first)

	pm.RotateProxy()
	second, _ := pm.GetCurrentProxy()
	assert.Equal(t, "http://10.0.0.2:3128", second)

	pm.RotateProxy()
	again, _ := pm.GetCurrentProxy()
	assert.Equal(t, first, again)
}

func TestProxyManagerPinnedUserAgent(t *testing.T) {
	pm := NewProxyManager(nil, "exchange-chat/1.0", nil)
	assert.False(t, pm.HasProxies())
	assert.Equal(t, "exchange-chat/1.0", pm.GetUserAgent())

	current, err := pm.GetCurrentProxy()
	require.NoError(t, err)
	assert.Empty(t, current)
}

func TestFixedIdentities(t *testing.T) {
	gen := FixedIdentities("Alice", "Bob")
	assert.Equal(t, "Alice", gen())
	assert.Equal(t, "Bob", gen())
	assert.Equal(t, "Alice", gen())
}

func TestRandomFullName(t *testing.T) {
	name := RandomFullName()
	assert.NotEmpty(t, name)
	assert.True(t, strings.Contains(name, " "), "expected first and last name, got %q", name)
}
