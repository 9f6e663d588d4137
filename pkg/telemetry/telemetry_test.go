package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hookKey struct{}

func TestNewOptions(t *testing.T) {
	t.Parallel()

	defaults := NewOptions()
	assert.True(t, defaults.enabled)
	assert.Equal(t, DefaultEndpoint, defaults.endpoint)
	assert.False(t, defaults.insecure)
	assert.Equal(t, DefaultTimeout, defaults.timeout)

	custom := NewOptions(WithEnabled(false), WithEndpoint("collector:4317"), WithInsecure(), WithTimeout(time.Second))
	assert.False(t, custom.enabled)
	assert.Equal(t, "collector:4317", custom.endpoint)
	assert.True(t, custom.insecure)
	assert.Equal(t, time.Second, custom.timeout)

	ignored := NewOptions(WithEndpoint(""), WithTimeout(0))
	assert.Equal(t, DefaultEndpoint, ignored.endpoint)
	assert.Equal(t, DefaultTimeout, ignored.timeout)
}

func TestObserve_Disabled(t *testing.T) {
	t.Parallel()

	called := false
	hookFn := func(ctx context.Context) (context.Context, error) {
		called = true
		return ctx, nil
	}

	ctx := context.Background()
	got, stopFn, err := Observe(ctx, "taskboard", "test", "test", hookFn, WithEnabled(false))

	require.NoError(t, err)
	require.NotNil(t, stopFn)
	assert.Equal(t, ctx, got)
	assert.False(t, called)

	stopFn(ctx, time.Millisecond)
}

//nolint:paralleltest // installs global providers
func TestObserve_Enabled(t *testing.T) {
	hookFn := func(ctx context.Context) (context.Context, error) {
		return context.WithValue(ctx, hookKey{}, "hooked"), nil
	}

	ctx, stopFn, err := Observe(context.Background(), "taskboard", "test", "test", hookFn,
		WithEndpoint("127.0.0.1:4317"), WithInsecure())
	require.NoError(t, err)
	require.NotNil(t, stopFn)
	assert.Equal(t, "hooked", ctx.Value(hookKey{}))

	stopFn(ctx, 100*time.Millisecond)
}

//nolint:paralleltest // installs global providers
func TestObserve_HookFailure(t *testing.T) {
	hookFn := func(ctx context.Context) (context.Context, error) {
		return ctx, errors.New("hook broke")
	}

	_, stopFn, err := Observe(context.Background(), "taskboard", "test", "test", hookFn,
		WithEndpoint("127.0.0.1:4317"), WithInsecure(), WithTimeout(100*time.Millisecond))

	require.ErrorContains(t, err, "hook broke")
	assert.Nil(t, stopFn)
}
