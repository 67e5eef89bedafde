package browser

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChartSessionDefaults(t *testing.T) {
	s := NewChartSession(SessionOptions{URL: "http://127.0.0.1:5000/"}, nil)

	require.NotNil(t, s.opts.Viewport)
	assert.Equal(t, DefaultViewportWidth, s.opts.Viewport.Width)
	assert.Equal(t, DefaultViewportHeight, s.opts.Viewport.Height)
	assert.Equal(t, DefaultTimeout, s.opts.Timeout)
	assert.Equal(t, os.TempDir(), s.opts.ScreenshotDir)
	assert.NotNil(t, s.logger)
}

func TestNewChartSessionKeepsOptions(t *testing.T) {
	s := NewChartSession(SessionOptions{
		Viewport:      &Viewport{Width: 800, Height: 600},
		Timeout:       5000,
		ScreenshotDir: "/tmp/shots",
		Headless:      true,
	}, nil)

	assert.Equal(t, 800, s.opts.Viewport.Width)
	assert.Equal(t, 5000.0, s.opts.Timeout)
	assert.Equal(t, "/tmp/shots", s.opts.ScreenshotDir)
	assert.True(t, s.opts.Headless)
}

func TestOperationsBeforeStart(t *testing.T) {
	s := NewChartSession(SessionOptions{}, nil)
	ctx := context.Background()

	err := s.Refresh(ctx)
	assert.True(t, errors.Is(err, ErrNotStarted))

	_, err = s.Screenshot(ctx)
	assert.True(t, errors.Is(err, ErrNotStarted))

	assert.NoError(t, s.Quit(), "quit before start is a no-op")
	assert.NoError(t, s.Quit(), "quit is idempotent")
}

func TestCanceledContext(t *testing.T) {
	s := NewChartSession(SessionOptions{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Start(ctx), context.Canceled)
	assert.ErrorIs(t, s.Refresh(ctx), context.Canceled)
}
