package compose_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/germanamz/aix/pkg/compose"
	"github.com/germanamz/aix/pkg/modeladapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- test helpers ---

func stubComposer(resp *modeladapter.Response, err error) compose.Composer {
	return compose.ComposerFunc(func(_ context.Context, _ string, _ ...compose.Option) (*modeladapter.Response, error) {
		return resp, err
	})
}

func panicComposer() compose.Composer {
	return compose.ComposerFunc(func(_ context.Context, _ string, _ ...compose.Option) (*modeladapter.Response, error) {
		panic("something went wrong")
	})
}

func slowComposer(delay time.Duration) compose.Composer {
	return compose.ComposerFunc(func(ctx context.Context, _ string, _ ...compose.Option) (*modeladapter.Response, error) {
		select {
		case <-time.After(delay):
			return parsed(map[string]any{"text": "done"}), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
}

func parsed(v any) *modeladapter.Response {
	return &modeladapter.Response{Kind: modeladapter.Parsed, StatusCode: http.StatusOK, Data: v}
}

// --- Wrap tests ---

func TestWrap_Order(t *testing.T) {
	var order []string

	mark := func(name string) compose.Middleware {
		return func(next compose.Composer) compose.Composer {
			return compose.ComposerFunc(func(ctx context.Context, prompt string, opts ...compose.Option) (*modeladapter.Response, error) {
				order = append(order, name)
				return next.Compose(ctx, prompt, opts...)
			})
		}
	}

	c := compose.Wrap(stubComposer(parsed(nil), nil), mark("outer"), mark("inner"))
	_, err := c.Compose(context.Background(), "x")

	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestWrap_PassesOptions(t *testing.T) {
	var got int

	inner := compose.ComposerFunc(func(_ context.Context, _ string, opts ...compose.Option) (*modeladapter.Response, error) {
		got = len(opts)
		return parsed(nil), nil
	})

	c := compose.Wrap(inner, compose.Recovery(), compose.Timeout(time.Second))
	_, err := c.Compose(context.Background(), "x", compose.WithTopK(1), compose.WithTopP(0.5))

	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

// --- Timeout tests ---

func TestTimeout(t *testing.T) {
	wrapped := compose.Timeout(time.Second)(stubComposer(parsed(map[string]any{"text": "done"}), nil))
	resp, err := wrapped.Compose(context.Background(), "x")

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"text": "done"}, resp.Data)
}

func TestTimeoutExpires(t *testing.T) {
	wrapped := compose.Timeout(50 * time.Millisecond)(slowComposer(200 * time.Millisecond))
	_, err := wrapped.Compose(context.Background(), "x")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// --- Recovery tests ---

func TestRecovery(t *testing.T) {
	wrapped := compose.Recovery()(stubComposer(parsed(nil), nil))
	resp, err := wrapped.Compose(context.Background(), "x")

	require.NoError(t, err)
	assert.NotNil(t, resp)
}

func TestRecoveryCatchesPanic(t *testing.T) {
	wrapped := compose.Recovery()(panicComposer())
	resp, err := wrapped.Compose(context.Background(), "x")

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "compose panicked")
	assert.Contains(t, err.Error(), "something went wrong")
}

// --- Logger tests ---

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLogger_Success(t *testing.T) {
	var buf bytes.Buffer

	wrapped := compose.Logger(newTestLogger(&buf))(stubComposer(parsed(nil), nil))
	_, err := wrapped.Compose(context.Background(), "Hello!")

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "compose started")
	assert.Contains(t, out, "prompt_tokens=2")
	assert.Contains(t, out, "compose finished")
	assert.Contains(t, out, "status=200")
}

func TestLogger_Raw(t *testing.T) {
	var buf bytes.Buffer

	raw := &modeladapter.Response{
		Kind:       modeladapter.Raw,
		StatusCode: http.StatusBadGateway,
		DecodeErr:  errors.New("invalid character '<'"),
	}

	wrapped := compose.Logger(newTestLogger(&buf))(stubComposer(raw, nil))
	resp, err := wrapped.Compose(context.Background(), "x")

	require.NoError(t, err)
	assert.Same(t, raw, resp)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "compose returned a non-JSON response")
	assert.Contains(t, buf.String(), "status=502")
}

func TestLogger_Error(t *testing.T) {
	var buf bytes.Buffer

	wrapped := compose.Logger(newTestLogger(&buf))(stubComposer(nil, errors.New("connection refused")))
	_, err := wrapped.Compose(context.Background(), "x")

	require.Error(t, err)
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "compose finished with error")
	assert.Contains(t, buf.String(), "connection refused")
}

func TestLogger_WrapsClient(t *testing.T) {
	var buf bytes.Buffer

	c, calls := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"text": "hi"})
	})

	wrapped := compose.Wrap(c, compose.Logger(newTestLogger(&buf)))
	resp, err := wrapped.Compose(context.Background(), "Hello!")

	require.NoError(t, err)
	assert.True(t, resp.Parsed())
	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, buf.String(), "compose finished")
}

func TestLogger_NilResponse(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	wrapped := compose.Logger(logger)(stubComposer(nil, nil))

	var (
		resp *modeladapter.Response
		err  error
	)
	require.NotPanics(t, func() { resp, err = wrapped.Compose(context.Background(), "x") })
	require.NoError(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, buf.String(), "compose returned no response")
}
