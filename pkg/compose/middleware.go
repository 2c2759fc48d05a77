package compose

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/germanamz/aix/pkg/modeladapter"
)

// Composer sends a prompt and returns the model's response. *Client is the
// concrete implementation; middleware wraps it.
type Composer interface {
	Compose(ctx context.Context, prompt string, opts ...Option) (*modeladapter.Response, error)
}

// ComposerFunc adapts a plain function to the Composer interface.
type ComposerFunc func(ctx context.Context, prompt string, opts ...Option) (*modeladapter.Response, error)

// Compose calls the underlying function.
func (f ComposerFunc) Compose(ctx context.Context, prompt string, opts ...Option) (*modeladapter.Response, error) {
	return f(ctx, prompt, opts...)
}

// Middleware wraps a Composer, returning a new Composer with added behaviour.
type Middleware func(next Composer) Composer

// Wrap applies mws to c. The first middleware is the outermost.
func Wrap(c Composer, mws ...Middleware) Composer {
	for i := len(mws) - 1; i >= 0; i-- {
		c = mws[i](c)
	}

	return c
}

// --- Timeout middleware ---

// Timeout returns a Middleware that wraps each call's context with a deadline.
func Timeout(d time.Duration) Middleware {
	return func(next Composer) Composer {
		return ComposerFunc(func(ctx context.Context, prompt string, opts ...Option) (*modeladapter.Response, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			return next.Compose(ctx, prompt, opts...)
		})
	}
}

// --- Recovery middleware ---

// Recovery returns a Middleware that catches panics and converts them to errors.
func Recovery() Middleware {
	return func(next Composer) Composer {
		return ComposerFunc(func(ctx context.Context, prompt string, opts ...Option) (resp *modeladapter.Response, err error) {
			defer func() {
				if r := recover(); r != nil {
					resp = nil
					err = fmt.Errorf("compose panicked: %v", r)
				}
			}()

			return next.Compose(ctx, prompt, opts...)
		})
	}
}

// --- Logger middleware ---

// Logger returns a Middleware that logs each call's start, duration, status,
// and error. A response whose body is not JSON is logged at warn level, since
// Compose does not report it as an error.
func Logger(log *slog.Logger) Middleware {
	return func(next Composer) Composer {
		return ComposerFunc(func(ctx context.Context, prompt string, opts ...Option) (*modeladapter.Response, error) {
			log.DebugContext(ctx, "compose started",
				"prompt_tokens", modeladapter.EstimateTokens(prompt),
			)

			start := time.Now()

			resp, err := next.Compose(ctx, prompt, opts...)

			duration := time.Since(start)

			switch {
			case err != nil:
				log.ErrorContext(ctx, "compose finished with error",
					"duration", duration,
					"error", err,
				)
			case resp == nil:
				log.WarnContext(ctx, "compose returned no response",
					"duration", duration,
				)
			case resp.Kind == modeladapter.Raw:
				log.WarnContext(ctx, "compose returned a non-JSON response",
					"duration", duration,
					"status", resp.StatusCode,
					"decode_error", resp.DecodeErr,
				)
			default:
				log.InfoContext(ctx, "compose finished",
					"duration", duration,
					"status", resp.StatusCode,
				)
			}

			return resp, err
		})
	}
}
