// Package compose is a client for the AIx compose endpoint: submit a prompt
// with generation parameters and receive the model's continuation.
//
// A [Client] holds only an API key and fixed configuration, so it is safe for
// concurrent use. Each [Client.Compose] call performs exactly one HTTP POST,
// with no retries and no caching, and returns a
// [github.com/germanamz/aix/pkg/modeladapter.Response] that is either parsed
// JSON or the raw response when the body is not JSON.
//
// Two request shapes are supported through [Variant]: [Current] and the
// older [Legacy] shape, which sends response_length instead of the token
// length fields and has no top_k or custom_model_id.
//
// Behaviour can be layered around any [Composer] with [Middleware]:
// [Logger], [Timeout], and [Recovery] are provided.
package compose
