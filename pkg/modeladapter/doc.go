// Package modeladapter provides the HTTP plumbing shared by model API clients.
//
// It contains:
//   - [ModelAdapter], an embeddable base struct with auth, custom headers, and
//     request helpers for JSON and multipart bodies
//   - [Response], a tagged result that is either [Parsed] JSON or the [Raw]
//     transport response when the body is not JSON
//   - [TransportError] for failures below the HTTP status line
//
// This package contains no endpoint-specific code. Concrete clients such as
// [github.com/germanamz/aix/pkg/compose] embed ModelAdapter and define their
// own operations on top of it.
package modeladapter
