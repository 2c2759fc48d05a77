// Package mcpserver exposes compose as a tool over the Model Context Protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/germanamz/aix/pkg/compose"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolName is the name the compose tool is registered under.
const ToolName = "compose"

const toolDescription = "Generate a completion for a prompt with the AIx compose API. " +
	"Returns the JSON response body."

var inputSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "prompt": {"type": "string", "description": "Text to complete"},
    "token_min_length": {"type": "integer", "description": "Minimum tokens to generate (current variant)"},
    "token_max_length": {"type": "integer", "description": "Maximum tokens to generate (current variant)"},
    "response_length": {"type": "integer", "description": "Tokens to generate (legacy variant)"},
    "temperature": {"type": "number", "description": "Sampling temperature, 0.0 to 1.0"},
    "top_p": {"type": "number", "description": "Nucleus sampling mass, 0.0 to 1.0"},
    "top_k": {"type": "integer", "description": "Top-k sampling, 0 to 50 (current variant)"},
    "stop_sequence": {"type": "string", "description": "Stop generating at this text"},
    "custom_model_id": {"type": ["string", "null"], "description": "Custom model to use (current variant)"}
  },
  "required": ["prompt"]
}`)

// MCPServer serves the compose tool using the official MCP Go SDK.
type MCPServer struct {
	server   *mcp.Server
	composer compose.Composer
}

// New creates an MCPServer with the given name and version whose compose tool
// calls c.
func New(name, version string, c compose.Composer) *MCPServer {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: version,
	}, nil)

	s := &MCPServer{server: server, composer: c}
	server.AddTool(&mcp.Tool{
		Name:        ToolName,
		Description: toolDescription,
		InputSchema: inputSchema,
	}, s.handleCompose)

	return s
}

// Serve starts serving MCP requests. It reads requests from in and writes
// responses to out. It blocks until ctx is cancelled or the transport closes.
func (s *MCPServer) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	transport := &mcp.IOTransport{
		Reader: io.NopCloser(in),
		Writer: nopWriteCloser{out},
	}

	return s.run(ctx, transport)
}

// run starts the server on transport. Tests call it with in-memory transports.
func (s *MCPServer) run(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

func (s *MCPServer) handleCompose(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.Params.Arguments
	if args == nil {
		args = json.RawMessage("{}")
	}

	params, err := compose.DecodeParams(args)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	if !params.HasPrompt {
		return errorResult("prompt is required"), nil
	}

	resp, err := s.composer.Compose(ctx, params.Prompt, params.Options...)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	if resp == nil {
		return errorResult("compose returned no response"), nil
	}

	if !resp.Parsed() {
		return errorResult(fmt.Sprintf("status %d: %s", resp.StatusCode, resp.Body)), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(resp.Body)}},
	}, nil
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// nopWriteCloser wraps an io.Writer as an io.WriteCloser with a no-op Close.
type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
