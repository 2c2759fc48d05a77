package compose_test

import (
	"testing"

	"github.com/germanamz/aix/pkg/compose"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// payloadFor builds the request body for params on a client of variant v.
func payloadFor(t *testing.T, v compose.Variant, p compose.Params) string {
	t.Helper()

	c, err := compose.New("key", compose.WithVariant(v))
	require.NoError(t, err)

	body, err := c.Payload(p.Prompt, p.Options...)
	require.NoError(t, err)

	return string(body)
}

func TestDecodeParams_JSON(t *testing.T) {
	in := `{"prompt": "Hello!", "token_min_length": 80, "token_max_length": 256, "temperature": 0.5, ` +
		`"top_p": 0.9, "top_k": 40, "stop_sequence": "END", "custom_model_id": "abc"}`

	p, err := compose.DecodeParams([]byte(in))
	require.NoError(t, err)
	assert.True(t, p.HasPrompt)
	assert.Equal(t, "Hello!", p.Prompt)
	assert.Len(t, p.Options, 7)

	assert.JSONEq(t, in, payloadFor(t, compose.Current, p))
}

func TestDecodeParams_YAML(t *testing.T) {
	p, err := compose.DecodeParams([]byte("prompt: Tell me a story\nresponse_length: 128\ntemperature: 1\n"))
	require.NoError(t, err)
	assert.Equal(t, "Tell me a story", p.Prompt)

	assert.JSONEq(t,
		`{"prompt":"Tell me a story","response_length":128,"temperature":1,"top_p":1,"stop_sequence":""}`,
		payloadFor(t, compose.Legacy, p))
}

func TestDecodeParams_Empty(t *testing.T) {
	for _, in := range []string{"", "null", "~"} {
		p, err := compose.DecodeParams([]byte(in))
		require.NoError(t, err, in)
		assert.False(t, p.HasPrompt, in)
		assert.Empty(t, p.Options, in)
	}
}

func TestDecodeParams_NullCustomModelIDIsAbsent(t *testing.T) {
	p, err := compose.DecodeParams([]byte(`{"prompt": "x", "custom_model_id": null}`))
	require.NoError(t, err)
	assert.Empty(t, p.Options)
	assert.NotContains(t, payloadFor(t, compose.Current, p), "custom_model_id")
}

func TestDecodeParams_TypeMismatch(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		field string
		want  string
	}{
		{"prompt number", `{"prompt": 42}`, "prompt", "must be a string, got integer"},
		{"prompt list", `{"prompt": ["a"]}`, "prompt", "must be a string, got sequence"},
		{"prompt null", `{"prompt": null}`, "prompt", "must be a string, got null"},
		{"int as float", `{"token_max_length": 512.0}`, "token_max_length", "must be an integer, got float"},
		{"int as string", `{"top_k": "50"}`, "top_k", "must be an integer, got string"},
		{"float as string", `{"temperature": "0.7"}`, "temperature", "must be a number, got string"},
		{"float as bool", `{"top_p": true}`, "top_p", "must be a number, got boolean"},
		{"string as int", `{"stop_sequence": 3}`, "stop_sequence", "must be a string, got integer"},
		{"model id as int", `{"custom_model_id": 7}`, "custom_model_id", "must be a string, got integer"},
		{"response length as mapping", `{"response_length": {}}`, "response_length", "must be an integer, got mapping"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compose.DecodeParams([]byte(tt.in))

			var ve *compose.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, tt.want, ve.Reason)
		})
	}
}

func TestDecodeParams_UnknownParameter(t *testing.T) {
	_, err := compose.DecodeParams([]byte(`{"prompt": "x", "max_tokens": 10}`))

	var ve *compose.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "max_tokens", ve.Field)
	assert.EqualError(t, err, "compose: invalid parameter max_tokens: is not a known parameter")
}

func TestDecodeParams_NotAMapping(t *testing.T) {
	_, err := compose.DecodeParams([]byte(`["prompt", "x"]`))

	var ve *compose.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "params", ve.Field)
	assert.Contains(t, ve.Reason, "must be a mapping")
}

func TestDecodeParams_Malformed(t *testing.T) {
	_, err := compose.DecodeParams([]byte(`{"prompt": `))

	var ve *compose.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "params", ve.Field)
}

func TestDecodeParams_IntegerOverflow(t *testing.T) {
	_, err := compose.DecodeParams([]byte(`{"top_k": 99999999999999999999999}`))

	var ve *compose.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "top_k", ve.Field)
}

func TestDecodeParams_JSONEscapes(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		prompt string
		stop   string
	}{
		{"escaped slash", `{"prompt": "see https:\/\/example.com"}`, "see https://example.com", ""},
		{"surrogate pair", `{"prompt": "smile \ud83d\ude00"}`, "smile \U0001F600", ""},
		{"escaped slash in stop sequence", `{"prompt": "x", "stop_sequence": "a\/b"}`, "x", "a/b"},
		{"unicode escape", `{"prompt": "caf\u00e9"}`, "café", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := compose.DecodeParams([]byte(tt.in))
			require.NoError(t, err)
			assert.True(t, p.HasPrompt)
			assert.Equal(t, tt.prompt, p.Prompt)

			body := payloadFor(t, compose.Current, p)
			assert.Contains(t, body, `"stop_sequence":"`+tt.stop+`"`)
		})
	}
}

func TestDecodeParams_JSONNumbers(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"exponent float", `{"temperature": 5e-1}`, `"temperature":0.5`},
		{"integer for float", `{"top_p": 1}`, `"top_p":1`},
		{"negative integer", `{"top_k": -3}`, `"top_k":-3`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := compose.DecodeParams([]byte(`{"prompt": "x", ` + tt.in[1:]))
			require.NoError(t, err)
			assert.Contains(t, payloadFor(t, compose.Current, p), tt.want)
		})
	}
}

func TestDecodeParams_JSONExponentIsNotAnInteger(t *testing.T) {
	_, err := compose.DecodeParams([]byte(`{"top_k": 5e1}`))

	var ve *compose.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "must be an integer, got float", ve.Reason)
}
