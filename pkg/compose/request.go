package compose

import (
	"encoding/json"
	"math"
)

// field identifies a generation parameter that was explicitly supplied.
type field uint16

const (
	fieldTokenMinLength field = 1 << iota
	fieldTokenMaxLength
	fieldResponseLength
	fieldTemperature
	fieldTopP
	fieldTopK
	fieldStopSequence
	fieldCustomModelID
)

const (
	commonFields  = fieldTemperature | fieldTopP | fieldStopSequence
	currentFields = commonFields | fieldTokenMinLength | fieldTokenMaxLength | fieldTopK | fieldCustomModelID
	legacyFields  = commonFields | fieldResponseLength
)

// allFields lists every field in a stable order for validation messages.
var allFields = []field{
	fieldTokenMinLength,
	fieldTokenMaxLength,
	fieldResponseLength,
	fieldTemperature,
	fieldTopP,
	fieldTopK,
	fieldStopSequence,
	fieldCustomModelID,
}

func (f field) String() string {
	switch f {
	case fieldTokenMinLength:
		return "token_min_length"
	case fieldTokenMaxLength:
		return "token_max_length"
	case fieldResponseLength:
		return "response_length"
	case fieldTemperature:
		return "temperature"
	case fieldTopP:
		return "top_p"
	case fieldTopK:
		return "top_k"
	case fieldStopSequence:
		return "stop_sequence"
	case fieldCustomModelID:
		return "custom_model_id"
	default:
		return "unknown"
	}
}

// Defaults applied when a parameter is not supplied.
const (
	DefaultTokenMinLength = 64
	DefaultTokenMaxLength = 512
	DefaultResponseLength = 64
	DefaultTemperature    = 0.7
	DefaultTopP           = 1.0
	DefaultTopK           = 50
)

// request is a single compose call's parameters. It is built fresh per call.
type request struct {
	prompt         string
	tokenMinLength int
	tokenMaxLength int
	responseLength int
	temperature    float64
	topP           float64
	topK           int
	stopSequence   string
	customModelID  *string
	set            field
}

func newRequest(prompt string) request {
	return request{
		prompt:         prompt,
		tokenMinLength: DefaultTokenMinLength,
		tokenMaxLength: DefaultTokenMaxLength,
		responseLength: DefaultResponseLength,
		temperature:    DefaultTemperature,
		topP:           DefaultTopP,
		topK:           DefaultTopK,
	}
}

// Option sets one generation parameter on a compose call.
type Option func(*request)

// WithTokenMinLength sets the minimum number of tokens to generate (64–2048).
// Current variant only.
func WithTokenMinLength(n int) Option {
	return func(r *request) {
		r.tokenMinLength = n
		r.set |= fieldTokenMinLength
	}
}

// WithTokenMaxLength sets the maximum number of tokens to generate (64–2048).
// Prompt and completion share a 2048 token budget. Current variant only.
func WithTokenMaxLength(n int) Option {
	return func(r *request) {
		r.tokenMaxLength = n
		r.set |= fieldTokenMaxLength
	}
}

// WithResponseLength sets the number of tokens to generate (64–2048).
// Legacy variant only.
func WithResponseLength(n int) Option {
	return func(r *request) {
		r.responseLength = n
		r.set |= fieldResponseLength
	}
}

// WithTemperature controls randomness (0.0–1.0). Lower values are more
// deterministic.
func WithTemperature(t float64) Option {
	return func(r *request) {
		r.temperature = t
		r.set |= fieldTemperature
	}
}

// WithTopP sets the nucleus sampling threshold (0.0–1.0).
func WithTopP(p float64) Option {
	return func(r *request) {
		r.topP = p
		r.set |= fieldTopP
	}
}

// WithTopK keeps only the k most probable tokens (0–50). Current variant only.
func WithTopK(k int) Option {
	return func(r *request) {
		r.topK = k
		r.set |= fieldTopK
	}
}

// WithStopSequence stops generation at seq. The returned text does not
// contain it.
func WithStopSequence(seq string) Option {
	return func(r *request) {
		r.stopSequence = seq
		r.set |= fieldStopSequence
	}
}

// WithCustomModelID selects a custom or private model. The field is sent only
// when this option is given, even for an empty id. Current variant only.
func WithCustomModelID(id string) Option {
	return func(r *request) {
		r.customModelID = &id
		r.set |= fieldCustomModelID
	}
}

type currentPayload struct {
	Prompt         string  `json:"prompt"`
	TokenMinLength int     `json:"token_min_length"`
	TokenMaxLength int     `json:"token_max_length"`
	Temperature    float64 `json:"temperature"`
	TopP           float64 `json:"top_p"`
	TopK           int     `json:"top_k"`
	StopSequence   string  `json:"stop_sequence"`
	CustomModelID  *string `json:"custom_model_id,omitempty"`
}

type legacyPayload struct {
	Prompt         string  `json:"prompt"`
	ResponseLength int     `json:"response_length"`
	Temperature    float64 `json:"temperature"`
	TopP           float64 `json:"top_p"`
	StopSequence   string  `json:"stop_sequence"`
}

// validate checks the request against the variant. Only types and field
// applicability are checked; numeric ranges are left to the server.
func (r *request) validate(v Variant) error {
	for _, f := range allFields {
		if r.set&f != 0 && !v.supports(f) {
			return &ValidationError{Field: f.String(), Reason: "is not accepted by the " + v.String() + " variant"}
		}
	}

	if !isFinite(r.temperature) {
		return &ValidationError{Field: fieldTemperature.String(), Reason: "must be a finite number"}
	}
	if !isFinite(r.topP) {
		return &ValidationError{Field: fieldTopP.String(), Reason: "must be a finite number"}
	}

	return nil
}

// payload validates the request and encodes the variant's JSON body.
func (r *request) payload(v Variant) ([]byte, error) {
	if err := r.validate(v); err != nil {
		return nil, err
	}

	var body any
	if v == Legacy {
		body = legacyPayload{
			Prompt:         r.prompt,
			ResponseLength: r.responseLength,
			Temperature:    r.temperature,
			TopP:           r.topP,
			StopSequence:   r.stopSequence,
		}
	} else {
		body = currentPayload{
			Prompt:         r.prompt,
			TokenMinLength: r.tokenMinLength,
			TokenMaxLength: r.tokenMaxLength,
			Temperature:    r.temperature,
			TopP:           r.topP,
			TopK:           r.topK,
			StopSequence:   r.stopSequence,
			CustomModelID:  r.customModelID,
		}
	}

	return json.Marshal(body)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
