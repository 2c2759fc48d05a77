package compose

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Params holds compose parameters decoded from untyped input.
type Params struct {
	Prompt    string
	HasPrompt bool
	Options   []Option
}

// DecodeParams decodes a YAML or JSON mapping of parameter names to values.
// Values must have the parameter's type: integers for lengths and top_k,
// numbers for temperature and top_p, strings for prompt and stop_sequence,
// and a string or null for custom_model_id. Any mismatch or unknown name is
// a *ValidationError. Empty input yields empty Params.
//
// Valid JSON is decoded as JSON, so escapes YAML does not understand (\/,
// surrogate pairs) are accepted. Anything else is parsed as YAML.
func DecodeParams(data []byte) (Params, error) {
	if json.Valid(data) {
		return decodeJSONParams(data)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Params{}, &ValidationError{Field: "params", Reason: err.Error()}
	}

	return DecodeParamsNode(&doc)
}

func decodeJSONParams(data []byte) (Params, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return Params{}, &ValidationError{Field: "params", Reason: err.Error()}
	}

	return DecodeParamsNode(jsonNode(v))
}

// jsonNode converts a decoded JSON value into a YAML node tagged with its
// JSON type, so both input forms share the same type checks. Numbers with a
// fraction or exponent are floats; the rest are integers. Object keys are
// sorted.
func jsonNode(v any) *yaml.Node {
	switch v := v.(type) {
	case nil:
		return scalarNode("!!null", "null")
	case bool:
		return scalarNode("!!bool", strconv.FormatBool(v))
	case string:
		return scalarNode("!!str", v)
	case json.Number:
		if strings.ContainsAny(v.String(), ".eE") {
			return scalarNode("!!float", v.String())
		}
		return scalarNode("!!int", v.String())
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range v {
			n.Content = append(n.Content, jsonNode(e))
		}
		return n
	case map[string]any:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			n.Content = append(n.Content, scalarNode("!!str", k), jsonNode(v[k]))
		}
		return n
	default:
		return scalarNode("!!str", fmt.Sprint(v))
	}
}

func scalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

// DecodeParamsNode is DecodeParams for an already parsed YAML node.
func DecodeParamsNode(n *yaml.Node) (Params, error) {
	if n.Kind == 0 {
		return Params{}, nil
	}

	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return Params{}, nil
		}
		n = n.Content[0]
	}

	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null" {
		return Params{}, nil
	}

	if n.Kind != yaml.MappingNode {
		return Params{}, &ValidationError{Field: "params", Reason: "must be a mapping, got " + describe(n)}
	}

	var p Params
	for i := 0; i+1 < len(n.Content); i += 2 {
		name, val := n.Content[i].Value, n.Content[i+1]

		if name == "prompt" {
			s, err := decodeString(name, val)
			if err != nil {
				return Params{}, err
			}
			p.Prompt, p.HasPrompt = s, true

			continue
		}

		decode, ok := paramDecoders[name]
		if !ok {
			return Params{}, &ValidationError{Field: name, Reason: "is not a known parameter"}
		}

		opt, err := decode(name, val)
		if err != nil {
			return Params{}, err
		}
		if opt != nil {
			p.Options = append(p.Options, opt)
		}
	}

	return p, nil
}

type paramDecoder func(name string, n *yaml.Node) (Option, error)

var paramDecoders = map[string]paramDecoder{
	"token_min_length": intParam(WithTokenMinLength),
	"token_max_length": intParam(WithTokenMaxLength),
	"response_length":  intParam(WithResponseLength),
	"top_k":            intParam(WithTopK),
	"temperature":      floatParam(WithTemperature),
	"top_p":            floatParam(WithTopP),
	"stop_sequence":    stringParam(WithStopSequence),
	"custom_model_id": func(name string, n *yaml.Node) (Option, error) {
		// null means absent.
		if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null" {
			return nil, nil
		}
		return stringParam(WithCustomModelID)(name, n)
	},
}

func intParam(with func(int) Option) paramDecoder {
	return func(name string, n *yaml.Node) (Option, error) {
		if n.Kind != yaml.ScalarNode || n.ShortTag() != "!!int" {
			return nil, typeMismatch(name, "an integer", n)
		}

		var v int
		if err := n.Decode(&v); err != nil {
			return nil, &ValidationError{Field: name, Reason: err.Error()}
		}

		return with(v), nil
	}
}

// floatParam accepts integers as well as floats.
func floatParam(with func(float64) Option) paramDecoder {
	return func(name string, n *yaml.Node) (Option, error) {
		if n.Kind != yaml.ScalarNode || (n.ShortTag() != "!!float" && n.ShortTag() != "!!int") {
			return nil, typeMismatch(name, "a number", n)
		}

		var v float64
		if err := n.Decode(&v); err != nil {
			return nil, &ValidationError{Field: name, Reason: err.Error()}
		}

		return with(v), nil
	}
}

func stringParam(with func(string) Option) paramDecoder {
	return func(name string, n *yaml.Node) (Option, error) {
		s, err := decodeString(name, n)
		if err != nil {
			return nil, err
		}

		return with(s), nil
	}
}

func decodeString(name string, n *yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode || n.ShortTag() != "!!str" {
		return "", typeMismatch(name, "a string", n)
	}

	return n.Value, nil
}

func typeMismatch(name, want string, n *yaml.Node) error {
	return &ValidationError{Field: name, Reason: fmt.Sprintf("must be %s, got %s", want, describe(n))}
}

// describe names the type of a YAML node for error messages.
func describe(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.AliasNode:
		return "alias"
	}

	switch n.ShortTag() {
	case "!!str":
		return "string"
	case "!!int":
		return "integer"
	case "!!float":
		return "float"
	case "!!bool":
		return "boolean"
	case "!!null":
		return "null"
	default:
		return n.ShortTag()
	}
}
