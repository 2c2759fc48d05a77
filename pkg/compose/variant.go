package compose

import "fmt"

// Variant selects the request shape sent to the compose endpoint.
type Variant int

const (
	// Current sends token_min_length, token_max_length, top_k, and an
	// optional custom_model_id.
	Current Variant = iota
	// Legacy sends response_length and none of the Current-only fields.
	Legacy
)

func (v Variant) String() string {
	switch v {
	case Current:
		return "current"
	case Legacy:
		return "legacy"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

func (v Variant) valid() bool { return v == Current || v == Legacy }

// ParseVariant parses "current" or "legacy". The empty string is Current.
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "", "current":
		return Current, nil
	case "legacy":
		return Legacy, nil
	default:
		return 0, fmt.Errorf("unknown variant %q (want current or legacy)", s)
	}
}

// supports reports whether the variant's request shape carries f.
func (v Variant) supports(f field) bool {
	switch v {
	case Legacy:
		return f&legacyFields != 0
	default:
		return f&currentFields != 0
	}
}
