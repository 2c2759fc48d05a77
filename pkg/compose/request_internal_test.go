package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVariantSupports(t *testing.T) {
	for _, f := range allFields {
		switch f {
		case fieldTemperature, fieldTopP, fieldStopSequence:
			assert.True(t, Current.supports(f), f.String())
			assert.True(t, Legacy.supports(f), f.String())
		case fieldResponseLength:
			assert.False(t, Current.supports(f), f.String())
			assert.True(t, Legacy.supports(f), f.String())
		default:
			assert.True(t, Current.supports(f), f.String())
			assert.False(t, Legacy.supports(f), f.String())
		}
	}
}

func TestNewRequest_Defaults(t *testing.T) {
	r := newRequest("p")

	assert.Equal(t, "p", r.prompt)
	assert.Equal(t, 64, r.tokenMinLength)
	assert.Equal(t, 512, r.tokenMaxLength)
	assert.Equal(t, 64, r.responseLength)
	assert.InDelta(t, 0.7, r.temperature, 1e-9)
	assert.InDelta(t, 1.0, r.topP, 1e-9)
	assert.Equal(t, 50, r.topK)
	assert.Empty(t, r.stopSequence)
	assert.Nil(t, r.customModelID)
	assert.Zero(t, r.set)
}

func TestOptionsMarkFields(t *testing.T) {
	r := newRequest("p")
	WithTopK(3)(&r)
	WithCustomModelID("m")(&r)

	assert.Equal(t, fieldTopK|fieldCustomModelID, r.set)
	assert.Equal(t, 3, r.topK)
	assert.Equal(t, "m", *r.customModelID)
}

func TestFieldString(t *testing.T) {
	assert.Equal(t, "top_k", fieldTopK.String())
	assert.Equal(t, "unknown", field(0).String())
}
