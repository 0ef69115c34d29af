package enrich

import (
	"fmt"
	"math"

	"pano_backend/core"
)

// Params are the generation parameters sent with every enrichment request.
type Params struct {
	Model          string
	MaxTokens      int
	MinTokens      int
	Temperature    float64
	DecodingMethod string
}

// ParamsFromConfig builds Params from the validated enrichment config.
func ParamsFromConfig(cfg core.EnrichConfig) Params {
	return Params{
		Model:          cfg.Model,
		MaxTokens:      cfg.MaxTokens,
		MinTokens:      cfg.MinTokens,
		Temperature:    cfg.Temperature,
		DecodingMethod: cfg.DecodingMethod,
	}
}

// Validate checks the parameters before any backend call. Validation order:
// temperature range, token bounds, token positivity, decoding method.
func (p Params) Validate() error {
	if p.Temperature < 0.0 || p.Temperature > 1.0 {
		return fmt.Errorf("%w: temperature must be between 0.0 and 1.0, got %g",
			ErrInvalidParams, p.Temperature)
	}
	if p.MinTokens > p.MaxTokens {
		return fmt.Errorf("%w: min tokens (%d) cannot exceed max tokens (%d)",
			ErrInvalidParams, p.MinTokens, p.MaxTokens)
	}
	if p.MaxTokens <= 0 {
		return fmt.Errorf("%w: max tokens must be positive, got %d",
			ErrInvalidParams, p.MaxTokens)
	}
	switch p.DecodingMethod {
	case core.DecodingSample, core.DecodingGreedy:
	default:
		return fmt.Errorf("%w: unknown decoding method %q",
			ErrInvalidParams, p.DecodingMethod)
	}
	return nil
}

// WireTemperature maps the decoding method onto the completion API, which
// has no decoding parameter: greedy decoding is zero temperature, sampling
// uses the configured temperature. The request encoding omits a zero
// temperature entirely and the backend would substitute its own default,
// so zero is sent as the smallest positive float32 instead.
func (p Params) WireTemperature() float32 {
	temp := float32(p.Temperature)
	if p.DecodingMethod == core.DecodingGreedy {
		temp = 0
	}
	if temp == 0 {
		return math.SmallestNonzeroFloat32
	}
	return temp
}
