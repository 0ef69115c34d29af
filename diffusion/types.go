package diffusion

import "fmt"

// Parameter bounds for generation requests. The backend enforces its own
// limits; these catch obviously wrong values before any call.
const (
	MinSteps    = 1
	MaxSteps    = 150
	MinGuidance = 0.0 // exclusive
	MaxGuidance = 30.0

	// Equirectangular output defaults. Width is twice the height for a
	// full 360x180 degree panorama, but the square default matches the
	// base model's native resolution.
	DefaultWidth  = 512
	DefaultHeight = 512
	MinImageSize  = 128
	MaxImageSize  = 2048
)

// GenerateParams are the per-request generation parameters.
type GenerateParams struct {
	Prompt         string
	NegativePrompt string
	Width          int
	Height         int
	Steps          int
	Guidance       float64
}

// DefaultParams returns GenerateParams with the default resolution set and
// the given prompt, steps and guidance.
func DefaultParams(prompt string, steps int, guidance float64) GenerateParams {
	return GenerateParams{
		Prompt:   prompt,
		Width:    DefaultWidth,
		Height:   DefaultHeight,
		Steps:    steps,
		Guidance: guidance,
	}
}

// Validate checks the parameters before any backend call.
func (p GenerateParams) Validate() error {
	if p.Prompt == "" {
		return fmt.Errorf("%w: prompt cannot be empty", ErrInvalidParams)
	}
	if p.Steps < MinSteps || p.Steps > MaxSteps {
		return fmt.Errorf("%w: steps must be between %d and %d, got %d",
			ErrInvalidParams, MinSteps, MaxSteps, p.Steps)
	}
	if p.Guidance <= MinGuidance || p.Guidance > MaxGuidance {
		return fmt.Errorf("%w: guidance scale must be between %g (exclusive) and %g, got %g",
			ErrInvalidParams, MinGuidance, MaxGuidance, p.Guidance)
	}
	if p.Width < MinImageSize || p.Width > MaxImageSize {
		return fmt.Errorf("%w: width must be between %d and %d, got %d",
			ErrInvalidParams, MinImageSize, MaxImageSize, p.Width)
	}
	if p.Height < MinImageSize || p.Height > MaxImageSize {
		return fmt.Errorf("%w: height must be between %d and %d, got %d",
			ErrInvalidParams, MinImageSize, MaxImageSize, p.Height)
	}
	return nil
}

// DeviceInfo describes the compute device the backend runs on.
type DeviceInfo struct {
	Name          string `json:"device"`
	CUDAAvailable bool   `json:"cuda_available"`
}

// AdapterInfo describes a style adapter the backend has loaded.
type AdapterInfo struct {
	Name string `json:"name"`
	Path string `json:"path,omitempty"`
}
