package diffusion

import "errors"

// Sentinel errors for the diffusion pipeline.
var (
	// ErrInvalidParams is returned when generation parameters fail
	// validation before any backend call.
	ErrInvalidParams = errors.New("diffusion: invalid generation parameters")

	// ErrNoImages is returned when the backend reports success but the
	// response carries zero images.
	ErrNoImages = errors.New("diffusion: backend returned no images")

	// ErrGenerationFailed is returned when the backend call fails or the
	// returned image data cannot be decoded.
	ErrGenerationFailed = errors.New("diffusion: image generation failed")

	// ErrPipelineInit is returned when the pipeline cannot be built,
	// typically because the backend is unreachable.
	ErrPipelineInit = errors.New("diffusion: pipeline initialization failed")
)
