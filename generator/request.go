package generator

import "pano_backend/diffusion"

// Enrichment modes offered by the UI. The mode shades the working prompt
// before enrichment; Standard leaves it untouched.
const (
	ModeStandard  = "Standard"
	ModeDetailed  = "Detailed"
	ModeCinematic = "Cinematic"
)

// Request is one panorama generation request.
type Request struct {
	// Prompt is the user's environment description. Required.
	Prompt string

	// Mode selects the enrichment flavor. Empty means ModeStandard.
	Mode string

	// CustomData is optional extra context appended to the prompt.
	CustomData string

	// Steps overrides the configured inference steps when > 0.
	Steps int

	// Guidance overrides the configured guidance scale when > 0.
	Guidance float64
}

// Result is the uniform outcome of a generation request: an image when
// generation succeeded, and a human-readable status message either way.
type Result struct {
	Image   *diffusion.Image
	Message string
}

// Succeeded reports whether an image was produced.
func (r Result) Succeeded() bool {
	return r.Image != nil
}
