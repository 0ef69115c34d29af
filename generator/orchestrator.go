package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pano_backend/core"
	"pano_backend/diffusion"
	"pano_backend/enrich"
	"pano_backend/logging"
)

// ConfigSource resolves the application configuration. Satisfied by
// *core.Resolver.
type ConfigSource interface {
	Resolve() (*core.Config, error)
}

// Enricher turns a short prompt into a detailed scene description.
// Satisfied by *enrich.Client.
type Enricher interface {
	Enrich(ctx context.Context, prompt string) (string, error)
}

// ImageGenerator renders one image. Satisfied by *diffusion.Pipeline.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string, steps int, guidance float64) (*diffusion.Image, error)
}

// PipelineSource provides the lazily-built generation pipeline.
type PipelineSource interface {
	Get(ctx context.Context) (ImageGenerator, error)
}

// HistoryEntry is the record the orchestrator hands to the history store.
type HistoryEntry struct {
	ID             string
	Prompt         string
	EnrichedPrompt string
	Steps          int
	Guidance       float64
	Status         string
	Enriched       bool
	CreatedAt      time.Time
}

// HistoryRecorder stores generation history. Recording is best effort; a
// failing recorder never fails the request.
type HistoryRecorder interface {
	Record(ctx context.Context, entry HistoryEntry) error
}

// managerSource adapts *diffusion.Manager to PipelineSource.
type managerSource struct {
	manager *diffusion.Manager
}

func (s managerSource) Get(ctx context.Context) (ImageGenerator, error) {
	pipe, err := s.manager.Get(ctx)
	if err != nil {
		return nil, err
	}
	return pipe, nil
}

// NewPipelineSource wraps a diffusion.Manager as a PipelineSource.
func NewPipelineSource(manager *diffusion.Manager) PipelineSource {
	return managerSource{manager: manager}
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithHistory attaches a history recorder.
func WithHistory(history HistoryRecorder) Option {
	return func(o *Orchestrator) { o.history = history }
}

// WithTriggerWord overrides the configured style trigger word, typically
// with one resolved from the adapter registry.
func WithTriggerWord(word string) Option {
	return func(o *Orchestrator) { o.triggerOverride = word }
}

// Orchestrator runs the prompt-to-panorama request chain: validate, resolve
// configuration, enrich the prompt, decorate it with the style trigger, and
// generate the image. Every outcome is a Result; errors surface as status
// messages, never panics.
type Orchestrator struct {
	resolver        ConfigSource
	enricher        Enricher
	pipelines       PipelineSource
	history         HistoryRecorder
	triggerOverride string
	logger          *logging.Logger
}

// NewOrchestrator wires an Orchestrator.
func NewOrchestrator(resolver ConfigSource, enricher Enricher, pipelines PipelineSource, logger *logging.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		resolver:  resolver,
		enricher:  enricher,
		pipelines: pipelines,
		logger:    logger.Named("generator"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// HandleRequest runs one generation request end to end.
//
// Failure handling, in order: a blank prompt or configuration error stops
// before any backend work; an enrichment backend failure falls back to the
// original prompt with a warning carried into the final status; a
// generation failure is terminal for the request. Anything unexpected is
// recovered and reported as a generic error status.
func (o *Orchestrator) HandleRequest(ctx context.Context, req Request) (result Result) {
	correlationID := uuid.NewString()
	log := o.logger.With(zap.String("correlation_id", correlationID))

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic during generation", zap.Any("panic", r))
			result = Result{Message: fmt.Sprintf("Unexpected error: %v", r)}
		}
	}()

	if strings.TrimSpace(req.Prompt) == "" {
		return Result{Message: "Error: prompt cannot be empty"}
	}

	cfg, err := o.resolver.Resolve()
	if err != nil {
		log.Error("configuration resolution failed", zap.Error(err))
		return Result{Message: fmt.Sprintf("Configuration error: %v\n\nPlease check your .env file.", err)}
	}

	steps := req.Steps
	if steps <= 0 {
		steps = cfg.ImageGen.InferenceSteps
	}
	guidance := req.Guidance
	if guidance <= 0 {
		guidance = cfg.ImageGen.GuidanceScale
	}

	userPrompt := composeUserPrompt(req)
	log.Info("generation request received",
		zap.String("prompt", truncateText(userPrompt, 120)),
		zap.Int("steps", steps),
		zap.Float64("guidance", guidance))

	working := userPrompt
	enriched := false
	var warning string

	text, err := o.enricher.Enrich(ctx, userPrompt)
	if err != nil {
		var backendErr *enrich.BackendError
		if errors.As(err, &backendErr) {
			log.Warn("prompt enrichment failed, using original prompt",
				zap.Bool("call_made", backendErr.CallMade),
				zap.Error(err))
			warning = fmt.Sprintf("Warning: could not enrich prompt, using original. Proceeding with image generation...\n(%v)", err)
		} else {
			log.Error("unexpected enrichment failure", zap.Error(err))
			return Result{Message: fmt.Sprintf("Unexpected error: %v", err)}
		}
	} else {
		working = text
		enriched = true
	}

	if trigger := o.triggerWord(cfg); trigger != "" && cfg.ImageGen.UseLoRA {
		working = trigger + " " + working
	}

	pipe, err := o.pipelines.Get(ctx)
	if err != nil {
		log.Error("pipeline unavailable", zap.Error(err))
		o.record(ctx, req, working, steps, guidance, enriched, false)
		return Result{Message: fmt.Sprintf("Image generation error: %v", err)}
	}

	img, err := pipe.Generate(ctx, working, steps, guidance)
	if err != nil {
		log.Error("image generation failed", zap.Error(err))
		o.record(ctx, req, working, steps, guidance, enriched, false)
		if configErr, ok := core.IsConfigError(err); ok {
			return Result{Message: fmt.Sprintf("Configuration error: %v", configErr)}
		}
		return Result{Message: fmt.Sprintf("Image generation error: %v", err)}
	}

	log.Info("generation complete",
		zap.String("resolution", img.Resolution()),
		zap.Bool("enriched", enriched))
	o.record(ctx, req, working, steps, guidance, enriched, true)

	message := fmt.Sprintf("Success! Generated 360° panorama\nResolution: %s\nInference Steps: %d\nGuidance Scale: %g",
		img.Resolution(), steps, guidance)
	if warning != "" {
		message = warning + "\n\n" + message
	}
	return Result{Image: img, Message: message}
}

// triggerWord returns the style trigger to prepend, preferring the
// registry-resolved override.
func (o *Orchestrator) triggerWord(cfg *core.Config) string {
	if o.triggerOverride != "" {
		return o.triggerOverride
	}
	return cfg.ImageGen.TriggerWord
}

// record stores the request outcome, best effort.
func (o *Orchestrator) record(ctx context.Context, req Request, working string, steps int, guidance float64, enriched, ok bool) {
	if o.history == nil {
		return
	}

	status := "error"
	if ok {
		status = "ok"
	}
	entry := HistoryEntry{
		ID:             uuid.NewString(),
		Prompt:         req.Prompt,
		EnrichedPrompt: working,
		Steps:          steps,
		Guidance:       guidance,
		Status:         status,
		Enriched:       enriched,
		CreatedAt:      time.Now().UTC(),
	}
	if err := o.history.Record(ctx, entry); err != nil {
		o.logger.Warn("failed to record generation history", zap.Error(err))
	}
}

// composeUserPrompt folds the mode and optional context into the prompt
// before enrichment.
func composeUserPrompt(req Request) string {
	prompt := strings.TrimSpace(req.Prompt)

	switch req.Mode {
	case ModeDetailed:
		prompt += ", with intricate fine-grained detail"
	case ModeCinematic:
		prompt += ", with cinematic dramatic lighting"
	}

	if custom := strings.TrimSpace(req.CustomData); custom != "" {
		prompt += ". Additional context: " + custom
	}
	return prompt
}

// truncateText shortens text for log output.
func truncateText(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
