package diffusion

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"pano_backend/core"
	"pano_backend/logging"
)

// Pipeline is a ready-to-use image generation pipeline: a backend client
// with a resolved device and optional style adapter. Build one through a
// Manager rather than directly.
type Pipeline struct {
	client        Client
	modelID       string
	device        string
	adapterID     string
	adapterActive bool
	logger        *logging.Logger
}

// Device returns the compute device the pipeline resolved to.
func (p *Pipeline) Device() string {
	return p.device
}

// AdapterActive reports whether the style adapter was attached.
func (p *Pipeline) AdapterActive() bool {
	return p.adapterActive
}

// Generate renders one image at the default resolution. Parameters are
// validated before the backend call; a successful call with zero images is
// ErrNoImages.
func (p *Pipeline) Generate(ctx context.Context, prompt string, steps int, guidance float64) (*Image, error) {
	params := DefaultParams(prompt, steps, guidance)
	if err := params.Validate(); err != nil {
		return nil, err
	}

	p.logger.Debug("generating image",
		zap.Int("steps", params.Steps),
		zap.Float64("guidance", params.Guidance),
		zap.String("device", p.device))

	resp, err := p.client.Txt2Img(ctx, Txt2ImgRequest{
		Prompt:         params.Prompt,
		NegativePrompt: params.NegativePrompt,
		Steps:          params.Steps,
		CFGScale:       params.Guidance,
		Width:          params.Width,
		Height:         params.Height,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if len(resp.Images) == 0 {
		return nil, ErrNoImages
	}

	data, err := base64.StdEncoding.DecodeString(resp.Images[0])
	if err != nil {
		return nil, fmt.Errorf("%w: image data is not valid base64: %v", ErrGenerationFailed, err)
	}
	width, height, err := DecodeBounds(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	return &Image{Data: data, Width: width, Height: height}, nil
}

// Manager builds the Pipeline lazily, exactly once per process. The first
// Get builds it; every later Get returns the same pipeline and ignores any
// configuration changes made in between. A failed build is cached too: the
// pipeline is the process's one heavyweight resource and a broken backend
// is fatal rather than retried per request.
type Manager struct {
	client   Client
	cfg      core.ImageGenConfig
	registry *AdapterRegistry
	logger   *logging.Logger

	once     sync.Once
	pipeline *Pipeline
	err      error
}

// NewManager creates a Manager. The registry may be nil.
func NewManager(client Client, cfg core.ImageGenConfig, registry *AdapterRegistry, logger *logging.Logger) *Manager {
	return &Manager{
		client:   client,
		cfg:      cfg,
		registry: registry,
		logger:   logger.Named("diffusion"),
	}
}

// Get returns the pipeline, building it on first use.
func (m *Manager) Get(ctx context.Context) (*Pipeline, error) {
	m.once.Do(func() {
		m.pipeline, m.err = m.build(ctx)
	})
	return m.pipeline, m.err
}

func (m *Manager) build(ctx context.Context) (*Pipeline, error) {
	info, err := m.client.DeviceInfo(ctx)
	if err != nil {
		// An unreachable backend means no pipeline at all, not a
		// device fallback.
		return nil, fmt.Errorf("%w: backend unreachable: %v", ErrPipelineInit, err)
	}

	device := m.cfg.Device
	if device == "cuda" && !info.CUDAAvailable {
		m.logger.Warn("CUDA not available, falling back to CPU",
			zap.String("backend_device", info.Name))
		device = "cpu"
	}

	adapterID := m.cfg.LoRAModelID
	adapterActive := false
	if m.cfg.UseLoRA && adapterID != "" {
		adapterActive = m.attachAdapter(ctx, adapterID)
	}

	m.logger.Info("pipeline ready",
		zap.String("model", m.cfg.ModelID),
		zap.String("device", device),
		zap.Bool("adapter_active", adapterActive))

	return &Pipeline{
		client:        m.client,
		modelID:       m.cfg.ModelID,
		device:        device,
		adapterID:     adapterID,
		adapterActive: adapterActive,
		logger:        m.logger,
	}, nil
}

// attachAdapter checks that the backend has the configured style adapter.
// A missing or unlistable adapter is logged and swallowed: generation
// still works, only without the 360 style conditioning.
func (m *Manager) attachAdapter(ctx context.Context, adapterID string) bool {
	adapters, err := m.client.Adapters(ctx)
	if err != nil {
		m.logger.Warn("could not list style adapters, continuing without style adapter",
			zap.String("adapter", adapterID), zap.Error(err))
		return false
	}

	name := adapterBaseName(adapterID)
	for _, a := range adapters {
		if a.Name == name || a.Name == adapterID {
			if m.registry != nil {
				if spec, ok := m.registry.Lookup(adapterID); ok {
					m.logger.Info("style adapter attached",
						zap.String("adapter", adapterID),
						zap.String("trigger_word", spec.TriggerWord))
					return true
				}
			}
			m.logger.Info("style adapter attached", zap.String("adapter", adapterID))
			return true
		}
	}

	m.logger.Warn("style adapter not found on backend, continuing without style adapter",
		zap.String("adapter", adapterID))
	return false
}

// adapterBaseName strips a hub-style "owner/name" prefix; backends list
// adapters by file name.
func adapterBaseName(id string) string {
	for i := len(id) - 1; i >= 0; i-- {
		if id[i] == '/' {
			return id[i+1:]
		}
	}
	return id
}
