package core

import (
	"fmt"
	"os"
	"strings"
)

// Default values for enrichment configuration.
const (
	DefaultEnrichURL            = "http://127.0.0.1:1234/v1"
	DefaultEnrichModel          = "mistral-7b-instruct"
	DefaultEnrichMaxTokens      = 250
	DefaultEnrichMinTokens      = 150
	DefaultEnrichTemperature    = 0.7
	DefaultEnrichDecodingMethod = DecodingSample
)

// Recognized decoding methods for the enrichment backend.
const (
	DecodingSample = "sample"
	DecodingGreedy = "greedy"
)

// Default values for image generation configuration.
const (
	DefaultSDAPIURL       = "http://127.0.0.1:7860"
	DefaultSDModelID      = "runwayml/stable-diffusion-v1-5"
	DefaultLoRAModelID    = "ProGamerGov/360-Diffusion-LoRA-sd-v1-5"
	DefaultTriggerWord    = "qxj"
	DefaultInferenceSteps = 50
	DefaultGuidanceScale  = 7.5
	DefaultDevice         = "cuda"
	DefaultPort           = 7860
	DefaultLogLevel       = "info"
	DefaultDBPath         = "generations.db"
)

// placeholderPrefix marks values copied verbatim from example.env.
const placeholderPrefix = "<your"

// EnrichConfig holds settings for the prompt enrichment backend.
type EnrichConfig struct {
	APIKey         string
	ProjectID      string
	URL            string
	Model          string
	MaxTokens      int
	MinTokens      int
	Temperature    float64
	DecodingMethod string
}

// ImageGenConfig holds settings for the diffusion image backend.
type ImageGenConfig struct {
	APIURL          string
	ModelID         string
	UseLoRA         bool
	LoRAModelID     string
	TriggerWord     string
	InferenceSteps  int
	GuidanceScale   float64
	Device          string
	AdapterRegistry string
}

// Config is the application configuration aggregate. Instances are treated
// as immutable after LoadConfig returns.
type Config struct {
	Debug      bool
	LogLevel   string
	Port       int
	DBPath     string
	UIPassword string
	Enrich     EnrichConfig
	ImageGen   ImageGenConfig
}

// LoadConfig reads configuration from environment variables and validates it.
//
// Enrichment numerics parse strictly: a set-but-malformed value is a
// ConfigError. Image generation numerics parse leniently and fall back to
// defaults. The asymmetry is intentional; tuning values for the image
// backend degrade gracefully while credential-adjacent enrichment settings
// must fail loudly.
func LoadConfig() (*Config, error) {
	apiKey := requiredEnv("API_KEY")
	if apiKey == "" {
		return nil, ErrMissingConfig("API_KEY")
	}
	if strings.HasPrefix(apiKey, placeholderPrefix) {
		return nil, ErrPlaceholderValue("API_KEY")
	}

	projectID := requiredEnv("PROJECT_ID")
	if projectID == "" {
		return nil, ErrMissingConfig("PROJECT_ID")
	}
	if strings.HasPrefix(projectID, placeholderPrefix) {
		return nil, ErrPlaceholderValue("PROJECT_ID")
	}

	enrich, err := loadEnrichConfig(apiKey, projectID)
	if err != nil {
		return nil, err
	}

	imageGen := loadImageGenConfig()
	if err := validateImageGenConfig(&imageGen); err != nil {
		return nil, err
	}

	cfg := &Config{
		Debug:      ParseBoolEnv("DEBUG", false),
		LogLevel:   GetEnvOrDefault("LOG_LEVEL", DefaultLogLevel),
		Port:       ParseIntEnv("PORT", DefaultPort),
		DBPath:     GetEnvOrDefault("DB_PATH", DefaultDBPath),
		UIPassword: os.Getenv("UI_PASSWORD"),
		Enrich:     enrich,
		ImageGen:   imageGen,
	}
	return cfg, nil
}

// requiredEnv reads a variable accepting both the documented upper-case name
// and its lower-case form.
func requiredEnv(name string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return os.Getenv(strings.ToLower(name))
}

func loadEnrichConfig(apiKey, projectID string) (EnrichConfig, error) {
	maxTokens, err := RequireIntEnv("ENRICH_MAX_TOKENS", DefaultEnrichMaxTokens)
	if err != nil {
		return EnrichConfig{}, err
	}
	minTokens, err := RequireIntEnv("ENRICH_MIN_TOKENS", DefaultEnrichMinTokens)
	if err != nil {
		return EnrichConfig{}, err
	}
	temperature, err := RequireFloat64Env("ENRICH_TEMPERATURE", DefaultEnrichTemperature)
	if err != nil {
		return EnrichConfig{}, err
	}

	cfg := EnrichConfig{
		APIKey:         apiKey,
		ProjectID:      projectID,
		URL:            GetEnvOrDefault("ENRICH_API_URL", DefaultEnrichURL),
		Model:          GetEnvOrDefault("ENRICH_MODEL", DefaultEnrichModel),
		MaxTokens:      maxTokens,
		MinTokens:      minTokens,
		Temperature:    temperature,
		DecodingMethod: strings.ToLower(GetEnvOrDefault("ENRICH_DECODING_METHOD", DefaultEnrichDecodingMethod)),
	}

	// Validation order matters for error messages: temperature range first,
	// then token bounds, then decoding method.
	if cfg.Temperature < 0.0 || cfg.Temperature > 1.0 {
		return EnrichConfig{}, ErrInvalidValue("ENRICH_TEMPERATURE",
			fmt.Sprintf("must be between 0.0 and 1.0, got %g", cfg.Temperature))
	}
	if cfg.MinTokens > cfg.MaxTokens {
		return EnrichConfig{}, ErrInvalidValue("ENRICH_MIN_TOKENS",
			fmt.Sprintf("min tokens (%d) cannot exceed max tokens (%d)", cfg.MinTokens, cfg.MaxTokens))
	}
	if cfg.MaxTokens <= 0 {
		return EnrichConfig{}, ErrInvalidValue("ENRICH_MAX_TOKENS",
			fmt.Sprintf("must be positive, got %d", cfg.MaxTokens))
	}
	switch cfg.DecodingMethod {
	case DecodingSample, DecodingGreedy:
	default:
		return EnrichConfig{}, ErrInvalidValue("ENRICH_DECODING_METHOD",
			fmt.Sprintf("must be %q or %q, got %q", DecodingSample, DecodingGreedy, cfg.DecodingMethod))
	}

	return cfg, nil
}

func loadImageGenConfig() ImageGenConfig {
	return ImageGenConfig{
		APIURL:          GetEnvOrDefault("SD_API_URL", DefaultSDAPIURL),
		ModelID:         GetEnvOrDefault("SD_MODEL_ID", DefaultSDModelID),
		UseLoRA:         ParseBoolEnv("SD_USE_LORA", true),
		LoRAModelID:     GetEnvOrDefault("SD_LORA_MODEL_ID", DefaultLoRAModelID),
		TriggerWord:     GetEnvOrDefault("SD_TRIGGER_WORD", DefaultTriggerWord),
		InferenceSteps:  ParseIntEnv("SD_NUM_INFERENCE_STEPS", DefaultInferenceSteps),
		GuidanceScale:   ParseFloat64Env("SD_GUIDANCE_SCALE", DefaultGuidanceScale),
		Device:          GetEnvOrDefault("SD_DEVICE", DefaultDevice),
		AdapterRegistry: os.Getenv("SD_ADAPTER_REGISTRY"),
	}
}

// validateImageGenConfig enforces the constructed invariants. Lenient
// parsing already replaced malformed values with defaults, so only
// explicitly set out-of-range values reach here.
func validateImageGenConfig(cfg *ImageGenConfig) error {
	if cfg.InferenceSteps <= 0 {
		return ErrInvalidValue("SD_NUM_INFERENCE_STEPS",
			fmt.Sprintf("must be positive, got %d", cfg.InferenceSteps))
	}
	if cfg.GuidanceScale <= 0 {
		return ErrInvalidValue("SD_GUIDANCE_SCALE",
			fmt.Sprintf("must be positive, got %g", cfg.GuidanceScale))
	}
	return nil
}
