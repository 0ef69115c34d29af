package core

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

// Resolver loads the application configuration once per process and caches
// it. A successful resolution is final: later env changes are ignored and
// every subsequent call returns the identical *Config. A failed resolution
// is not cached, so a fixed environment can be retried without restarting.
type Resolver struct {
	mu      sync.Mutex
	envOnce sync.Once
	cfg     *Config
}

// NewResolver returns an unresolved Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve returns the cached configuration, loading and validating it on
// first use. The .env file is searched for in the working directory and its
// parent; a missing file is not an error since configuration may come from
// the process environment.
func (r *Resolver) Resolve() (*Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cfg != nil {
		return r.cfg, nil
	}

	r.envOnce.Do(loadEnvFile)

	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	r.cfg = cfg
	return r.cfg, nil
}

// Resolved reports whether a configuration has been successfully loaded.
func (r *Resolver) Resolved() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg != nil
}

func loadEnvFile() {
	candidates := []string{".env", filepath.Join("..", ".env")}
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		// Load, not Overload: real environment variables win over .env.
		if err := godotenv.Load(path); err == nil {
			return
		}
	}
}
