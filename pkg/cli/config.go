package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

const (
	// DefaultBaseDir is the configuration directory under $HOME.
	DefaultBaseDir = ".vidgen"

	// DefaultConfigFile is the configuration file name.
	DefaultConfigFile = "config.yaml"
)

// Providers a context can select.
const (
	ProviderOpenAI = "openai"
	ProviderVeo    = "veo"
)

// Extra keys understood by the commands.
const (
	ExtraDefaultModel = "default_model"
	ExtraPollInterval = "poll_interval"
)

// Config is the CLI configuration file.
type Config struct {
	// CurrentContext is the name of the active context.
	CurrentContext string `yaml:"current_context,omitempty"`

	// Contexts maps context names to their settings.
	Contexts map[string]*Context `yaml:"contexts,omitempty"`

	configPath string
}

// Context is one named set of credentials and defaults.
type Context struct {
	Name string `yaml:"name"`

	// Provider is "openai" (default) or "veo".
	Provider string `yaml:"provider,omitempty"`

	// APIKey authenticates against the provider.
	APIKey string `yaml:"api_key,omitempty"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `yaml:"base_url,omitempty"`

	// Timeout is the generation timeout in seconds.
	Timeout int `yaml:"timeout,omitempty"`

	// MaxRetries bounds transport retries.
	MaxRetries int `yaml:"max_retries,omitempty"`

	// Extra holds optional settings such as default_model.
	Extra map[string]string `yaml:"extra,omitempty"`
}

// LoadConfig loads the configuration from path, or from
// ~/.vidgen/config.yaml when path is empty. A missing file yields an empty
// configuration; it is created on the first Save.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, DefaultBaseDir, DefaultConfigFile)
	}

	cfg := &Config{
		Contexts:   make(map[string]*Context),
		configPath: path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]*Context)
	}
	for name, ctx := range cfg.Contexts {
		if ctx == nil {
			ctx = &Context{}
			cfg.Contexts[name] = ctx
		}
		ctx.Name = name
	}
	cfg.configPath = path
	return cfg, nil
}

// Save writes the configuration with owner-only permissions.
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(c.configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Path returns the config file path.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory holding the config file.
func (c *Config) Dir() string {
	return filepath.Dir(c.configPath)
}

// AddContext adds or replaces a context and saves. The first context added
// becomes current.
func (c *Config) AddContext(name string, ctx *Context) error {
	if name == "" {
		return fmt.Errorf("context name is required")
	}
	switch ctx.Provider {
	case "", ProviderOpenAI, ProviderVeo:
	default:
		return fmt.Errorf("unknown provider %q (want %s or %s)", ctx.Provider, ProviderOpenAI, ProviderVeo)
	}
	ctx.Name = name
	c.Contexts[name] = ctx
	if c.CurrentContext == "" {
		c.CurrentContext = name
	}
	return c.Save()
}

// DeleteContext removes a context and saves.
func (c *Config) DeleteContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	delete(c.Contexts, name)
	if c.CurrentContext == name {
		c.CurrentContext = ""
	}
	return c.Save()
}

// UseContext makes name the current context and saves.
func (c *Config) UseContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	c.CurrentContext = name
	return c.Save()
}

// GetContext returns the named context.
func (c *Config) GetContext(name string) (*Context, error) {
	ctx, ok := c.Contexts[name]
	if !ok {
		return nil, fmt.Errorf("context %q not found", name)
	}
	return ctx, nil
}

// ResolveContext returns the named context, or the current one when name
// is empty. With neither it returns (nil, nil): the caller falls back to
// the environment.
func (c *Config) ResolveContext(name string) (*Context, error) {
	if name != "" {
		return c.GetContext(name)
	}
	if c.CurrentContext == "" {
		return nil, nil
	}
	return c.GetContext(c.CurrentContext)
}

// ListContexts returns the context names, sorted.
func (c *Config) ListContexts() []string {
	names := make([]string, 0, len(c.Contexts))
	for name := range c.Contexts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// GetExtra returns an extra value, or "" when unset.
func (ctx *Context) GetExtra(key string) string {
	if ctx == nil || ctx.Extra == nil {
		return ""
	}
	return ctx.Extra[key]
}

// SetExtra sets an extra value.
func (ctx *Context) SetExtra(key, value string) {
	if ctx.Extra == nil {
		ctx.Extra = make(map[string]string)
	}
	ctx.Extra[key] = value
}

// TimeoutDuration returns Timeout as a duration, or 0 when unset.
func (ctx *Context) TimeoutDuration() time.Duration {
	if ctx == nil || ctx.Timeout <= 0 {
		return 0
	}
	return time.Duration(ctx.Timeout) * time.Second
}

// ProviderName returns the provider, defaulting to openai.
func (ctx *Context) ProviderName() string {
	if ctx == nil || ctx.Provider == "" {
		return ProviderOpenAI
	}
	return ctx.Provider
}

// MaskAPIKey masks the API key for display.
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
