package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL        = "https://manganelo.com"
	DefaultTimeout        = 30 * time.Second
	DefaultMaxUpdatePages = 50
)

type Config struct {
	BaseURL          string        `yaml:"base_url"`
	UserAgent        string        `yaml:"user_agent"`
	Cookie           string        `yaml:"cookie"`
	CookieFile       string        `yaml:"cookie_file"`
	Timeout          time.Duration `yaml:"timeout"`
	RateLimit        float64       `yaml:"rate_limit"`
	RateBurst        int           `yaml:"rate_burst"`
	Attempts         int           `yaml:"attempts"`
	CloudflareBypass bool          `yaml:"cloudflare_bypass"`
	MaxUpdatePages   int           `yaml:"max_update_pages"`
	Debug            bool          `yaml:"debug"`

	Output         string `yaml:"output"`
	ImageWorkers   int    `yaml:"image_workers"`
	ChapterWorkers int    `yaml:"chapter_workers"`
	KeepFolders    bool   `yaml:"keep_folders"`
	SkipBroken     bool   `yaml:"skip_broken"`
}

// Options carries command-line overrides. Zero values leave the profile
// untouched.
type Options struct {
	IgnoreConfig     bool
	BaseURL          string
	UserAgent        string
	Cookie           string
	CookieFile       string
	Timeout          time.Duration
	RateLimit        float64
	Attempts         int
	CloudflareBypass bool
	MaxUpdatePages   int
	Debug            bool
	Output           string
	ImageWorkers     int
	ChapterWorkers   int
	KeepFolders      bool
	SkipBroken       bool
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:        DefaultBaseURL,
		Timeout:        DefaultTimeout,
		RateLimit:      2,
		RateBurst:      2,
		Attempts:       3,
		MaxUpdatePages: DefaultMaxUpdatePages,
		Output:         ".",
		ImageWorkers:   5,
		ChapterWorkers: 2,
	}
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadMerged resolves the active profile, applies opts on top and returns
// the result with a short description of where it came from.
func LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", nil
	}

	activePath, err := ActiveConfigPath()
	if err == ErrNoConfig || activePath == "" {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory)\nRun `nelo config init` to create an actual config\n", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, activePath, nil
}

func mergeConfig(c *Config, o Options) {
	if o.BaseURL != "" {
		c.BaseURL = o.BaseURL
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.Cookie != "" {
		c.Cookie = o.Cookie
	}
	if o.CookieFile != "" {
		c.CookieFile = o.CookieFile
	}
	if o.Timeout != 0 {
		c.Timeout = o.Timeout
	}
	if o.RateLimit != 0 {
		c.RateLimit = o.RateLimit
	}
	if o.Attempts != 0 {
		c.Attempts = o.Attempts
	}
	if o.CloudflareBypass {
		c.CloudflareBypass = true
	}
	if o.MaxUpdatePages != 0 {
		c.MaxUpdatePages = o.MaxUpdatePages
	}
	if o.Debug {
		c.Debug = true
	}
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.ImageWorkers != 0 {
		c.ImageWorkers = o.ImageWorkers
	}
	if o.ChapterWorkers != 0 {
		c.ChapterWorkers = o.ChapterWorkers
	}
	if o.KeepFolders {
		c.KeepFolders = true
	}
	if o.SkipBroken {
		c.SkipBroken = true
	}
}

func normalizeDefaults(c *Config) {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Attempts < 1 {
		c.Attempts = 1
	}
	if c.RateBurst < 1 {
		c.RateBurst = 1
	}
	if c.MaxUpdatePages <= 0 {
		c.MaxUpdatePages = DefaultMaxUpdatePages
	}
	if c.Output == "" {
		c.Output = "."
	}
	if c.ImageWorkers == 0 {
		c.ImageWorkers = 5
	}
	if c.ChapterWorkers == 0 {
		c.ChapterWorkers = 2
	}
}

func (c *Config) Print(w io.Writer) {
	fmt.Fprintf(w, " -base_url: %s\n", c.BaseURL)
	fmt.Fprintf(w, " -timeout: %s\n", c.Timeout)
	if c.RateLimit > 0 {
		fmt.Fprintf(w, " -rate_limit: %.2f/s (burst %d)\n", c.RateLimit, c.RateBurst)
	}
	fmt.Fprintf(w, " -attempts: %d\n", c.Attempts)
	fmt.Fprintf(w, " -max_update_pages: %d\n", c.MaxUpdatePages)
	if c.CloudflareBypass {
		fmt.Fprintf(w, " -cloudflare_bypass: %t\n", c.CloudflareBypass)
	}
	if c.UserAgent != "" {
		fmt.Fprintf(w, " -user_agent: %s\n", c.UserAgent)
	}
	if c.CookieFile != "" {
		fmt.Fprintf(w, " -cookie_file: %s\n", c.CookieFile)
	}
	if c.Debug {
		fmt.Fprintf(w, " -debug: %t\n", c.Debug)
	}
	fmt.Fprintf(w, " -output: %s\n", c.Output)
	fmt.Fprintf(w, " -image_workers: %d\n", c.ImageWorkers)
	fmt.Fprintf(w, " -chapter_workers: %d\n", c.ChapterWorkers)
	if c.KeepFolders {
		fmt.Fprintf(w, " -keep_folders: %t\n", c.KeepFolders)
	}
	if c.SkipBroken {
		fmt.Fprintf(w, " -skip_broken: %t\n", c.SkipBroken)
	}
}
