package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables holding provider credentials.
const (
	EnvOpenAIKey = "OPENAI_API_KEY"
	EnvGoogleKey = "GOOGLE_API_KEY"
	EnvNewsKey   = "NEWS_API_KEY"
)

type LLMConfig struct {
	BaseURL        string  `json:"base_url"`
	Model          string  `json:"model"`
	TopP           float32 `json:"top_p"`
	MaxTokens      int     `json:"max_tokens"`
	TimeoutSeconds int     `json:"timeout_seconds"`
	ToolRounds     int     `json:"tool_rounds"`
}

type GoogleConfig struct {
	GeolocationURL string `json:"geolocation_url"`
	GeocodeURL     string `json:"geocode_url"`
	NearbyURL      string `json:"nearby_url"`
}

type NewsConfig struct {
	URL     string `json:"url"`
	Country string `json:"country"`
}

type Config struct {
	Server struct {
		Host    string `json:"host"`
		Port    int    `json:"port"`
		Subpath string `json:"subpath"`
	} `json:"server"`
	LLM    LLMConfig    `json:"llm"`
	Google GoogleConfig `json:"google"`
	News   NewsConfig   `json:"news"`
	HTTP   struct {
		TimeoutSeconds int `json:"timeout_seconds"`
	} `json:"http"`
	Log struct {
		Level string `json:"level"`
	} `json:"log"`

	// Credentials never come from the config file.
	OpenAIKey string `json:"-"`
	GoogleKey string `json:"-"`
	NewsKey   string `json:"-"`
}

// Default returns a config with every field set to its production default.
func Default() *Config {
	c := &Config{}
	c.Server.Host = "0.0.0.0"
	c.Server.Port = 8080
	c.LLM = LLMConfig{
		BaseURL:        "https://integrate.api.nvidia.com/v1",
		Model:          "deepseek-ai/deepseek-r1",
		TopP:           0.5,
		MaxTokens:      1024,
		TimeoutSeconds: 120,
		ToolRounds:     2,
	}
	c.Google = GoogleConfig{
		GeolocationURL: "https://www.googleapis.com/geolocation/v1/geolocate",
		GeocodeURL:     "https://maps.googleapis.com/maps/api/geocode/json",
		NearbyURL:      "https://maps.googleapis.com/maps/api/place/nearbysearch/json",
	}
	c.News = NewsConfig{
		URL:     "https://newsapi.org/v2/top-headlines",
		Country: "us",
	}
	c.HTTP.TimeoutSeconds = 15
	c.Log.Level = "info"
	return c
}

// LoadEnv loads a .env file if present. It reports whether one was found.
func LoadEnv(files ...string) bool {
	return godotenv.Load(files...) == nil
}

// LoadConfig reads an optional JSON config file over the defaults and then
// picks up credentials from the environment. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	c := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := json.Unmarshal(raw, c); err != nil {
				return nil, fmt.Errorf("invalid config format: %w", err)
			}
		}
	}
	if err := c.validate(); err != nil {
		return nil, err
	}

	c.OpenAIKey = os.Getenv(EnvOpenAIKey)
	c.GoogleKey = os.Getenv(EnvGoogleKey)
	c.NewsKey = os.Getenv(EnvNewsKey)
	return c, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.LLM.Model == "" {
		return errors.New("llm.model must be set")
	}
	if c.LLM.MaxTokens <= 0 {
		return errors.New("llm.max_tokens must be positive")
	}
	if c.LLM.ToolRounds < 0 {
		return errors.New("llm.tool_rounds must not be negative")
	}
	return nil
}

// MissingKeys lists the credential variables that are unset.
func (c *Config) MissingKeys() []string {
	var missing []string
	if c.OpenAIKey == "" {
		missing = append(missing, EnvOpenAIKey)
	}
	if c.GoogleKey == "" {
		missing = append(missing, EnvGoogleKey)
	}
	if c.NewsKey == "" {
		missing = append(missing, EnvNewsKey)
	}
	return missing
}

func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

// Addr is the listen address for the web server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
