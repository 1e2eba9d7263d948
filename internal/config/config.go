package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "VIDARTICLE_CONFIG"

	llmProviderEnv   = "LLM_PROVIDER"
	openAIKeyEnv     = "OPENAI_API_KEY"
	openAIBaseURLEnv = "OPENAI_BASE_URL"
	openAIModelEnv   = "OPENAI_MODEL"
	openAIHostsEnv   = "OPENAI_ALLOWED_HOSTS"
	geminiKeyEnv     = "GEMINI_API_KEY"
	geminiModelEnv   = "GEMINI_MODEL"
	asrBackendEnv    = "ASR_BACKEND"
	whisperBinEnv    = "WHISPER_BIN"
	whisperModelEnv  = "WHISPER_MODEL"
	whisperASRURLEnv = "WHISPER_ASR_URL"
	imgurIDEnv       = "IMGUR_CLIENT_ID"
	imgurTokenEnv    = "IMGUR_TOKEN"
	databaseDSNEnv   = "DATABASE_DSN"
	logLevelEnv      = "LOG_LEVEL"
	maxConcurrentEnv = "MAX_CONCURRENT"
)

// Config holds collaborator settings. Request options live on the command line.
type Config struct {
	LLM           LLMConfig      `yaml:"llm"`
	OpenAI        OpenAIConfig   `yaml:"openai"`
	Gemini        GeminiConfig   `yaml:"gemini"`
	ASR           ASRConfig      `yaml:"asr"`
	Imgur         ImgurConfig    `yaml:"imgur"`
	Database      DatabaseConfig `yaml:"database"`
	Tools         ToolsConfig    `yaml:"tools"`
	LogLevel      string         `yaml:"logLevel"`
	MaxConcurrent int            `yaml:"maxConcurrent"`
	CacheDir      string         `yaml:"cacheDir"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"`
}

type OpenAIConfig struct {
	APIKey       string   `yaml:"apiKey"`
	BaseURL      string   `yaml:"baseUrl"`
	Model        string   `yaml:"model"`
	AllowedHosts []string `yaml:"allowedHosts"`
}

type GeminiConfig struct {
	APIKey string `yaml:"apiKey"`
	Model  string `yaml:"model"`
}

type ASRConfig struct {
	Backend      string `yaml:"backend"`
	WhisperBin   string `yaml:"whisperBin"`
	WhisperModel string `yaml:"whisperModel"`
	URL          string `yaml:"url"`
}

type ImgurConfig struct {
	ClientID string `yaml:"clientId"`
	Token    string `yaml:"token"`
}

// DatabaseConfig enables the article archive when DSN is set.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type ToolsConfig struct {
	FFmpeg  string `yaml:"ffmpeg"`
	FFprobe string `yaml:"ffprobe"`
	YtDlp   string `yaml:"ytdlp"`
}

// Load reads the YAML file at path (or $VIDARTICLE_CONFIG) when given and
// applies environment overrides on top.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Default() Config {
	return Config{
		LLM:           LLMConfig{Provider: "openai"},
		OpenAI:        OpenAIConfig{BaseURL: "https://api.openai.com/v1", Model: "gpt-3.5-turbo-16k"},
		Gemini:        GeminiConfig{Model: "gemini-2.0-flash"},
		ASR:           ASRConfig{Backend: "whispercpp", WhisperBin: ".cache/bin/whisper.cpp", WhisperModel: ".cache/models/ggml-base.bin", URL: "http://whisper:9000"},
		Tools:         ToolsConfig{FFmpeg: "ffmpeg", FFprobe: "ffprobe", YtDlp: "yt-dlp"},
		LogLevel:      "info",
		MaxConcurrent: 4,
		CacheDir:      ".cache",
	}
}

func (c *Config) applyEnvOverrides() error {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.LLM.Provider, llmProviderEnv)
	set(&c.OpenAI.APIKey, openAIKeyEnv)
	set(&c.OpenAI.BaseURL, openAIBaseURLEnv)
	set(&c.OpenAI.Model, openAIModelEnv)
	set(&c.Gemini.APIKey, geminiKeyEnv)
	set(&c.Gemini.Model, geminiModelEnv)
	set(&c.ASR.Backend, asrBackendEnv)
	set(&c.ASR.WhisperBin, whisperBinEnv)
	set(&c.ASR.WhisperModel, whisperModelEnv)
	set(&c.ASR.URL, whisperASRURLEnv)
	set(&c.Imgur.ClientID, imgurIDEnv)
	set(&c.Imgur.Token, imgurTokenEnv)
	set(&c.Database.DSN, databaseDSNEnv)
	set(&c.LogLevel, logLevelEnv)

	if v := os.Getenv(openAIHostsEnv); strings.TrimSpace(v) != "" {
		c.OpenAI.AllowedHosts = splitList(v)
	}
	if v := strings.TrimSpace(os.Getenv(maxConcurrentEnv)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", maxConcurrentEnv, err)
		}
		c.MaxConcurrent = n
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
