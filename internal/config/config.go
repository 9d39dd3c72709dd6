package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pagespace/gateway/pkg/types"
)

// knownProviders is the fixed provider enumeration the Provider Factory
// (C4) resolves against.
var knownProviders = []string{
	"pagespace", "openrouter", "openrouter_free", "google", "openai",
	"anthropic", "xai", "ollama", "lmstudio", "glm", "minimax",
}

// Load resolves the gateway config from an optional JSONC declaration file
// (for the Provider/MCP blocks) layered under environment overrides, which
// always win. directory, if non-empty, is searched for
// "<directory>/.pagespace/gateway.jsonc".
func Load(directory string) (*types.AppConfig, error) {
	cfg := &types.AppConfig{
		Provider: make(map[string]types.ProviderConfig),
		MCP:      make(map[string]types.MCPConfig),
	}

	if directory != "" {
		_ = loadConfigFile(filepath.Join(directory, ".pagespace", "gateway.json"), cfg)
		_ = loadConfigFile(filepath.Join(directory, ".pagespace", "gateway.jsonc"), cfg)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func loadConfigFile(path string, cfg *types.AppConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	data = stripJSONComments(data)

	var file types.AppConfig
	if err := json.Unmarshal(data, &file); err != nil {
		return err
	}
	mergeConfig(cfg, &file)
	return nil
}

// stripJSONComments removes // and /* */ comments from a JSONC document.
func stripJSONComments(data []byte) []byte {
	singleLine := regexp.MustCompile(`//.*$`)
	lines := bytes.Split(data, []byte("\n"))
	for i, line := range lines {
		lines[i] = singleLine.ReplaceAll(line, nil)
	}
	data = bytes.Join(lines, []byte("\n"))

	multiLine := regexp.MustCompile(`/\*[\s\S]*?\*/`)
	return multiLine.ReplaceAll(data, nil)
}

func mergeConfig(target, source *types.AppConfig) {
	if source.WebAppURL != "" {
		target.WebAppURL = source.WebAppURL
	}
	if len(source.AdditionalAllowedOrigins) > 0 {
		target.AdditionalAllowedOrigins = source.AdditionalAllowedOrigins
	}
	if source.OriginValidationMode != "" {
		target.OriginValidationMode = source.OriginValidationMode
	}
	if source.ProcessorURL != "" {
		target.ProcessorURL = source.ProcessorURL
	}
	if source.FileStoragePath != "" {
		target.FileStoragePath = source.FileStoragePath
	}
	for k, v := range source.Provider {
		target.Provider[k] = v
	}
	for k, v := range source.MCP {
		target.MCP[k] = v
	}
}

// applyEnvOverrides applies the environment variables documented in doc.go.
// Environment always wins over the file-loaded config.
func applyEnvOverrides(cfg *types.AppConfig) {
	if v := os.Getenv("WEB_APP_URL"); v != "" {
		cfg.WebAppURL = v
	}
	if v := os.Getenv("ADDITIONAL_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.AdditionalAllowedOrigins = origins
	}
	if v := os.Getenv("ORIGIN_VALIDATION_MODE"); v != "" {
		cfg.OriginValidationMode = v
	}
	if cfg.OriginValidationMode == "" {
		cfg.OriginValidationMode = "block"
	}
	if v := os.Getenv("COOKIE_DOMAIN"); v != "" {
		cfg.CookieDomain = v
	}
	if v := os.Getenv("CRON_SECRET"); v != "" {
		cfg.CronSecret = v
	}
	if v := os.Getenv("AUTH_SECRET"); v != "" {
		cfg.AuthSecret = v
	}
	if v := os.Getenv("PROCESSOR_URL"); v != "" {
		cfg.ProcessorURL = v
	}
	if v := os.Getenv("FILE_STORAGE_PATH"); v != "" {
		cfg.FileStoragePath = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("PAGESPACE_DEFAULT_KEY"); v != "" {
		cfg.DefaultProviderKeyPointer = v
	}

	for _, name := range knownProviders {
		upper := strings.ToUpper(name)
		apiKey := os.Getenv("PAGESPACE_PROVIDER_" + upper + "_API_KEY")
		baseURL := os.Getenv("PAGESPACE_PROVIDER_" + upper + "_BASE_URL")
		if apiKey == "" && baseURL == "" {
			continue
		}
		p := cfg.Provider[name]
		if apiKey != "" {
			p.APIKey = apiKey
		}
		if baseURL != "" {
			p.BaseURL = baseURL
		}
		cfg.Provider[name] = p
	}
}

// Save writes cfg to path as indented JSON, creating the parent directory
// if needed. User-supplied API keys are persisted through provider.KeyStore,
// not through Save.
func Save(cfg *types.AppConfig, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
