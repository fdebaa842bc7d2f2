// Package config loads and persists application configuration, including
// the classification category set and system prompt.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultCategories is the category taxonomy shipped out of the box.
var DefaultCategories = []string{
	"Freizeit & Lifestyle",
	"Supermarkt",
	"Essen unterwegs",
	"Mobilität",
	"Kleidung & Körperpflege",
	"Überschuss",
	"Versicherung",
	"Wohnen",
	"Sonstiges",
}

// DefaultSystemPrompt is the shipped classification prompt. Users tune it
// per bank; the merchant hints below cover common German edge cases.
const DefaultSystemPrompt = `In meiner nächsten Nachricht werde ich dir Auftraggeber/Empfänger, Buchungstext, Verwendungszweck eines Kontos geben.
Deine Aufgabe ist es, die Ausgabe einer der folgenden Kategorien zuzuordnen:
- Freizeit & Lifestyle
- Supermarkt
- Essen unterwegs
- Mobilität
- Kleidung & Körperpflege
- Überschuss
- Versicherung
- Wohnen
- Sonstiges

Mobilfunk gehört zu Sonstiges.
Amazon gehört zu Freizeit & Lifestyle.
Studierendenwerk gehört zu Essen unterwegs.
DB ist Deutsche Bahn und damit Mobilität.
Vodafone ist WLAN und damit Wohnen.
Alles mit Tesla oder EnBW ist Mobilität.
Rundfunkbeitrag ist bei Wohnen dabei.
Handyvertrag gehört zu Freizeit & Lifestyle.

Wenn du dir nicht sicher bist, antworte mit 'unsicher'. Antworte nur mit der Kategorie, keine Begründung!`

// Config holds application configuration.
type Config struct {
	Database  DatabaseConfig
	LLM       LLMConfig
	Classify  ClassifyConfig
	Transfers TransferConfig
	Export    ExportConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// LLMConfig holds provider settings.
type LLMConfig struct {
	Provider  string
	Model     string
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	APIKeyEnv string `mapstructure:"api_key_env"`
}

// ClassifyConfig holds batching and prompt settings.
type ClassifyConfig struct {
	BatchSize  int `mapstructure:"batch_size"`
	Prompt     string
	Categories []string
}

// TransferConfig holds internal-transfer matching settings.
type TransferConfig struct {
	UserName  string `mapstructure:"user_name"`
	Tolerance float64
}

// ExportConfig holds export defaults.
type ExportConfig struct {
	Path string
}

// ResolveAPIKey returns the key to use: the explicit value wins, then the
// configured env var.
func (c LLMConfig) ResolveAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	if c.APIKeyEnv != "" {
		return os.Getenv(c.APIKeyEnv)
	}
	return ""
}

// Load reads configuration from file and env. Env var overrides use prefix KONTOSCAN_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "kontoscan", "kontoscan.db"))
	v.SetDefault("llm.provider", "ollama")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.api_key_env", "GEMINI_API_KEY")
	v.SetDefault("classify.batch_size", 10)
	v.SetDefault("classify.prompt", DefaultSystemPrompt)
	v.SetDefault("classify.categories", DefaultCategories)
	v.SetDefault("transfers.user_name", "")
	v.SetDefault("transfers.tolerance", 0.01)
	v.SetDefault("export.path", "kontoscan_export.csv")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("KONTOSCAN_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "kontoscan"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("KONTOSCAN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if
// needed. The API key lands in plain text; prefer the env var for secrets.
func Save(cfg Config) error {
	path := os.Getenv("KONTOSCAN_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "kontoscan", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("llm.provider", cfg.LLM.Provider)
	v.Set("llm.model", cfg.LLM.Model)
	v.Set("llm.base_url", cfg.LLM.BaseURL)
	v.Set("llm.api_key", cfg.LLM.APIKey)
	v.Set("llm.api_key_env", cfg.LLM.APIKeyEnv)
	v.Set("classify.batch_size", cfg.Classify.BatchSize)
	v.Set("classify.prompt", cfg.Classify.Prompt)
	v.Set("classify.categories", cfg.Classify.Categories)
	v.Set("transfers.user_name", cfg.Transfers.UserName)
	v.Set("transfers.tolerance", cfg.Transfers.Tolerance)
	v.Set("export.path", cfg.Export.Path)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
