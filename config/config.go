package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	HTTPPort string `envconfig:"HTTP_PORT" default:"4242"`

	// Optional: wenn gesetzt, verlangt die API den Header X-API-KEY
	APISecretKey string `envconfig:"API_SECRET_KEY"`

	LLM

	// Anzahl früherer Einsätze, die als Praxistipps in den Prompt gehen
	HistoryTipsLimit int `envconfig:"HISTORY_TIPS_LIMIT" default:"3"`

	S3Key    string `envconfig:"S3_KEY" required:"true"`
	S3Secret string `envconfig:"S3_SECRET" required:"true"`
	S3URL    string `envconfig:"S3_URL" required:"true"`
	S3Region string `envconfig:"S3_REGION" required:"true"`
	S3Bucket string `envconfig:"S3_BUCKET" required:"true"`

	RenormalizeSchedule string `envconfig:"RENORMALIZE_SCHEDULE" default:"@daily"`
}

// LLM enthält die Einstellungen des Modell-Providers. Die CLI lädt nur diesen Teil.
type LLM struct {
	// Modell-Provider: "openai" oder "gemini"
	LLMProvider   string        `envconfig:"LLM_PROVIDER" default:"openai"`
	LLMTimeout    time.Duration `envconfig:"LLM_TIMEOUT" default:"120s"`
	OpenAIAPIKey  string        `envconfig:"OPENAI_API_KEY"`
	OpenAIModel   string        `envconfig:"OPENAI_MODEL" default:"gpt-4o"`
	OpenAIBaseURL string        `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	GeminiAPIKey  string        `envconfig:"GEMINI_API_KEY"`
	GeminiModel   string        `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// Provider liefert den normalisierten Providernamen.
func (c *LLM) Provider() string {
	return strings.ToLower(strings.TrimSpace(c.LLMProvider))
}

// LLMCredential liefert den API-Key des gewählten Providers (leer, wenn nicht gesetzt).
func (c *LLM) LLMCredential() string {
	switch c.Provider() {
	case "gemini":
		return strings.TrimSpace(c.GeminiAPIKey)
	default:
		return strings.TrimSpace(c.OpenAIAPIKey)
	}
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}

// LoadLLM lädt nur die Provider-Einstellungen (ohne Datenbank und S3).
func LoadLLM() (*LLM, error) {
	_ = godotenv.Load()
	var c LLM
	err := envconfig.Process("", &c)
	return &c, err
}
