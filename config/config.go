// ABOUTME: Environment-driven configuration for the bridge
// ABOUTME: Loads .env via godotenv, applies hardcoded fallback defaults
package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

// Config carries every external endpoint and credential the bridge consumes.
// Values are plain strings with presence checks only; no schema validation.
type Config struct {
	// Cross-system endpoints
	CRMAPIURL        string
	CRMSyncKey       string
	ChronusDevAPIURL string

	// Storage
	DBPath    string
	CachePath string

	// System-wide SMTP fallback (lowest precedence in transport resolution)
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	// WhatsApp gateway
	WhatsAppAPIURL       string
	WhatsAppToken        string
	WhatsAppClientID     string
	WhatsAppClientSecret string
	WhatsAppTokenURL     string

	// Voice call API
	VoiceAPIURL  string
	VoiceAPIKey  string
	VoiceAgentID string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; missing files are not an error.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		CRMAPIURL:        getEnv("CRM_API_URL", "http://localhost:3000"),
		CRMSyncKey:       getEnv("CRM_SYNC_KEY", "dev-sync-key"),
		ChronusDevAPIURL: getEnv("CHRONUSDEV_API_URL", "http://localhost:4000"),

		DBPath:    getEnv("BRIDGE_DB_PATH", filepath.Join(xdg.DataHome, "chronusdev", "bridge.db")),
		CachePath: getEnv("BRIDGE_CACHE_PATH", filepath.Join(xdg.CacheHome, "chronusdev", "bridge-cache")),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getEnv("SMTP_PORT", "587"),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: getEnv("SMTP_FROM", "no-reply@chronusdev.local"),

		WhatsAppAPIURL:       os.Getenv("WHATSAPP_API_URL"),
		WhatsAppToken:        os.Getenv("WHATSAPP_TOKEN"),
		WhatsAppClientID:     os.Getenv("WHATSAPP_CLIENT_ID"),
		WhatsAppClientSecret: os.Getenv("WHATSAPP_CLIENT_SECRET"),
		WhatsAppTokenURL:     os.Getenv("WHATSAPP_TOKEN_URL"),

		VoiceAPIURL:  os.Getenv("VOICE_API_URL"),
		VoiceAPIKey:  os.Getenv("VOICE_API_KEY"),
		VoiceAgentID: os.Getenv("VOICE_AGENT_ID"),
	}
}

// HasSMTP reports whether the process-level SMTP fallback is configured.
func (c *Config) HasSMTP() bool {
	return c.SMTPHost != ""
}

// HasWhatsApp reports whether the WhatsApp gateway is configured.
func (c *Config) HasWhatsApp() bool {
	return c.WhatsAppAPIURL != ""
}

// HasVoice reports whether the outbound call API is configured.
func (c *Config) HasVoice() bool {
	return c.VoiceAPIURL != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
