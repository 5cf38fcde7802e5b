package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Keys     APIKeys
	Ai       AIConfig
	Billing  BillingConfig
	Voice    VoiceConfig
	Ops      OpsConfig
}

type AppConfig struct {
	Port               string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type APIKeys struct {
	Anthropic  string
	OpenRouter string
	Deepgram   string
}

type AIConfig struct {
	Provider      string // "claude" or "openrouter"
	Model         string // e.g. "claude-3-5-sonnet-latest", "meta-llama/llama-3.3-70b-instruct"
	OpenRouterURL string
}

type BillingConfig struct {
	FastSpringSecret string
	PaddleSecret     string
	MailerLiteSecret string
	GracePeriodDays  int
}

type VoiceConfig struct {
	SttModel string
	TtsVoice string
}

type OpsConfig struct {
	ServiceToken    string // Shared secret guarding /api/ops endpoints
	AlertWebhookURL string // Downstream Slack-style webhook for alert-proxy
	RetryTopic      string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/atlas.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Atlas"),
		},
		Keys: APIKeys{
			Anthropic:  getEnv("ANTHROPIC_API_KEY", ""),
			OpenRouter: getEnv("OPENROUTER_API_KEY", ""),
			Deepgram:   getEnv("DEEPGRAM_API_KEY", ""),
		},
		Ai: AIConfig{
			Provider:      getEnv("LLM_PROVIDER", "claude"),
			Model:         getEnv("LLM_MODEL", "claude-3-5-sonnet-latest"),
			OpenRouterURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		},
		Billing: BillingConfig{
			FastSpringSecret: getEnv("FASTSPRING_WEBHOOK_SECRET", ""),
			PaddleSecret:     getEnv("PADDLE_WEBHOOK_SECRET", ""),
			MailerLiteSecret: getEnv("MAILERLITE_SIGNING_SECRET", ""),
			GracePeriodDays:  getEnvAsInt("BILLING_GRACE_PERIOD_DAYS", 7),
		},
		Voice: VoiceConfig{
			SttModel: getEnv("DEEPGRAM_STT_MODEL", "nova-2"),
			TtsVoice: getEnv("DEEPGRAM_TTS_VOICE", "aura-asteria-en"),
		},
		Ops: OpsConfig{
			ServiceToken:    getEnv("ATLAS_SERVICE_TOKEN", ""),
			AlertWebhookURL: getEnv("ALERT_WEBHOOK_URL", ""),
			RetryTopic:      getEnv("RETRY_UPLOADS_TOPIC_NAME", "RETRY_FAILED_UPLOADS"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
