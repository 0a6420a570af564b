package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"outreach-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	LogLevel        string
	CORSAllowOrigin []string
	DatabaseURL     string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	LLMProvider string
	LLMAPIKey   string
	LLMBaseURL  string
	LLMModel    string
	LLMTimeout  time.Duration

	AuthMode        string
	AuthJWTSecret   string
	AuthUserinfoURL string
	AuthAPIKey      string
	AdminUserIDs    []string

	ProfileAutoProvision bool
	FreeCredits          int

	RateLimitGeneratePerMin float64
	RateLimitGenerateBurst  int
}

const (
	AuthModeJWT    = "jwt"
	AuthModeRemote = "remote"

	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

const devJWTSecret = "dev-secret"

// Load reads configuration from the environment, an optional outreach.yaml and .env files.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")
	return LoadFrom(viper.New())
}

// LoadFrom reads configuration through v, so callers may bind flags first.
func LoadFrom(v *viper.Viper) Config {
	setDefaults(v)
	v.SetConfigName("outreach")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			telemetry.Warn("config.file_unreadable", map[string]any{"error": err})
		}
	}
	v.AutomaticEnv()
	_ = v.BindEnv("llm_api_key", "LLM_API_KEY", "OPENAI_API_KEY", "LOVABLE_API_KEY", "GEMINI_API_KEY")

	env := normalizeEnv(v.GetString("env"))
	provider := strings.ToLower(strings.TrimSpace(v.GetString("llm_provider")))
	model := strings.TrimSpace(v.GetString("llm_model"))
	if model == "" {
		model = defaultModel(provider)
	}

	secret := strings.TrimSpace(v.GetString("auth_jwt_secret"))
	if secret == "" && env != "production" {
		secret = devJWTSecret
	}

	return Config{
		Port:                    v.GetString("port"),
		Env:                     env,
		LogLevel:                v.GetString("log_level"),
		CORSAllowOrigin:         splitAndTrim(v.GetString("cors_allow_origins")),
		DatabaseURL:             strings.TrimSpace(v.GetString("database_url")),
		ObjectStoreType:         normalizeStoreType(v.GetString("object_store")),
		LocalStoreDir:           v.GetString("local_store_dir"),
		AWSRegion:               v.GetString("aws_region"),
		S3Bucket:                v.GetString("s3_bucket"),
		S3Prefix:                v.GetString("s3_prefix"),
		SSEKMSKeyID:             v.GetString("sse_kms_key_id"),
		LLMProvider:             provider,
		LLMAPIKey:               strings.TrimSpace(v.GetString("llm_api_key")),
		LLMBaseURL:              strings.TrimSpace(v.GetString("llm_base_url")),
		LLMModel:                model,
		LLMTimeout:              v.GetDuration("llm_timeout"),
		AuthMode:                strings.ToLower(strings.TrimSpace(v.GetString("auth_mode"))),
		AuthJWTSecret:           secret,
		AuthUserinfoURL:         strings.TrimSpace(v.GetString("auth_userinfo_url")),
		AuthAPIKey:              strings.TrimSpace(v.GetString("auth_api_key")),
		AdminUserIDs:            splitAndTrim(v.GetString("admin_user_ids")),
		ProfileAutoProvision:    v.GetBool("profile_auto_provision"),
		FreeCredits:             v.GetInt("free_credits"),
		RateLimitGeneratePerMin: v.GetFloat64("rate_limit_generate_per_min"),
		RateLimitGenerateBurst:  v.GetInt("rate_limit_generate_burst"),
	}
}

// Validate reports every setting that would keep the server from working.
func (c Config) Validate() error {
	var errs []error
	if c.Env == "production" && c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required in production"))
	}
	switch c.LLMProvider {
	case ProviderOpenAI, ProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("LLM_PROVIDER %q is not supported", c.LLMProvider))
	}
	if c.LLMAPIKey == "" {
		errs = append(errs, errors.New("LLM_API_KEY is not configured"))
	}
	if c.LLMTimeout <= 0 {
		errs = append(errs, errors.New("LLM_TIMEOUT must be positive"))
	}
	switch c.AuthMode {
	case AuthModeJWT:
		if c.AuthJWTSecret == "" {
			errs = append(errs, errors.New("AUTH_JWT_SECRET is required"))
		}
	case AuthModeRemote:
		if c.AuthUserinfoURL == "" {
			errs = append(errs, errors.New("AUTH_USERINFO_URL is required when AUTH_MODE=remote"))
		}
	default:
		errs = append(errs, fmt.Errorf("AUTH_MODE %q is not supported", c.AuthMode))
	}
	if c.ObjectStoreType == "s3" && strings.TrimSpace(c.S3Bucket) == "" {
		errs = append(errs, errors.New("OBJECT_STORE=s3 requires S3_BUCKET"))
	}
	if c.FreeCredits < 0 {
		errs = append(errs, errors.New("FREE_CREDITS must not be negative"))
	}
	return errors.Join(errs...)
}

// IsDevLike reports whether the environment tolerates in-memory fallbacks.
func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "local"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("env", "dev")
	v.SetDefault("log_level", "info")
	v.SetDefault("cors_allow_origins", "*")
	v.SetDefault("object_store", "local")
	v.SetDefault("local_store_dir", "./data")
	v.SetDefault("llm_provider", ProviderOpenAI)
	v.SetDefault("llm_base_url", "https://ai.gateway.lovable.dev/v1")
	v.SetDefault("llm_timeout", 120*time.Second)
	v.SetDefault("auth_mode", AuthModeJWT)
	v.SetDefault("profile_auto_provision", false)
	v.SetDefault("free_credits", 3)
	v.SetDefault("rate_limit_generate_per_min", 10)
	v.SetDefault("rate_limit_generate_burst", 5)
}

func defaultModel(provider string) string {
	if provider == ProviderGemini {
		return "gemini-2.5-flash"
	}
	return "google/gemini-3-flash-preview"
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
