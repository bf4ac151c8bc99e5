package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "TALKFLO"

// parseEnv overlays TALKFLO_<KEY> variables, where KEY is the upper-cased
// JSON key (TALKFLO_DATABASE_DSN, TALKFLO_UPLOAD_URL_TTL, ...). Unset
// variables leave config untouched.
func parseEnv(config *Config) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)

	str := func(key string, dst *string) {
		_ = v.BindEnv(key)
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	dur := func(key string, dst *time.Duration) {
		_ = v.BindEnv(key)
		if v.IsSet(key) {
			*dst = v.GetDuration(key)
		}
	}

	str("http_addr", &config.HTTPAddr)
	str("grpc_addr", &config.GRPCAddr)
	str("database_dsn", &config.DatabaseDSN)
	str("log_format", &config.LogFormat)
	str("secret_key", &config.SecretKey)
	str("s3_root_user", &config.S3RootUser)
	str("s3_root_password", &config.S3RootPassword)
	str("s3_bucket", &config.S3Bucket)
	str("s3_region", &config.S3Region)
	str("s3_base_endpoint", &config.S3BaseEndpoint)
	str("openai_api_key", &config.OpenAIAPIKey)
	str("openai_base_url", &config.OpenAIBaseURL)
	str("transcription_model", &config.TranscriptionModel)
	str("chat_model", &config.ChatModel)
	str("webhook_secret", &config.WebhookSecret)
	str("payments_api_key", &config.PaymentsAPIKey)
	str("payments_base_url", &config.PaymentsBaseURL)
	str("payments_return_url", &config.PaymentsReturnURL)
	str("monthly_plan_id", &config.MonthlyPlanID)
	str("annual_plan_id", &config.AnnualPlanID)
	str("public_base_url", &config.PublicBaseURL)

	dur("access_token_validity_duration", &config.AccessTokenValidityDuration)
	dur("refresh_token_validity_duration", &config.RefreshTokenValidityDuration)
	dur("upload_url_ttl", &config.UploadURLTTL)
	dur("webhook_tolerance", &config.WebhookTolerance)

	_ = v.BindEnv("worker_concurrency")
	if v.IsSet("worker_concurrency") {
		config.WorkerConcurrency = v.GetInt("worker_concurrency")
	}
	_ = v.BindEnv("max_body_bytes")
	if v.IsSet("max_body_bytes") {
		config.MaxBodyBytes = v.GetInt64("max_body_bytes")
	}
	_ = v.BindEnv("cors_origins")
	if v.IsSet("cors_origins") {
		config.CORSOrigins = splitList(v.GetString("cors_origins"))
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
