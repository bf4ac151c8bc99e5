package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Chris-Obeng/talkflo-app1/internal/flagx"
	"github.com/Chris-Obeng/talkflo-app1/internal/timex"
)

// JsonConfig mirrors Config for file decoding. Durations go through
// timex.Duration so both "1m" and nanosecond integers are accepted.
type JsonConfig struct {
	HTTPAddr    string `json:"http_addr"`
	GRPCAddr    string `json:"grpc_addr"`
	DatabaseDSN string `json:"database_dsn"`
	LogFormat   string `json:"log_format"`

	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`

	S3RootUser     string         `json:"s3_root_user"`
	S3RootPassword string         `json:"s3_root_password"`
	S3Bucket       string         `json:"s3_bucket"`
	S3Region       string         `json:"s3_region"`
	S3BaseEndpoint string         `json:"s3_base_endpoint"`
	UploadURLTTL   timex.Duration `json:"upload_url_ttl"`

	OpenAIAPIKey       string `json:"openai_api_key"`
	OpenAIBaseURL      string `json:"openai_base_url"`
	TranscriptionModel string `json:"transcription_model"`
	ChatModel          string `json:"chat_model"`
	WorkerConcurrency  int    `json:"worker_concurrency"`

	WebhookSecret     string         `json:"webhook_secret"`
	WebhookTolerance  timex.Duration `json:"webhook_tolerance"`
	PaymentsAPIKey    string         `json:"payments_api_key"`
	PaymentsBaseURL   string         `json:"payments_base_url"`
	PaymentsReturnURL string         `json:"payments_return_url"`
	MonthlyPlanID     string         `json:"monthly_plan_id"`
	AnnualPlanID      string         `json:"annual_plan_id"`

	PublicBaseURL string   `json:"public_base_url"`
	CORSOrigins   []string `json:"cors_origins"`
	MaxBodyBytes  int64    `json:"max_body_bytes"`
}

func toJson(c *Config) *JsonConfig {
	return &JsonConfig{
		HTTPAddr:                     c.HTTPAddr,
		GRPCAddr:                     c.GRPCAddr,
		DatabaseDSN:                  c.DatabaseDSN,
		LogFormat:                    c.LogFormat,
		SecretKey:                    c.SecretKey,
		AccessTokenValidityDuration:  timex.Duration{Duration: c.AccessTokenValidityDuration},
		RefreshTokenValidityDuration: timex.Duration{Duration: c.RefreshTokenValidityDuration},
		S3RootUser:                   c.S3RootUser,
		S3RootPassword:               c.S3RootPassword,
		S3Bucket:                     c.S3Bucket,
		S3Region:                     c.S3Region,
		S3BaseEndpoint:               c.S3BaseEndpoint,
		UploadURLTTL:                 timex.Duration{Duration: c.UploadURLTTL},
		OpenAIAPIKey:                 c.OpenAIAPIKey,
		OpenAIBaseURL:                c.OpenAIBaseURL,
		TranscriptionModel:           c.TranscriptionModel,
		ChatModel:                    c.ChatModel,
		WorkerConcurrency:            c.WorkerConcurrency,
		WebhookSecret:                c.WebhookSecret,
		WebhookTolerance:             timex.Duration{Duration: c.WebhookTolerance},
		PaymentsAPIKey:               c.PaymentsAPIKey,
		PaymentsBaseURL:              c.PaymentsBaseURL,
		PaymentsReturnURL:            c.PaymentsReturnURL,
		MonthlyPlanID:                c.MonthlyPlanID,
		AnnualPlanID:                 c.AnnualPlanID,
		PublicBaseURL:                c.PublicBaseURL,
		CORSOrigins:                  c.CORSOrigins,
		MaxBodyBytes:                 c.MaxBodyBytes,
	}
}

func (j *JsonConfig) apply(c *Config) {
	c.HTTPAddr = j.HTTPAddr
	c.GRPCAddr = j.GRPCAddr
	c.DatabaseDSN = j.DatabaseDSN
	c.LogFormat = j.LogFormat
	c.SecretKey = j.SecretKey
	c.AccessTokenValidityDuration = j.AccessTokenValidityDuration.Duration
	c.RefreshTokenValidityDuration = j.RefreshTokenValidityDuration.Duration
	c.S3RootUser = j.S3RootUser
	c.S3RootPassword = j.S3RootPassword
	c.S3Bucket = j.S3Bucket
	c.S3Region = j.S3Region
	c.S3BaseEndpoint = j.S3BaseEndpoint
	c.UploadURLTTL = j.UploadURLTTL.Duration
	c.OpenAIAPIKey = j.OpenAIAPIKey
	c.OpenAIBaseURL = j.OpenAIBaseURL
	c.TranscriptionModel = j.TranscriptionModel
	c.ChatModel = j.ChatModel
	c.WorkerConcurrency = j.WorkerConcurrency
	c.WebhookSecret = j.WebhookSecret
	c.WebhookTolerance = j.WebhookTolerance.Duration
	c.PaymentsAPIKey = j.PaymentsAPIKey
	c.PaymentsBaseURL = j.PaymentsBaseURL
	c.PaymentsReturnURL = j.PaymentsReturnURL
	c.MonthlyPlanID = j.MonthlyPlanID
	c.AnnualPlanID = j.AnnualPlanID
	c.PublicBaseURL = j.PublicBaseURL
	c.CORSOrigins = j.CORSOrigins
	c.MaxBodyBytes = j.MaxBodyBytes
}

// parseJson overlays the file named by -c/--config onto config. Keys absent
// from the file keep their current values.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := toJson(config)
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	c.apply(config)
	return nil
}
