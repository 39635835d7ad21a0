package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	Port        string
	CORSOrigins []string

	GCP    GCPConfig
	Speech SpeechConfig

	ProfessionsFile string
	ResumeMaxBytes  int64

	SessionIdleTTL         time.Duration
	HistoryWorkers         int
	DiscardOnUnexpectedEnd bool
}

type GCPConfig struct {
	ProjectID       string
	Location        string
	Model           string
	CredentialsFile string
	Bucket          string // empty disables resume archiving
}

type SpeechConfig struct {
	Enabled      bool
	Language     string
	SampleRateHz int32
}

func LoadApp() *AppConfig {
	return &AppConfig{
		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"*"}),
		GCP: GCPConfig{
			ProjectID:       getEnv("GCP_PROJECT_ID", ""),
			Location:        getEnv("GCP_LOCATION", "us-central1"),
			Model:           getEnv("VERTEX_MODEL", "gemini-1.5-flash"),
			CredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
			Bucket:          getEnv("GCS_BUCKET", ""),
		},
		Speech: SpeechConfig{
			Enabled:      getEnvAsBool("SPEECH_ENABLED", true),
			Language:     getEnv("SPEECH_LANGUAGE", "en-US"),
			SampleRateHz: int32(getEnvAsInt("SPEECH_SAMPLE_RATE_HZ", 16000)),
		},
		ProfessionsFile:        getEnv("PROFESSIONS_FILE", ""),
		ResumeMaxBytes:         int64(getEnvAsInt("RESUME_MAX_BYTES", 10<<20)),
		SessionIdleTTL:         getEnvAsDuration("SESSION_IDLE_TTL", 2*time.Hour),
		HistoryWorkers:         getEnvAsInt("HISTORY_WORKERS", 2),
		DiscardOnUnexpectedEnd: getEnvAsBool("SPEECH_DISCARD_ON_UNEXPECTED_END", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
