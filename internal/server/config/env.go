package config

import (
	"os"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config values from environment variables. A .env file in
// the working directory is loaded first, if present; real environment
// variables take precedence over it, per godotenv semantics.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	config.EndpointAddrHTTP = getEnv("DOCSNAP_ADDR", config.EndpointAddrHTTP)
	config.DatabaseDSN = getEnv("DOCSNAP_DATABASE_DSN", config.DatabaseDSN)
	config.S3RootUser = getEnv("DOCSNAP_S3_USER", config.S3RootUser)
	config.S3RootPassword = getEnv("DOCSNAP_S3_PASSWORD", config.S3RootPassword)
	config.S3Bucket = getEnv("DOCSNAP_S3_BUCKET", config.S3Bucket)
	config.S3Region = getEnv("DOCSNAP_S3_REGION", config.S3Region)
	config.S3BaseEndpoint = getEnv("DOCSNAP_S3_ENDPOINT", config.S3BaseEndpoint)
	config.PublicBaseURL = getEnv("DOCSNAP_PUBLIC_BASE_URL", config.PublicBaseURL)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
