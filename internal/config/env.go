package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Vector store backends selectable at startup. The core logic is identical
// against either; see internal/core/vectorstore.
const (
	VectorStoreEmbedded = "embedded"
	VectorStorePgvector = "pgvector"
)

// Dispatch modes for background conversion work.
const (
	DispatchLocal  = "local"
	DispatchLambda = "lambda"
)

type Config struct {
	DatabaseURL  string
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string

	// StagingBucket receives raw uploads; FinalBucket holds the normalized
	// PDF artifacts the ingestion pipeline reads from.
	StagingBucket string
	FinalBucket   string

	AIAPIKey   string
	EmbedModel string
	GenModel   string

	VectorStore       string
	EmbeddedStorePath string

	DispatchMode    string
	ConvertFunction string
	CallbackURL     string
	InternalAPIKey  string

	Port  string
	Debug bool
}

// LoadConfig loads the environment variables and returns the config.
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),

		StagingBucket: getEnv("STAGING_BUCKET_NAME", "askbase-staging"),
		FinalBucket:   getEnv("FINAL_BUCKET_NAME", "askbase-docs"),

		AIAPIKey:   getEnv("GEMINI_API_KEY", ""),
		EmbedModel: getEnv("EMBED_MODEL", "text-embedding-004"),
		GenModel:   getEnv("GEN_MODEL", "gemini-1.5-flash"),

		VectorStore:       getEnv("VECTOR_STORE", VectorStoreEmbedded),
		EmbeddedStorePath: getEnv("EMBEDDED_STORE_PATH", "./chroma"),

		DispatchMode:    getEnv("DISPATCH_MODE", DispatchLocal),
		ConvertFunction: getEnv("CONVERT_FUNCTION_NAME", "askbase-file-upload-processor"),
		CallbackURL:     getEnv("CALLBACK_URL", "http://localhost:8080/api/v1/internal/files/processed"),
		InternalAPIKey:  getEnv("INTERNAL_API_KEY", ""),

		Port:  getEnv("PORT", "8080"),
		Debug: getEnvBool("DEBUG", false),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	if cfg.VectorStore != VectorStoreEmbedded && cfg.VectorStore != VectorStorePgvector {
		log.Fatalf("VECTOR_STORE=%q is not one of %q, %q", cfg.VectorStore, VectorStoreEmbedded, VectorStorePgvector)
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvBool(key string, def bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("WARN: %s=%q not a bool, using default %t", key, v, def)
		return def
	}
	return b
}
