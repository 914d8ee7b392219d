package config

import (
	"os"
)

// Config holds all configuration for the application
type Config struct {
	Port             string
	TableName        string
	VideoBucket      string
	AllowedOrigin    string
	DynamoDBEndpoint string
	AWSRegion        string
	AWSAccessKey     string
	AWSSecretKey     string
	LogLevel         string

	// WAF blocker Lambda only
	IPSetID    string
	IPSetName  string
	IPSetScope string
}

// Load reads configuration from environment variables.
// DYNAMODB_ENDPOINT is only set when targeting DynamoDB Local; when empty
// the default AWS credential chain and endpoints are used.
func Load() *Config {
	return &Config{
		Port:             getEnv("PORT", "8080"),
		TableName:        getEnv("TABLE_NAME", "LocalTable"),
		VideoBucket:      getEnv("VIDEO_BUCKET", ""),
		AllowedOrigin:    getEnv("ALLOWED_ORIGIN", "*"),
		DynamoDBEndpoint: getEnv("DYNAMODB_ENDPOINT", ""),
		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKey:     getEnv("AWS_ACCESS_KEY_ID", "dummy"),
		AWSSecretKey:     getEnv("AWS_SECRET_ACCESS_KEY", "dummy"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		IPSetID:          getEnv("IPSET_ID", ""),
		IPSetName:        getEnv("IPSET_NAME", ""),
		IPSetScope:       getEnv("IPSET_SCOPE", "REGIONAL"),
	}
}

// getEnv reads an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
