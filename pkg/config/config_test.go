package config

import (
	"os"
	"testing"
)

func TestLoad_DefaultValues(t *testing.T) {
	keys := []string{
		"PORT", "TABLE_NAME", "VIDEO_BUCKET", "ALLOWED_ORIGIN",
		"DYNAMODB_ENDPOINT", "AWS_REGION", "AWS_ACCESS_KEY_ID",
		"AWS_SECRET_ACCESS_KEY", "LOG_LEVEL",
		"IPSET_ID", "IPSET_NAME", "IPSET_SCOPE",
	}
	for _, k := range keys {
		os.Unsetenv(k)
	}

	cfg := Load()

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"Port", cfg.Port, "8080"},
		{"TableName", cfg.TableName, "LocalTable"},
		{"VideoBucket", cfg.VideoBucket, ""},
		{"AllowedOrigin", cfg.AllowedOrigin, "*"},
		{"DynamoDBEndpoint", cfg.DynamoDBEndpoint, ""},
		{"AWSRegion", cfg.AWSRegion, "us-east-1"},
		{"AWSAccessKey", cfg.AWSAccessKey, "dummy"},
		{"AWSSecretKey", cfg.AWSSecretKey, "dummy"},
		{"LogLevel", cfg.LogLevel, "info"},
		{"IPSetID", cfg.IPSetID, ""},
		{"IPSetName", cfg.IPSetName, ""},
		{"IPSetScope", cfg.IPSetScope, "REGIONAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.expected)
			}
		})
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("TABLE_NAME", "CourseTable")
	t.Setenv("VIDEO_BUCKET", "course-videos")
	t.Setenv("ALLOWED_ORIGIN", "https://example.cloudfront.net")
	t.Setenv("DYNAMODB_ENDPOINT", "http://dynamodb:8000")
	t.Setenv("AWS_REGION", "ap-northeast-1")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("IPSET_ID", "abc-123")
	t.Setenv("IPSET_NAME", "blocked-ips")
	t.Setenv("IPSET_SCOPE", "CLOUDFRONT")

	cfg := Load()

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"Port", cfg.Port, "9000"},
		{"TableName", cfg.TableName, "CourseTable"},
		{"VideoBucket", cfg.VideoBucket, "course-videos"},
		{"AllowedOrigin", cfg.AllowedOrigin, "https://example.cloudfront.net"},
		{"DynamoDBEndpoint", cfg.DynamoDBEndpoint, "http://dynamodb:8000"},
		{"AWSRegion", cfg.AWSRegion, "ap-northeast-1"},
		{"LogLevel", cfg.LogLevel, "debug"},
		{"IPSetID", cfg.IPSetID, "abc-123"},
		{"IPSetName", cfg.IPSetName, "blocked-ips"},
		{"IPSetScope", cfg.IPSetScope, "CLOUDFRONT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.expected)
			}
		})
	}
}
