package config

import (
	"os"
	"strings"
)

// Environment represents the current runtime environment
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment determines the current environment.
// CI is detected automatically, a Lambda runtime counts as production,
// everything else comes from ENV and defaults to development.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}

	switch env := strings.ToLower(os.Getenv("ENV")); env {
	case "production", "prod":
		return Production
	case "test":
		return Test
	case "development", "dev":
		return Development
	}

	if IsLambda() {
		return Production
	}
	return Development
}

// IsLambda reports whether the process runs inside an AWS Lambda runtime
func IsLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}
