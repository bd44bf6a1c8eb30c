package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rohankatakam/dppgraph/internal/errors"
)

// ValidationContext specifies what configuration is required
type ValidationContext string

const (
	// ValidationContextServe - HTTP and MCP servers require Neo4j
	ValidationContextServe ValidationContext = "serve"
	// ValidationContextImport - the EPD importer writes to Neo4j
	ValidationContextImport ValidationContext = "import"
	// ValidationContextQuery - raw query execution requires Neo4j
	ValidationContextQuery ValidationContext = "query"
)

// ValidationResult holds validation results
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// AddError adds an error to the validation result
func (vr *ValidationResult) AddError(format string, args ...interface{}) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, fmt.Sprintf(format, args...))
}

// AddWarning adds a warning to the validation result
func (vr *ValidationResult) AddWarning(format string, args ...interface{}) {
	vr.Warnings = append(vr.Warnings, fmt.Sprintf(format, args...))
}

// HasErrors returns true if there are any errors
func (vr *ValidationResult) HasErrors() bool {
	return !vr.Valid || len(vr.Errors) > 0
}

// Error returns a formatted error message
func (vr *ValidationResult) Error() string {
	if !vr.HasErrors() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")
	for _, err := range vr.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err))
	}
	return sb.String()
}

// Validate checks the configuration required by the given context
func (c *Config) Validate(ctx ValidationContext) *ValidationResult {
	result := &ValidationResult{Valid: true}

	switch ctx {
	case ValidationContextServe:
		c.validateNeo4j(result)
		c.validateLLM(result)
	case ValidationContextImport:
		c.validateNeo4j(result)
		if c.EC3.APIKey == "" {
			result.AddWarning("EC3_API_KEY is not set, the importer will use fixture products")
		}
	case ValidationContextQuery:
		c.validateNeo4j(result)
	}

	return result
}

// Require validates the context and returns a configuration error if anything required is missing
func (c *Config) Require(ctx ValidationContext) error {
	result := c.Validate(ctx)
	if result.HasErrors() {
		return errors.ConfigError(strings.TrimSpace(result.Error()))
	}
	return nil
}

func (c *Config) validateNeo4j(result *ValidationResult) {
	if c.Neo4j.URI == "" {
		result.AddError("NEO4J_URI is required but not set")
	} else if u, err := url.Parse(c.Neo4j.URI); err != nil || u.Scheme == "" {
		result.AddError("NEO4J_URI is invalid: %q", c.Neo4j.URI)
	}

	if c.Neo4j.User == "" {
		result.AddError("NEO4J_USER is required but not set")
	}

	if c.Neo4j.Password == "" {
		result.AddError("NEO4J_PASSWORD is required but not set. Set it via environment variable or .env file.")
	} else if c.Neo4j.Password == "password" || c.Neo4j.Password == "neo4j" {
		result.AddWarning("NEO4J_PASSWORD is set to a very common password")
	}

	if c.Neo4j.Database == "" {
		result.AddWarning("NEO4J_DATABASE is not set, will use 'neo4j' as default")
	}
}

func (c *Config) validateLLM(result *ValidationResult) {
	switch c.LLM.Provider {
	case "openai":
		if c.LLM.OpenAIKey == "" {
			result.AddWarning("OPENAI_API_KEY is not set, the chat assistant is disabled")
		}
	case "gemini":
		if c.LLM.GeminiKey == "" {
			result.AddWarning("GEMINI_API_KEY is not set, the chat assistant is disabled")
		}
	case "", "none":
	default:
		result.AddWarning("unknown LLM_PROVIDER %q, the chat assistant is disabled", c.LLM.Provider)
	}
}
