// Package constants defines global constants used throughout auditdeck.
package constants

// ProjectName is the canonical name of the CLI binary.
const ProjectName = "auditdeck"

// Version is set at build time via -ldflags. Defaults to "dev" for local builds.
var Version = "dev"

// GetVersion returns the current version string.
func GetVersion() *string {
	return &Version
}

// Environment represents the runtime environment of the process.
type Environment string

const (
	// CLI is an interactive terminal session
	CLI Environment = "cli"
	// Production is a non-interactive deployment (JSON logs)
	Production Environment = "production"
)

// ContentTypeHeader is the standard HTTP content type header name.
const ContentTypeHeader = "Content-Type"

// APIKeyHeader carries the operator's API key on orchestrator requests.
const APIKeyHeader = "X-Api-Key"

// HTTPStatusBadRequest is the lowest status code treated as an API error.
const HTTPStatusBadRequest = 400
