package server

// Metadata accompanies a successful summary response.
type Metadata struct {
	PreviousSummariesCount int    `json:"previousSummariesCount"`
	SavedToSheet           bool   `json:"savedToSheet"`
	SavedToGlide           *bool  `json:"savedToGlide,omitempty"`
	ExecutionTimeMs        int64  `json:"executionTimeMs"`
	Timestamp              string `json:"timestamp"`
}

// SummaryResponse is the success shape for /generate-summary.
type SummaryResponse struct {
	Success    bool     `json:"success"`
	ProjectID  string   `json:"projectId"`
	Summary    string   `json:"summary"`
	KeyChanges string   `json:"keyChanges,omitempty"`
	Metadata   Metadata `json:"metadata"`
}

// ClientErrorResponse is the 4xx shape.
type ClientErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Hint    string `json:"hint,omitempty"`
}

// ErrorMetadata accompanies server error responses.
type ErrorMetadata struct {
	ExecutionTimeMs int64  `json:"executionTimeMs"`
	Timestamp       string `json:"timestamp"`
}

// ServerErrorResponse is the 5xx shape.
type ServerErrorResponse struct {
	Success  bool           `json:"success"`
	Error    string         `json:"error"`
	Details  string         `json:"details,omitempty"`
	Metadata *ErrorMetadata `json:"metadata,omitempty"`
}

// HealthResponse is the shape for GET /health.
type HealthResponse struct {
	Status           string `json:"status"`
	SheetConnected   bool   `json:"sheetConnected"`
	GeminiConfigured bool   `json:"geminiConfigured"`
	GlideEnabled     bool   `json:"glideEnabled"`
	Version          string `json:"version"`
	Uptime           string `json:"uptime"`
}

// DocsResponse is the static documentation payload for GET /.
type DocsResponse struct {
	Service           string            `json:"service"`
	Version           string            `json:"version"`
	Endpoints         map[string]string `json:"endpoints"`
	IdentifierAliases []string          `json:"identifierAliases"`
}

// NotFoundResponse is the 404 shape listing available endpoints.
type NotFoundResponse struct {
	Success   bool     `json:"success"`
	Error     string   `json:"error"`
	Available []string `json:"availableEndpoints"`
}
