package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "statute-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Catalog is the path to the source catalog YAML.
	Catalog string `json:"catalog" yaml:"catalog"`

	// DownloadDelay is the delay between consecutive downloads (default 1s).
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`

	// DocumentsDir is the base directory for documents (contains txt/, pdf/, json/, meta/).
	DocumentsDir string `json:"documents_dir" yaml:"documents_dir"`
}

// ConvertConfig holds settings for the convert stage.
type ConvertConfig struct {
	// DocumentsDir is the base directory for documents (contains txt/, pdf/, json/, meta/).
	DocumentsDir string `json:"documents_dir" yaml:"documents_dir"`

	// PDFImage is the container image used to extract text from PDF input.
	PDFImage string `json:"pdf_image" yaml:"pdf_image"`
}

// ComposeConfig holds settings for the compose stage.
type ComposeConfig struct {
	// InputsDir is the directory composite outputs are written to.
	InputsDir string `json:"inputs_dir" yaml:"inputs_dir"`
}

// IndexConfig holds settings for the statute index.
type IndexConfig struct {
	// IndexDir is the directory holding the SQLite database and exports.
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// DocumentsDir is the base directory for documents (contains json/).
	DocumentsDir string `json:"documents_dir" yaml:"documents_dir"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "gemma3:4b").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// GradeConfig holds settings for the grade stage.
type GradeConfig struct {
	AIConfig `yaml:",inline"`

	// Backend selects the judge backend: "ollama" or "claude".
	Backend string `json:"backend" yaml:"backend"`

	// BaseURL is the ollama server base URL (default "http://localhost:11434").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// RequestDelay is the delay between consecutive judge calls (default 500ms).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`

	// TestsetsDir is the directory testsets are read from and generated into.
	TestsetsDir string `json:"testsets_dir" yaml:"testsets_dir"`

	// ReportsDir is the directory grading reports are written to.
	ReportsDir string `json:"reports_dir" yaml:"reports_dir"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Fetch   FetchConfig   `json:"fetch" yaml:"fetch"`
	Convert ConvertConfig `json:"convert" yaml:"convert"`
	Compose ComposeConfig `json:"compose" yaml:"compose"`
	Index   IndexConfig   `json:"index" yaml:"index"`
	Grade   GradeConfig   `json:"grade" yaml:"grade"`
}
