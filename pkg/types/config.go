package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paperminer/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// Device selects the compute device MinerU runs on.
type Device string

const (
	DeviceCUDA Device = "cuda"
	DeviceCPU  Device = "cpu"
)

// MinerUConfig holds settings for the MinerU conversion stage.
type MinerUConfig struct {
	// Device selects cuda or cpu for the MinerU run.
	Device Device `json:"device" yaml:"device"`

	// RawDir is the directory MinerU writes its per-document output to
	// (contains <name>/auto/).
	RawDir string `json:"raw_dir" yaml:"raw_dir"`

	// Timeout bounds a single MinerU run (default 60m).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// AssetsConfig toggles which asset families the organizer extracts.
type AssetsConfig struct {
	// Text controls whether the document Markdown is copied and its image
	// references rewritten.
	Text bool `json:"text" yaml:"text"`

	// Figures controls extraction of figure images to Figure/.
	Figures bool `json:"figures" yaml:"figures"`

	// Tables controls extraction of table images and Markdown to Tables/.
	Tables bool `json:"tables" yaml:"tables"`

	// Formulas controls extraction of formula images to Formula/.
	Formulas bool `json:"formulas" yaml:"formulas"`

	// Index controls writing the figure/table index document.
	Index bool `json:"index" yaml:"index"`
}

// SectionsConfig holds settings for the section extraction engine.
type SectionsConfig struct {
	HTTPConfig `yaml:",inline"`

	// Model is the completion model identifier (default "deepseek-chat").
	Model string `json:"model" yaml:"model"`

	// APIKey authenticates against the completion endpoint. Empty means
	// regex-only mode: repair is skipped, never an error.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Endpoint is the chat-completions URL (default Deepseek's).
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// MinContentChars is the minimum trimmed body length before a section
	// is flagged content-too-short (default 100).
	MinContentChars int `json:"min_content_chars" yaml:"min_content_chars"`

	// MinSectionCount is the minimum number of resolved sections before
	// the result is flagged section-count-low (default 2).
	MinSectionCount int `json:"min_section_count" yaml:"min_section_count"`

	// MaxPromptChars bounds the document text sent to the model; longer
	// documents are truncated at the nearest sentence boundary
	// (default 100000).
	MaxPromptChars int `json:"max_prompt_chars" yaml:"max_prompt_chars"`

	// MaxTokens caps the completion length (default 16000).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// WithDefaults fills unset SectionsConfig fields with their defaults.
func (c SectionsConfig) WithDefaults() SectionsConfig {
	if c.Model == "" {
		c.Model = "deepseek-chat"
	}
	if c.Endpoint == "" {
		c.Endpoint = "https://api.deepseek.com/v1/chat/completions"
	}
	if c.MinContentChars <= 0 {
		c.MinContentChars = 100
	}
	if c.MinSectionCount <= 0 {
		c.MinSectionCount = 2
	}
	if c.MaxPromptChars <= 0 {
		c.MaxPromptChars = 100000
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 16000
	}
	if c.Timeout <= 0 {
		c.Timeout = 120 * time.Second
	}
	return c
}

// LedgerConfig holds settings for the processing ledger.
type LedgerConfig struct {
	// Path is the SQLite database file (default "output/paperminer.db").
	Path string `json:"path" yaml:"path"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	MinerU MinerUConfig `json:"mineru" yaml:"mineru"`
	Assets AssetsConfig `json:"assets" yaml:"assets"`

	// ExtractDir is the directory organized per-document output is written
	// to (contains <name>/{Figure,Tables,Formula,Sections}/).
	ExtractDir string `json:"extract_dir" yaml:"extract_dir"`

	Sections SectionsConfig `json:"sections" yaml:"sections"`
	Ledger   LedgerConfig   `json:"ledger" yaml:"ledger"`
}
