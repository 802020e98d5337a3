package types

import "time"

// ExtractionConfig holds settings for the extraction stage.
type ExtractionConfig struct {
	// DocumentsDir is the directory of tokenized input documents (*.yaml, *.json).
	DocumentsDir string `json:"documents_dir" yaml:"documents_dir" mapstructure:"documents_dir"`

	// KnowledgeDir is the base directory for extraction output (contains extracted/).
	KnowledgeDir string `json:"knowledge_dir" yaml:"knowledge_dir" mapstructure:"knowledge_dir"`

	// Properties restricts extraction to the listed registry keys. Empty means all.
	Properties []string `json:"properties,omitempty" yaml:"properties,omitempty" mapstructure:"properties"`

	// SkipTables disables heading/cell extraction from document tables.
	SkipTables bool `json:"skip_tables" yaml:"skip_tables" mapstructure:"skip_tables"`

	// Force re-extracts documents even when the output is newer than the input.
	Force bool `json:"force" yaml:"force" mapstructure:"force"`
}

// KnowledgeBaseConfig holds settings for the record store.
type KnowledgeBaseConfig struct {
	// KnowledgeDir is the base directory for knowledge (contains extracted/, index/).
	KnowledgeDir string `json:"knowledge_dir" yaml:"knowledge_dir" mapstructure:"knowledge_dir"`

	// DocumentsDir is where Trace looks up source documents.
	DocumentsDir string `json:"documents_dir" yaml:"documents_dir" mapstructure:"documents_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// ServerConfig holds settings for the HTTP extraction service.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// ReadTimeout bounds how long the server waits for a request body.
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`

	// WriteTimeout bounds how long a response may take.
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout"`

	// MaxTokens rejects requests whose documents exceed this many tokens (0 = unlimited).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`
}

// LogConfig selects log level and encoding.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is json or console (default console).
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Extraction    ExtractionConfig    `json:"extraction" yaml:"extraction" mapstructure:"extraction"`
	KnowledgeBase KnowledgeBaseConfig `json:"knowledge_base" yaml:"knowledge_base" mapstructure:"knowledge_base"`
	Server        ServerConfig        `json:"server" yaml:"server" mapstructure:"server"`
	Log           LogConfig           `json:"log" yaml:"log" mapstructure:"log"`
}
