package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rohankatakam/replygraph/internal/errors"
	"github.com/rohankatakam/replygraph/internal/network"
)

// ValidationContext specifies what configuration is required
type ValidationContext string

const (
	// ValidationContextBuild - building graphs needs a readable corpus
	ValidationContextBuild ValidationContext = "build"
	// ValidationContextSample - the sample needs a corpus and two distinct conversations
	ValidationContextSample ValidationContext = "sample"
	// ValidationContextPublish - publishing also needs Neo4j
	ValidationContextPublish ValidationContext = "publish"
	// ValidationContextNeo4j - run maintenance needs Neo4j only
	ValidationContextNeo4j ValidationContext = "neo4j"
	// ValidationContextAll - validate all configuration
	ValidationContextAll ValidationContext = "all"
)

// ValidationResult holds validation results
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// AddError adds an error to the validation result
func (vr *ValidationResult) AddError(format string, args ...any) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, fmt.Sprintf(format, args...))
}

// AddWarning adds a warning to the validation result
func (vr *ValidationResult) AddWarning(format string, args ...any) {
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
	sb.WriteString("Configuration validation failed:\n")
	for _, err := range vr.Errors {
		sb.WriteString(fmt.Sprintf("  ❌ %s\n", err))
	}

	if len(vr.Warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		for _, warn := range vr.Warnings {
			sb.WriteString(fmt.Sprintf("  ⚠️  %s\n", warn))
		}
	}

	return sb.String()
}

// Err returns the result as a config error, or nil when valid
func (vr *ValidationResult) Err() error {
	if !vr.HasErrors() {
		return nil
	}
	return errors.ConfigErrorf("%s", strings.Join(vr.Errors, "; "))
}

// Validate validates configuration for the given context
func (c *Config) Validate(ctx ValidationContext) *ValidationResult {
	result := &ValidationResult{Valid: true}

	switch ctx {
	case ValidationContextBuild:
		c.validateCorpus(result)
		c.validateGraph(result)
	case ValidationContextSample:
		c.validateCorpus(result)
		c.validateGraph(result)
		c.validateSample(result)
	case ValidationContextPublish:
		c.validateCorpus(result)
		c.validateGraph(result)
		c.validateNeo4j(result, true)
	case ValidationContextNeo4j:
		c.validateNeo4j(result, true)
	case ValidationContextAll:
		c.validateCorpus(result)
		c.validateGraph(result)
		c.validateSample(result)
		c.validateNeo4j(result, false)
		c.validateLog(result)
	}

	return result
}

func (c *Config) validateCorpus(result *ValidationResult) {
	switch c.Corpus.Source {
	case SourceConvoKit:
		if c.Corpus.Path == "" {
			result.AddError("corpus.path is required for a ConvoKit corpus")
			return
		}
		info, err := os.Stat(c.Corpus.Path)
		if err != nil || !info.IsDir() {
			result.AddError("corpus.path %s is not a directory", c.Corpus.Path)
			return
		}
		if _, err := os.Stat(filepath.Join(c.Corpus.Path, "utterances.jsonl")); err != nil {
			result.AddError("corpus.path %s has no utterances.jsonl", c.Corpus.Path)
		}
		if _, err := os.Stat(filepath.Join(c.Corpus.Path, "speakers.json")); err != nil {
			result.AddWarning("corpus.path %s has no speakers.json; speaker counts will be missing", c.Corpus.Path)
		}
	case SourceSQLite, SourceBolt:
		if c.Corpus.Path == "" {
			result.AddError("corpus.path is required for a %s corpus", c.Corpus.Source)
			return
		}
		if _, err := os.Stat(c.Corpus.Path); err != nil {
			result.AddError("corpus.path %s does not exist (run import first)", c.Corpus.Path)
		}
	case SourcePostgres:
		if c.Corpus.PostgresDSN == "" {
			result.AddError("POSTGRES_DSN is required for a postgres corpus")
		}
	default:
		result.AddError("corpus.source must be one of convokit, sqlite, postgres, bolt (got %q)", c.Corpus.Source)
	}
}

func (c *Config) validateGraph(result *ValidationResult) {
	switch c.Graph.Variant {
	case network.VariantMulti, network.VariantWeighted, network.VariantBoth:
	default:
		result.AddError("graph.variant must be multi, weighted or both (got %q)", c.Graph.Variant)
	}

	if _, err := network.ScopeByName(c.Graph.Scope); err != nil {
		result.AddError("graph.scope: %v", err)
	}

	if c.Graph.RemovalMarker == "" {
		result.AddError("graph.removal_marker must not be empty")
	}
	if c.Graph.SyntheticPrefix == "" {
		result.AddError("graph.synthetic_prefix must not be empty")
	}
	if c.Graph.Scope == network.ScopeConversation {
		result.AddWarning("conversation scope names deleted speakers after conversations, not deleted_speaker_<n>")
	}
}

func (c *Config) validateSample(result *ValidationResult) {
	if c.Sample.ConversationA == "" || c.Sample.ConversationB == "" {
		result.AddError("sample.conversation_a and sample.conversation_b are required")
		return
	}
	if c.Sample.ConversationA == c.Sample.ConversationB {
		result.AddError("sample conversations must differ (both are %s)", c.Sample.ConversationA)
	}
}

func (c *Config) validateNeo4j(result *ValidationResult, required bool) {
	if c.Neo4j.URI == "" {
		if required {
			result.AddError("NEO4J_URI is required but not set")
		}
		return
	}

	u, err := url.Parse(c.Neo4j.URI)
	if err != nil {
		result.AddError("NEO4J_URI is invalid: %v", err)
		return
	}
	switch u.Scheme {
	case "neo4j", "neo4j+s", "neo4j+ssc", "bolt", "bolt+s", "bolt+ssc":
	default:
		result.AddError("NEO4J_URI scheme must be neo4j or bolt (got %q)", u.Scheme)
	}

	if c.Neo4j.User == "" {
		result.AddWarning("NEO4J_USER is not set")
	}
	if c.Neo4j.Password == "" {
		result.AddWarning("NEO4J_PASSWORD is not set")
	}
	if c.Neo4j.BatchSize < 0 {
		result.AddError("neo4j.batch_size must not be negative (got %d)", c.Neo4j.BatchSize)
	}
	if c.Neo4j.BatchesPerSecond < 0 {
		result.AddError("neo4j.batches_per_second must not be negative")
	}
}

func (c *Config) validateLog(result *ValidationResult) {
	switch strings.ToLower(c.Log.Level) {
	case "", "trace", "debug", "info", "warn", "warning", "error":
	default:
		result.AddError("log.level %q is not a known level", c.Log.Level)
	}
}
