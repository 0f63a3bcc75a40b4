// Package corpus loads and validates the FAQ corpus the matcher runs
// against. The corpus is loaded once at startup and immutable after;
// validation failures are fatal there, never per-query.
package corpus

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/leafwise/support-chat-core/internal/core/domain"
)

//go:embed default_corpus.yaml
var defaultCorpusYAML []byte

type corpusFile struct {
	Records []domain.FaqRecord `yaml:"records"`
}

// Load reads the corpus from path, or falls back to the embedded
// default when path is empty.
func Load(path string) ([]domain.FaqRecord, error) {
	raw := defaultCorpusYAML
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read corpus file: %w", err)
		}
		raw = data
	}
	return Parse(raw)
}

// Parse decodes and validates corpus YAML.
func Parse(raw []byte) ([]domain.FaqRecord, error) {
	var file corpusFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, domain.WrapError(domain.ErrCorpusInvalid, "parse corpus", err)
	}
	if err := Validate(file.Records); err != nil {
		return nil, err
	}
	return file.Records, nil
}

// Validate enforces the corpus invariants: non-empty corpus, unique
// non-empty ids, question and answer text present, at least one keyword
// per record.
func Validate(records []domain.FaqRecord) error {
	if len(records) == 0 {
		return domain.WrapError(domain.ErrCorpusInvalid, "validate corpus", fmt.Errorf("corpus is empty"))
	}

	seen := make(map[string]struct{}, len(records))
	for i, record := range records {
		if record.ID == "" {
			return domain.WrapError(domain.ErrCorpusInvalid, "validate corpus", fmt.Errorf("record %d has empty id", i))
		}
		if _, dup := seen[record.ID]; dup {
			return domain.WrapError(domain.ErrCorpusInvalid, "validate corpus", fmt.Errorf("duplicate record id %q", record.ID))
		}
		seen[record.ID] = struct{}{}

		if record.Question == "" {
			return domain.WrapError(domain.ErrCorpusInvalid, "validate corpus", fmt.Errorf("record %q has empty question", record.ID))
		}
		if record.Answer == "" {
			return domain.WrapError(domain.ErrCorpusInvalid, "validate corpus", fmt.Errorf("record %q has empty answer", record.ID))
		}
		if len(record.Keywords) == 0 {
			return domain.WrapError(domain.ErrCorpusInvalid, "validate corpus", fmt.Errorf("record %q has no keywords", record.ID))
		}
	}
	return nil
}
