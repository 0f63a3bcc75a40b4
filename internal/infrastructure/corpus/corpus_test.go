package corpus

import (
	"testing"

	"github.com/leafwise/support-chat-core/internal/core/domain"
)

func TestLoadEmbeddedDefault(t *testing.T) {
	records, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(records) == 0 {
		t.Fatalf("embedded corpus is empty")
	}
	ids := make(map[string]struct{}, len(records))
	for _, record := range records {
		ids[record.ID] = struct{}{}
	}
	for _, want := range []string{"identify-plant", "premium-benefits", "pricing", "watering"} {
		if _, ok := ids[want]; !ok {
			t.Fatalf("embedded corpus missing record %q", want)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/corpus.yaml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestParseCustomYAML(t *testing.T) {
	raw := []byte(`records:
  - id: shipping
    question: Do you ship seeds?
    answer: No, Leafwise is software only.
    category: general
    keywords: [shipping, seeds]
`)
	records, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("parsed %d records, want 1", len(records))
	}
	record := records[0]
	if record.ID != "shipping" || record.Category != "general" || len(record.Keywords) != 2 {
		t.Fatalf("parsed record = %+v", record)
	}
}

func TestParseMalformedYAML(t *testing.T) {
	if _, err := Parse([]byte("records: [")); !domain.IsKind(err, domain.ErrCorpusInvalid) {
		t.Fatalf("Parse() error = %v, want ErrCorpusInvalid", err)
	}
}

func TestValidateRejectsBadCorpora(t *testing.T) {
	valid := func() domain.FaqRecord {
		return domain.FaqRecord{ID: "a", Question: "q", Answer: "a", Keywords: []string{"k"}}
	}

	tests := []struct {
		name    string
		records []domain.FaqRecord
	}{
		{"empty corpus", nil},
		{"empty id", []domain.FaqRecord{{Question: "q", Answer: "a", Keywords: []string{"k"}}}},
		{"duplicate id", []domain.FaqRecord{valid(), valid()}},
		{"missing question", []domain.FaqRecord{{ID: "a", Answer: "a", Keywords: []string{"k"}}}},
		{"missing answer", []domain.FaqRecord{{ID: "a", Question: "q", Keywords: []string{"k"}}}},
		{"no keywords", []domain.FaqRecord{{ID: "a", Question: "q", Answer: "a"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Validate(tt.records); !domain.IsKind(err, domain.ErrCorpusInvalid) {
				t.Fatalf("Validate() error = %v, want ErrCorpusInvalid", err)
			}
		})
	}
}
