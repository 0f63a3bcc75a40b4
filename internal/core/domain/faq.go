package domain

// FaqRecord is one canned question/answer entry in the support corpus.
// Records are immutable after corpus load; corpus order is significant
// because the matcher breaks score ties in favor of earlier records.
type FaqRecord struct {
	ID       string   `json:"id" yaml:"id"`
	Question string   `json:"question" yaml:"question"`
	Answer   string   `json:"answer" yaml:"answer"`
	Category string   `json:"category" yaml:"category"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// ScoredCandidate pairs a corpus record with its relevance score for a
// single utterance. Candidates are discarded once a winner is picked.
type ScoredCandidate struct {
	Record *FaqRecord `json:"record"`
	Score  int        `json:"score"`
}

// Resolution is the outcome of answering one utterance outside the
// corpus match path. Side effects are carried as data so only the turn
// controller mutates session state.
type Resolution struct {
	Text        string `json:"text"`
	ShowContact bool   `json:"show_contact"`
	Rule        string `json:"rule,omitempty"`
}
