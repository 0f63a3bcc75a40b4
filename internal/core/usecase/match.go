package usecase

import "github.com/leafwise/support-chat-core/internal/core/domain"

// DefaultMatchThreshold is the minimum winning score. A lone 1-weight
// token hit stays below it, so generic words never produce a match.
const DefaultMatchThreshold = 2

// Matcher selects the best corpus record for an utterance. It is a
// stable, deterministic function of (utterance, corpus): ties go to the
// earlier record in corpus order.
type Matcher struct {
	corpus    []domain.FaqRecord
	threshold int
}

func NewMatcher(corpus []domain.FaqRecord, threshold int) *Matcher {
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}
	return &Matcher{
		corpus:    corpus,
		threshold: threshold,
	}
}

// Match scores every record and returns the first-seen maximum, or
// ok=false when no record reaches the threshold.
func (m *Matcher) Match(norm NormalizedText) (*domain.FaqRecord, int, bool) {
	var best domain.ScoredCandidate
	for i := range m.corpus {
		score := Score(norm, &m.corpus[i])
		if score == 0 {
			continue
		}
		// Strict comparison keeps the earliest record on ties.
		if best.Record == nil || score > best.Score {
			best = domain.ScoredCandidate{Record: &m.corpus[i], Score: score}
		}
	}
	if best.Record == nil || best.Score < m.threshold {
		return nil, 0, false
	}
	return best.Record, best.Score, true
}
