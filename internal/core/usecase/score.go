package usecase

import (
	"strings"

	"github.com/leafwise/support-chat-core/internal/core/domain"
)

// Relevance is an additive, unbounded heuristic: a record can win on a
// single strong signal or by accumulating many weak ones. Each signal
// is independently explainable, which keeps mismatches debuggable.
const (
	weightQuestionContainment = 10
	weightKeywordHit          = 2
	weightFirstTokenKeyword   = 3
	weightTokenOverlap        = 1

	// Tokens this short ("is", "it", "a") carry no topical signal.
	minOverlapTokenLen = 3
)

// Score computes the relevance of one corpus record for a normalized
// utterance. Pure and deterministic; independent across records.
func Score(norm NormalizedText, record *domain.FaqRecord) int {
	if norm.Text == "" {
		return 0
	}

	score := 0
	question := strings.ToLower(record.Question)

	if strings.Contains(norm.Text, question) || strings.Contains(question, norm.Text) {
		score += weightQuestionContainment
	}

	for _, keyword := range record.Keywords {
		if strings.Contains(norm.Text, strings.ToLower(keyword)) {
			score += weightKeywordHit
		}
	}

	if first := norm.firstToken(); first != "" {
		for _, keyword := range record.Keywords {
			if first == strings.ToLower(keyword) {
				score += weightFirstTokenKeyword
				break
			}
		}
	}

	for _, token := range norm.Tokens {
		if len(token) < minOverlapTokenLen {
			continue
		}
		if tokenHitsRecord(token, question, record.Keywords) {
			score += weightTokenOverlap
		}
	}

	return score
}

func tokenHitsRecord(token, question string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(strings.ToLower(keyword), token) {
			return true
		}
	}
	return strings.Contains(question, token)
}
