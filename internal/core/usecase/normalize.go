package usecase

import "strings"

// NormalizedText is the comparable form of one raw utterance: the
// lower-cased, trimmed text plus its whitespace tokens. Punctuation is
// kept on purpose; the scorer's substring signals tolerate it.
type NormalizedText struct {
	Text   string
	Tokens []string
}

// Normalize converts a raw user utterance into scorer input. A blank
// utterance is valid and yields an empty token sequence, which scores
// zero against every record.
func Normalize(raw string) NormalizedText {
	text := strings.ToLower(strings.TrimSpace(raw))
	return NormalizedText{
		Text:   text,
		Tokens: strings.Fields(text),
	}
}

func (n NormalizedText) firstToken() string {
	if len(n.Tokens) == 0 {
		return ""
	}
	return n.Tokens[0]
}
