package usecase

import (
	"fmt"
	"strings"

	"github.com/leafwise/support-chat-core/internal/core/domain"
	"github.com/leafwise/support-chat-core/internal/core/ports"
)

// Fallback rule names, stable for telemetry and tests.
const (
	FallbackRuleGreeting   = "greeting"
	FallbackRuleHelp       = "help"
	FallbackRuleThanks     = "thanks"
	FallbackRuleContact    = "contact"
	FallbackRuleHowItWorks = "how_it_works"
	FallbackRulePricing    = "pricing"
	FallbackRuleFreeTier   = "free_tier"
	FallbackRuleDefault    = "default"
)

const (
	fallbackGreetingText = "Hi! I'm the Leafwise assistant. I can help with plant identification, premium plans, plant care and getting in touch with our team. What would you like to know?"
	fallbackHelpText     = "I can answer questions about identifying plants from a photo, our premium subscription, plant care tips, pricing and the free tier. Just ask in your own words."
	fallbackThanksText   = "You're welcome! Let me know if there's anything else about Leafwise I can help with."
	fallbackContactText  = "You can reach our support team directly. I've attached our contact details below."
	fallbackHowToText    = "It's simple: snap a photo of a plant or leaf, and Leafwise identifies the species in seconds. You'll also get tailored care instructions for every match."
	fallbackPricingText  = "Leafwise Premium costs $4.99/month or $39.99/year and unlocks unlimited identifications, disease diagnosis and expert care plans. The basic app is free."
	fallbackFreeText     = "The free tier includes 3 plant identifications per day and access to basic care tips, with no account or card required."
)

var fallbackSuggestions = []string{
	"How do I identify a plant?",
	"What does premium include?",
	"How often should I water my plants?",
	"How much does it cost?",
	"Is there a free version?",
}

// FallbackResolver answers utterances no corpus record qualified for.
// Rules are evaluated in fixed priority order and the chain always
// terminates in the default branch, so resolution cannot fail.
type FallbackResolver struct {
	rng ports.Rand
}

func NewFallbackResolver(rng ports.Rand) *FallbackResolver {
	return &FallbackResolver{rng: rng}
}

func (f *FallbackResolver) Resolve(norm NormalizedText) domain.Resolution {
	text := norm.Text

	switch {
	case containsAny(text, "hello", "hi", "hey"):
		return domain.Resolution{Text: fallbackGreetingText, Rule: FallbackRuleGreeting}
	case containsAny(text, "help", "what can you do"):
		return domain.Resolution{Text: fallbackHelpText, Rule: FallbackRuleHelp}
	case containsAny(text, "thank"):
		return domain.Resolution{Text: fallbackThanksText, Rule: FallbackRuleThanks}
	case containsAny(text, "contact", "support", "email"):
		return domain.Resolution{
			Text:        fallbackContactText,
			ShowContact: true,
			Rule:        FallbackRuleContact,
		}
	case strings.Contains(text, "how") && containsAny(text, "work", "use"):
		return domain.Resolution{Text: fallbackHowToText, Rule: FallbackRuleHowItWorks}
	case containsAny(text, "price", "cost", "money", "fee"):
		return domain.Resolution{Text: fallbackPricingText, Rule: FallbackRulePricing}
	case strings.Contains(text, "free") && !strings.Contains(text, "trial"):
		return domain.Resolution{Text: fallbackFreeText, Rule: FallbackRuleFreeTier}
	default:
		suggestion := fallbackSuggestions[f.rng.IntN(len(fallbackSuggestions))]
		return domain.Resolution{
			Text: fmt.Sprintf(
				"I'm not sure I understood that. You could try asking %q, or ask me about identification, premium, plant care or pricing.",
				suggestion,
			),
			Rule: FallbackRuleDefault,
		}
	}
}

func containsAny(text string, patterns ...string) bool {
	for _, pattern := range patterns {
		if strings.Contains(text, pattern) {
			return true
		}
	}
	return false
}
