package assistant

import "strings"

// Responder turns one user utterance into one reply. Implementations must be
// safe for concurrent use; the gateway calls Reply inline on its read loop.
// The rule-based implementation below is the stand-in until a model-backed
// responder lands behind the same interface.
type Responder interface {
	Reply(input string) string
}

// Rule maps a set of trigger phrases to a canned response. Rules are checked
// in order; the first rule with any trigger appearing as a case-insensitive
// substring of the input wins.
type Rule struct {
	Triggers []string
	Response string
}

type RuleResponder struct {
	rules    []Rule
	fallback string
}

func NewRuleResponder(rules []Rule, fallback string) *RuleResponder {
	return &RuleResponder{rules: rules, fallback: fallback}
}

func (r *RuleResponder) Reply(input string) string {
	lower := strings.ToLower(input)
	for _, rule := range r.rules {
		for _, t := range rule.Triggers {
			if strings.Contains(lower, strings.ToLower(t)) {
				return rule.Response
			}
		}
	}
	return r.fallback
}
