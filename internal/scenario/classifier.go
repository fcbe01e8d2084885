// Package scenario provides prompt classification, the model family
// registry, and the per-scenario validation policy table.
package scenario

import (
	"regexp"
	"strings"
)

// Scenario tags. General is the fallback for blank or unmatched prompts.
const (
	CodeGeneration  = "code_generation"
	FactualQA       = "factual_qa"
	CreativeWriting = "creative_writing"
	Translation     = "translation"
	Summarization   = "summarization"
	Analysis        = "analysis"
	General         = "general"
)

// classifierOrder fixes the tie-break order: when two scenarios score
// equally, the one listed first wins.
var classifierOrder = []string{
	CodeGeneration,
	FactualQA,
	CreativeWriting,
	Translation,
	Summarization,
	Analysis,
}

type scenarioRules struct {
	keywords []string
	patterns []*regexp.Regexp
}

// Classifier tags prompts with a coarse intent category. Classification is
// deterministic: identical text always yields the identical tag.
type Classifier struct {
	rules map[string]scenarioRules
}

// NewClassifier builds a classifier with the built-in keyword and pattern
// tables. Patterns are compiled once here.
func NewClassifier() *Classifier {
	compile := func(exprs ...string) []*regexp.Regexp {
		out := make([]*regexp.Regexp, 0, len(exprs))
		for _, e := range exprs {
			out = append(out, regexp.MustCompile(e))
		}
		return out
	}

	return &Classifier{rules: map[string]scenarioRules{
		CodeGeneration: {
			keywords: []string{
				"write code", "implement", "function", "class", "method",
				"create a", "build a", "code for", "program", "script",
				"algorithm", "data structure",
			},
			patterns: compile(
				`\bdef\s+\w+`,
				`\bclass\s+\w+`,
				`\bfunction\s+\w+`,
				`write.*function`,
				`implement.*function`,
				`create.*function`,
			),
		},
		FactualQA: {
			keywords: []string{
				"what is", "what are", "explain", "define", "who is",
				"when was", "where is", "how many", "tell me about",
				"describe",
			},
			patterns: compile(
				`^(what|who|when|where|why|how)\s`,
				`explain.*about`,
				`tell me about`,
			),
		},
		CreativeWriting: {
			keywords: []string{
				"write a story", "write a poem", "create a story",
				"compose", "creative", "imagine", "describe a scene",
				"write dialogue",
			},
			patterns: compile(
				`\bstory\b`,
				`\bpoem\b`,
				`\bcreative\b`,
				`write.*story`,
				`create.*narrative`,
			),
		},
		Translation: {
			keywords: []string{
				"translate", "translation", "convert to", "in spanish",
				"in french", "in german", "language",
			},
			patterns: compile(
				`translate.*to\s+\w+`,
				`convert.*to\s+\w+`,
				`in\s+(spanish|french|german|chinese|japanese)`,
			),
		},
		Summarization: {
			keywords: []string{
				"summarize", "summary", "brief", "tldr", "key points",
				"main ideas", "overview",
			},
			patterns: compile(
				`summarize.*text`,
				`give.*summary`,
				`tl;?dr`,
			),
		},
		Analysis: {
			keywords: []string{
				"analyze", "analysis", "evaluate", "assess", "compare",
				"contrast", "pros and cons", "advantages", "disadvantages",
			},
			patterns: compile(
				`analyze.*data`,
				`compare.*with`,
				`pros.*cons`,
			),
		},
	}}
}

// Classify returns the scenario tag for a prompt. Matching is
// case-insensitive: +2 per keyword substring, +3 per pattern match. The
// highest total wins, ties broken by classifierOrder; blank prompts and
// all-zero scores fall back to General.
func (c *Classifier) Classify(prompt string) string {
	if strings.TrimSpace(prompt) == "" {
		return General
	}

	lower := strings.ToLower(prompt)

	best := General
	bestScore := 0
	for _, name := range classifierOrder {
		rules := c.rules[name]
		score := 0
		for _, kw := range rules.keywords {
			if strings.Contains(lower, kw) {
				score += 2
			}
		}
		for _, re := range rules.patterns {
			if re.MatchString(lower) {
				score += 3
			}
		}
		if score > bestScore {
			best = name
			bestScore = score
		}
	}

	return best
}

// ClassifyBatch classifies multiple prompts in order.
func (c *Classifier) ClassifyBatch(prompts []string) []string {
	tags := make([]string, len(prompts))
	for i, p := range prompts {
		tags[i] = c.Classify(p)
	}
	return tags
}

// Scenarios returns all known tags, default last.
func Scenarios() []string {
	return append(append([]string{}, classifierOrder...), General)
}
