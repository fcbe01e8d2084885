// Package heuristics implements the fast rule-based output validator. It
// makes no network calls and is a pure function of the output text, so it
// can run on every replay result at effectively zero cost.
package heuristics

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/replaywise/replaywise/internal/models"
)

// Check names recorded on results.
const (
	CheckNonEmpty   = "non_empty"
	CheckRefusal    = "refusal_check"
	CheckLength     = "length_check"
	CheckError      = "error_check"
	CheckSchema     = "schema_check"
	CheckLanguage   = "language_check"
	CheckFormatting = "formatting_check"
)

var refusalPatterns = compileAll(
	`i cannot`,
	`i can't`,
	`i'm not able to`,
	`i am not able to`,
	`i don't have access`,
	`i cannot provide`,
	`i cannot assist`,
	`i'm sorry, but i cannot`,
	`against my programming`,
	`violates my guidelines`,
	`i'm not allowed to`,
	`as an ai`,
	`as a language model`,
)

var errorPatterns = compileAll(
	`error:`,
	`exception:`,
	`failed to`,
	`could not`,
	`unable to`,
	`traceback`,
	`stack trace`,
)

var sentenceBoundary = regexp.MustCompile(`[.!?]+\s`)

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(e))
	}
	return out
}

// Options tune a validation pass. The zero value means: no schema check,
// minimum length 10, expected language "en".
type Options struct {
	// ExpectedSchema, when non-nil, is a JSON schema the output must
	// satisfy. Satisfying it earns a bonus; failing it costs points.
	ExpectedSchema map[string]any

	MinLength        int
	ExpectedLanguage string
}

func (o Options) withDefaults() Options {
	if o.MinLength == 0 {
		o.MinLength = 10
	}
	if o.ExpectedLanguage == "" {
		o.ExpectedLanguage = "en"
	}
	return o
}

// Validate runs the full check sequence and returns a scored result.
// Refusals and empty outputs short-circuit to score 0 with HIGH confidence.
// Confidence is derived from the score before clamping.
func Validate(output string, opts Options) models.HeuristicResult {
	opts = opts.withDefaults()

	if strings.TrimSpace(output) == "" {
		return models.HeuristicResult{
			Score:        0,
			Confidence:   models.ConfidenceHigh,
			Reasoning:    "Empty output",
			ChecksFailed: []string{CheckNonEmpty},
		}
	}

	if IsRefusal(output) {
		return models.HeuristicResult{
			Score:        0,
			Confidence:   models.ConfidenceHigh,
			Reasoning:    "Model refused to answer",
			ChecksFailed: []string{CheckRefusal},
		}
	}

	score := 100.0
	passed := []string{CheckRefusal}
	var failed []string

	if len(output) < opts.MinLength {
		score -= 40
		failed = append(failed, CheckLength)
	} else {
		passed = append(passed, CheckLength)
	}

	if ContainsErrors(output) {
		score -= 30
		failed = append(failed, CheckError)
	} else {
		passed = append(passed, CheckError)
	}

	if opts.ExpectedSchema != nil {
		if MatchesSchema(output, opts.ExpectedSchema) {
			score += 10
			passed = append(passed, CheckSchema)
		} else {
			score -= 20
			failed = append(failed, CheckSchema)
		}
	}

	if DetectLanguage(output) != opts.ExpectedLanguage {
		score -= 30
		failed = append(failed, CheckLanguage)
	} else {
		passed = append(passed, CheckLanguage)
	}

	formatting := formattingScore(output)
	score += (formatting - 50) * 0.2
	if formatting > 60 {
		passed = append(passed, CheckFormatting)
	} else {
		failed = append(failed, CheckFormatting)
	}

	confidence := models.ConfidenceLow
	switch {
	case score < 20 || score > 85:
		confidence = models.ConfidenceHigh
	case score >= 30 && score <= 75:
		confidence = models.ConfidenceMedium
	}

	score = models.ClampScore(score)

	return models.HeuristicResult{
		Score:        score,
		Confidence:   confidence,
		Reasoning:    reasoning(passed, failed, score),
		ChecksPassed: passed,
		ChecksFailed: failed,
	}
}

// IsRefusal reports whether the output matches a known refusal phrase. The
// replay engine shares this to flag refusals on raw results.
func IsRefusal(output string) bool {
	lower := strings.ToLower(output)
	for _, re := range refusalPatterns {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

// ContainsErrors reports whether the output looks like an error dump.
func ContainsErrors(output string) bool {
	lower := strings.ToLower(output)
	for _, re := range errorPatterns {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

// DetectLanguage returns a coarse ISO language code based on Unicode
// script ranges, defaulting to English.
func DetectLanguage(text string) string {
	for _, r := range text {
		switch {
		case r >= 0x4E00 && r <= 0x9FFF:
			return "zh"
		case r >= 0x0600 && r <= 0x06FF:
			return "ar"
		case r >= 0x0400 && r <= 0x04FF:
			return "ru"
		case (r >= 0x3040 && r <= 0x309F) || (r >= 0x30A0 && r <= 0x30FF):
			return "ja"
		}
	}
	return "en"
}

// formattingScore rates surface formatting on a 0-100 scale around a
// 50-point baseline.
func formattingScore(output string) float64 {
	score := 50.0

	runes := []rune(output)
	if len(runes) > 0 && unicode.IsUpper(runes[0]) {
		score += 10
	}

	trimmed := strings.TrimSpace(output)
	if trimmed != "" && strings.ContainsRune(".!?", rune(trimmed[len(trimmed)-1])) {
		score += 10
	}

	if strings.Contains(output, "\n") {
		score += 10
	}

	if !isAllUpper(output) {
		score += 10
	}

	sentences := len(sentenceBoundary.FindAllString(output, -1))
	if sentences > 0 {
		bonus := float64(sentences * 2)
		if bonus > 10 {
			bonus = 10
		}
		score += bonus
	}

	if score > 100 {
		score = 100
	}
	return score
}

// isAllUpper reports whether the text has at least one cased rune and every
// cased rune is upper case.
func isAllUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

func reasoning(passed, failed []string, score float64) string {
	if score == 0 {
		return "Output failed critical checks (refusal or empty)"
	}
	if len(failed) == 0 {
		return fmt.Sprintf("All heuristic checks passed (%d checks)", len(passed))
	}
	if len(passed) == 0 {
		return fmt.Sprintf("All checks failed (%d failures)", len(failed))
	}
	return fmt.Sprintf("Passed %d checks, failed %d checks", len(passed), len(failed))
}
