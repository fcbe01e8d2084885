package scenario

import "strings"

// FamilyUnknown is returned for models that match no known family.
const FamilyUnknown = "unknown"

type familyInfo struct {
	name               string
	models             []string
	transferConfidence float64
	provider           string
}

// families is ordered: lookup walks it front to back and the first member
// match wins.
var families = []familyInfo{
	{
		name:               "openai_gpt4",
		models:             []string{"gpt-4o", "gpt-4o-mini", "gpt-4-turbo", "gpt-4", "gpt-4-turbo-preview"},
		transferConfidence: 0.85,
		provider:           "openai",
	},
	{
		name:               "openai_gpt35",
		models:             []string{"gpt-3.5-turbo", "gpt-3.5-turbo-16k", "gpt-3.5-turbo-1106"},
		transferConfidence: 0.90,
		provider:           "openai",
	},
	{
		name:               "anthropic_claude3",
		models:             []string{"claude-3-opus", "claude-3-sonnet", "claude-3-haiku"},
		transferConfidence: 0.80,
		provider:           "anthropic",
	},
	{
		name:               "anthropic_claude35",
		models:             []string{"claude-3-5-sonnet", "claude-3-5-haiku", "claude-3-5-sonnet-20250122"},
		transferConfidence: 0.85,
		provider:           "anthropic",
	},
	{
		name:               "google_gemini",
		models:             []string{"gemini-pro", "gemini-1.5-pro", "gemini-1.5-flash"},
		transferConfidence: 0.80,
		provider:           "google",
	},
	{
		name: "meta_llama3",
		models: []string{
			"meta.llama-3.2-90b-vision-instruct-maas",
			"meta.llama-3.1-405b-instruct-maas",
			"meta.llama-3.1-70b-instruct-maas",
			"llama-3.2-90b",
			"llama-3.1-405b",
			"llama-3.1-70b",
		},
		transferConfidence: 0.80,
		provider:           "meta",
	},
}

// Family returns the family name for a model, or FamilyUnknown. A model
// belongs to a family when any member name is a substring of it,
// case-insensitive, so versioned variants like "gpt-4o-2024-08-06" still
// resolve.
func Family(model string) string {
	lower := strings.ToLower(model)
	for _, f := range families {
		for _, m := range f.models {
			if strings.Contains(lower, strings.ToLower(m)) {
				return f.name
			}
		}
	}
	return FamilyUnknown
}

// Families returns the known family names in table order.
func Families() []string {
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.name)
	}
	return names
}

// FamilyModels returns the member models of a family, nil if unknown.
func FamilyModels(family string) []string {
	for _, f := range families {
		if f.name == family {
			return append([]string{}, f.models...)
		}
	}
	return nil
}

// TransferConfidence returns the score discount factor applied when
// transferring knowledge within a family. Unknown families get 0.5.
func TransferConfidence(family string) float64 {
	for _, f := range families {
		if f.name == family {
			return f.transferConfidence
		}
	}
	return 0.5
}

// Provider resolves the provider for a model, preferring the family table
// and falling back to name patterns.
func Provider(model string) string {
	if fam := Family(model); fam != FamilyUnknown {
		for _, f := range families {
			if f.name == fam {
				return f.provider
			}
		}
	}

	lower := strings.ToLower(model)
	switch {
	case strings.Contains(lower, "gpt") || strings.Contains(lower, "openai"):
		return "openai"
	case strings.Contains(lower, "claude") || strings.Contains(lower, "anthropic"):
		return "anthropic"
	case strings.Contains(lower, "gemini") || strings.Contains(lower, "vertex"):
		return "google"
	case strings.Contains(lower, "llama") || strings.Contains(lower, "meta"):
		return "meta"
	}
	return FamilyUnknown
}
