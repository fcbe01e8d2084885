package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/replaywise/replaywise/internal/models"
)

// promptEntry is one prompt in the input file. Either messages or the text
// shorthand must be set; text expands to a single user message.
type promptEntry struct {
	ID            string            `yaml:"id"`
	Text          string            `yaml:"text"`
	Messages      []models.Message  `yaml:"messages"`
	Metadata      map[string]string `yaml:"metadata"`
	OriginalModel string            `yaml:"original_model"`
	OriginalCost  float64           `yaml:"original_cost"`
}

type promptFile struct {
	Prompts []promptEntry `yaml:"prompts"`
}

// loadPrompts reads the prompt set from a YAML file. Entries without an ID
// get a generated one.
func loadPrompts(path string) ([]models.Prompt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading prompts file: %w", err)
	}

	var file promptFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing prompts file: %w", err)
	}
	if len(file.Prompts) == 0 {
		return nil, fmt.Errorf("prompts file %q contains no prompts", path)
	}

	prompts := make([]models.Prompt, 0, len(file.Prompts))
	for i, entry := range file.Prompts {
		messages := entry.Messages
		if len(messages) == 0 {
			if entry.Text == "" {
				return nil, fmt.Errorf("prompt %d has neither messages nor text", i)
			}
			messages = []models.Message{{Role: "user", Content: entry.Text}}
		}
		id := entry.ID
		if id == "" {
			id = uuid.NewString()
		}
		prompts = append(prompts, models.Prompt{
			ID:            id,
			Messages:      messages,
			Metadata:      entry.Metadata,
			OriginalModel: entry.OriginalModel,
			OriginalCost:  entry.OriginalCost,
		})
	}
	return prompts, nil
}
