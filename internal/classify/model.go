package classify

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/gravgor/landmark-cli/internal/model"
	"github.com/gravgor/landmark-cli/pkg/anthropic"
)

const classifySystemPrompt = `You classify travel landmark descriptions into exactly one category.
Respond with the category name only, nothing else.`

// ModelClassifier asks an Anthropic model to pick a label from the fixed
// set. Any failure or off-list answer falls back to the keyword matcher,
// so a dead API key degrades quality but never breaks an aggregation run.
type ModelClassifier struct {
	client   anthropic.Client
	model    string
	fallback Classifier
}

// NewModelClassifier wraps the given client. fallback must not be nil.
func NewModelClassifier(client anthropic.Client, modelID string, fallback Classifier) *ModelClassifier {
	return &ModelClassifier{client: client, model: modelID, fallback: fallback}
}

func (c *ModelClassifier) Classify(ctx context.Context, description string) (string, error) {
	if strings.TrimSpace(description) == "" {
		return model.CategoryUnknown, nil
	}

	var prompt strings.Builder
	prompt.WriteString("Description:\n")
	prompt.WriteString(description)
	prompt.WriteString("\n\nCategories:\n")
	for _, category := range model.Categories {
		prompt.WriteString("- ")
		prompt.WriteString(category)
		prompt.WriteString("\n")
	}

	resp, err := c.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     c.model,
		MaxTokens: 32,
		System:    []anthropic.SystemBlock{{Text: classifySystemPrompt}},
		Messages:  []anthropic.Message{{Role: "user", Content: prompt.String()}},
	})
	if err != nil {
		zap.L().Warn("model classification failed, using keyword matcher", zap.Error(err))
		return c.fallback.Classify(ctx, description)
	}
	resp.Usage.LogCost(c.model, "classify")

	answer := ""
	for _, block := range resp.Content {
		if block.Type == "text" {
			answer = strings.TrimSpace(block.Text)
			break
		}
	}
	for _, category := range model.Categories {
		if strings.EqualFold(answer, category) {
			return category, nil
		}
	}

	zap.L().Warn("model returned off-list category, using keyword matcher",
		zap.String("answer", answer))
	return c.fallback.Classify(ctx, description)
}
