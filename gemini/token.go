package gemini

import (
	"context"

	"github.com/fwojciec/meddict"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

// Ensure TokenCounter implements meddict.TokenCounter at compile time.
var _ meddict.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts Gemini tokens locally, without API calls.
type TokenCounter struct {
	tok *tokenizer.LocalTokenizer
}

// NewTokenCounter creates a token counter for the given model.
func NewTokenCounter(model string) (*TokenCounter, error) {
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, meddict.Errorf(meddict.EINTERNAL, "create tokenizer: %v", err)
	}
	return &TokenCounter{tok: tok}, nil
}

// CountTokens returns the number of tokens in text.
func (c *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	result, err := c.tok.CountTokens([]*genai.Content{genai.NewContentFromText(text, "user")}, nil)
	if err != nil {
		return 0, meddict.Errorf(meddict.EINTERNAL, "count tokens: %v", err)
	}
	return int(result.TotalTokens), nil
}
