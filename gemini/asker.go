// Package gemini answers natural language questions about stored medicines
// using Google Gemini.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/meddict"
	"google.golang.org/genai"
)

const model = "gemini-2.5-flash"

// Ensure Asker implements meddict.Asker at compile time.
var _ meddict.Asker = (*Asker)(nil)

// Asker implements meddict.Asker using Google Gemini.
type Asker struct {
	client    *genai.Client
	medicines meddict.MedicineService
}

// NewAsker creates a new Asker.
func NewAsker(client *genai.Client, medicines meddict.MedicineService) *Asker {
	return &Asker{client: client, medicines: medicines}
}

// Ask answers a natural language question about the stored medicines whose
// names match name.
func (a *Asker) Ask(ctx context.Context, name, question string) (string, error) {
	if name == "" {
		return "", meddict.Errorf(meddict.EINVALID, "medicine name required")
	}
	if question == "" {
		return "", meddict.Errorf(meddict.EINVALID, "question required")
	}

	meds, _, err := a.medicines.FindMedicines(ctx, meddict.MedicineFilter{Name: &name})
	if err != nil {
		return "", err
	}
	if len(meds) == 0 {
		return "", meddict.Errorf(meddict.ENOTFOUND, "no medicines found matching %q", name)
	}

	prompt := BuildUserPrompt(meds, question)
	config := BuildConfig()

	result, err := a.client.Models.GenerateContent(ctx, model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		config,
	)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", meddict.Errorf(meddict.EINTERNAL, "gemini returned nil result")
	}

	return result.Text(), nil
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.4)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You are a careful pharmacist answering questions about medicines sold in Korea. Answer based only on the drug information provided, in the language of the question. If the answer is not in the provided information, say so. Never invent dosages, interactions, or contraindications.",
			}},
		},
		Temperature: &temp,
	}
}

// BuildUserPrompt builds the user prompt containing the drug information
// block and the question.
func BuildUserPrompt(meds []*meddict.Medicine, question string) string {
	var sb strings.Builder
	sb.WriteString("<medicines>\n")
	sb.WriteString(meddict.FormatMedicines(meds))
	sb.WriteString("\n</medicines>\n\n")
	fmt.Fprintf(&sb, "Question: %s", question)
	return sb.String()
}
