package agent

import (
	"fmt"
	"strings"

	"promptcanvas/internal/assets"
)

// MaxPromptLen is the cap on user prompt length in runes. The input control
// enforces the same limit client-side; this is the authoritative check.
const MaxPromptLen = 1000

// instructionData is the template payload for instruction composition.
type instructionData struct {
	Prompt  string
	Style   string
	Size    string
	Quality string
}

// TrimPrompt trims surrounding whitespace and caps the prompt at
// MaxPromptLen runes.
func TrimPrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	runes := []rune(prompt)
	if len(runes) > MaxPromptLen {
		return string(runes[:MaxPromptLen])
	}
	return prompt
}

// ComposeGenerate renders the image-generation instruction for the agent.
func ComposeGenerate(prompt string, p Params) (string, error) {
	var b strings.Builder
	err := assets.GenerateInstruction.Execute(&b, instructionData{
		Prompt:  prompt,
		Style:   p.Style,
		Size:    p.Size,
		Quality: p.Quality,
	})
	if err != nil {
		return "", fmt.Errorf("compose generate instruction: %w", err)
	}
	return b.String(), nil
}

// ComposeEnhance renders the prompt-enhancement instruction for the agent.
func ComposeEnhance(prompt string, p Params) (string, error) {
	var b strings.Builder
	err := assets.EnhanceInstruction.Execute(&b, instructionData{
		Prompt:  prompt,
		Style:   p.Style,
		Size:    p.Size,
		Quality: p.Quality,
	})
	if err != nil {
		return "", fmt.Errorf("compose enhance instruction: %w", err)
	}
	return b.String(), nil
}
