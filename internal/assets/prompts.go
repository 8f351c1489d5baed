// Package assets provides embedded static assets for the application.
//
// Instruction templates are stored as text files under prompts/ and embedded
// at compile time, so the wording sent to the agent can be tuned without
// touching composition code.
package assets

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/generate-instruction.tmpl
var generateInstructionText string

//go:embed prompts/enhance-instruction.tmpl
var enhanceInstructionText string

// GenerateInstruction composes the image-generation instruction from the
// prompt text and the style/size/quality parameters.
var GenerateInstruction = template.Must(template.New("generate").Parse(generateInstructionText))

// EnhanceInstruction composes the prompt-enhancement instruction.
var EnhanceInstruction = template.Must(template.New("enhance").Parse(enhanceInstructionText))
