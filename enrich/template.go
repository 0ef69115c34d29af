package enrich

import "fmt"

// instructionTemplate is the fixed instruction the prompt is embedded in.
// The wording steers the model toward scene description rather than
// conversation.
const instructionTemplate = "Generate a detailed, vivid description of the following environment for 3D scene generation. Include details about lighting, atmosphere, textures, and spatial layout:\n\n%s"

// BuildPrompt embeds the user prompt in the enrichment instruction.
func BuildPrompt(prompt string) string {
	return fmt.Sprintf(instructionTemplate, prompt)
}
