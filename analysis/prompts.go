package analysis

import (
	"fmt"
	"strconv"

	"github.com/poiesic/bioorbit/core"
)

const systemInstruction = "You are a senior bioinformatics research assistant. " +
	"Analyze the provided biological chunk and metadata to suggest concrete, " +
	"actionable wet-lab or in-silico next steps."

const promptTemplate = `Context: A researcher is investigating this biological entity.
Title: %s
Text Chunk: %s
Delta G: %s kcal/mol
Type: %s

Provide a JSON response with:
1. A 1-sentence summary.
2. 3 specific actionable next steps (experimental or computational).
3. Risk level (Low/Medium/High) of pursuing this target based on thermodynamic stability.

Use the keys "summary", "nextSteps" and "riskLevel".`

func buildPrompt(c *core.Candidate) string {
	deltaG := "unknown"
	if c.DeltaG != nil {
		deltaG = strconv.FormatFloat(*c.DeltaG, 'f', -1, 64)
	}
	return fmt.Sprintf(promptTemplate, c.Source.Title, c.Chunk.Text, deltaG, c.Type)
}
