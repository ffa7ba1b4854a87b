package oracle

import (
	"fmt"
	"strings"

	"github.com/robalobadob/geoquest/internal/geo"
)

// SystemPrompt grounds the model in the hidden location and restricts its vocabulary.
func SystemPrompt(loc geo.Location) string {
	var b strings.Builder
	b.WriteString(`You are the answering side of a geography guessing game. You must answer ONLY with "Yes", "No", or "Maybe" to yes/no questions about a specific location.

Rules:
- Answer "Yes" if the question is clearly true about the location
- Answer "No" if the question is clearly false about the location
- Answer "Maybe" only if the question is ambiguous or partially true
- Be accurate based on real geographical, cultural, and factual information
- Never reveal the location name in your response
- Reply with exactly one word: "Yes", "No", or "Maybe"

Location information:
`)
	fmt.Fprintf(&b, "- Name: %s\n", loc.Name)
	fmt.Fprintf(&b, "- Type: %s\n", loc.Type)
	fmt.Fprintf(&b, "- Continent: %s\n", orNA(loc.Continent))
	fmt.Fprintf(&b, "- Country: %s\n", orNA(loc.Country))
	fmt.Fprintf(&b, "- Difficulty level: %d/5\n", loc.Difficulty)
	return b.String()
}

// UserPrompt wraps the player's question.
func UserPrompt(question string, loc geo.Location) string {
	return fmt.Sprintf("Question: %q\n\nAnswer with only \"Yes\", \"No\", or \"Maybe\" based on whether this question is true about %s.",
		strings.TrimSpace(question), loc.Name)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
