package extraction

import (
	"fmt"
	"strings"
)

// DefaultSystemPrompt frames the oracle as a trademark-law analyst and
// pins the output contract to JSON only.
const DefaultSystemPrompt = `You are an expert analyst of trademark opposition decisions issued by the UKIPO and EUIPO. You read hearing officer decisions and extract the structured facts of the case with complete accuracy. You answer only with JSON conforming to the provided schema. You never invent values: when the document does not state a fact, you emit null for that field.`

// DefaultUserPrompt is the base extraction instruction, refined per
// section by an extraction focus line.
const DefaultUserPrompt = `Extract the structured case data from the decision text below. Report dates in DD/MM/YYYY format. Use the exact enum values defined by the schema. Quote mark text verbatim, including capitalisation.`

// sectionFocus narrows the prompt when a chunk covers a known section, so
// the oracle spends its attention on the fields that section can answer.
func sectionFocus(section string) string {
	switch {
	case strings.Contains(section, "Background"):
		return "Focus on extracting case reference, decision date, decision maker, jurisdiction, application number, applicant and opponent names."
	case strings.Contains(section, "Comparison of goods"):
		return "Focus on extracting goods_services_comparison data."
	case strings.Contains(section, "Comparison of marks"):
		return "Focus on extracting mark_comparison data (visual, aural, conceptual similarity)."
	case strings.Contains(section, "Likelihood of confusion"):
		return "Focus on extracting likelihood_of_confusion, confusion_type, and opposition_outcome."
	default:
		return ""
	}
}

// buildPrompt assembles the per-chunk user prompt: base instruction,
// optional focus line, section name and the chunk text.
func buildPrompt(userPrompt, section, text string) string {
	var b strings.Builder
	b.WriteString(userPrompt)
	if focus := sectionFocus(section); focus != "" {
		b.WriteString("\n\n")
		b.WriteString(focus)
	}
	if section != "" {
		fmt.Fprintf(&b, "\n\nSection: %s", section)
	}
	fmt.Fprintf(&b, "\n\n<case>\n%s\n</case>", text)
	return b.String()
}
