package journalist

import (
	"fmt"
	"strings"

	"pressroom.app/pressroom/internal/model"
)

const baseSystemTemplate = `You are taking part in an interactive press conference simulation.
You are the journalist. You are questioning a guest who is a %s.
The topic of the conference is: %s.

Global rules:
- Ask exactly ONE question per turn, never several.
- Your question MUST be wrapped as: ` + QuestionOpen + ` your question ` + QuestionClose + `
- Never answer on the guest's behalf and never write the guest's lines.
- Keep the conversation fluid and coherent with what was already said.
- If the guest says "fin", "merci", "thanks" or "the end", reply with ` + QuestionOpen + `END` + QuestionClose + `.`

// BuildPrompt renders the system and user messages for one journalist turn.
// It is pure: the same inputs always produce the same prompt.
func BuildPrompt(p model.Persona, topic, guestRole, speech, historySummary string) model.Prompt {
	return model.Prompt{
		System: buildSystem(p, topic, guestRole),
		User:   buildUser(topic, guestRole, speech, historySummary),
	}
}

func buildSystem(p model.Persona, topic, guestRole string) string {
	var b strings.Builder
	fmt.Fprintf(&b, baseSystemTemplate, orDefault(guestRole, "guest"), orDefault(topic, "unspecified"))

	b.WriteString("\n\n")
	fmt.Fprintf(&b, "You are **%s**. %s\n", p.DisplayName, strings.TrimSpace(p.Description))
	if len(p.ToneRules) > 0 {
		b.WriteString("\nPersona rules:\n")
		for _, rule := range p.ToneRules {
			fmt.Fprintf(&b, "- %s\n", strings.TrimSpace(rule))
		}
	}
	fmt.Fprintf(&b, "- The question MUST be between %s and %s.\n", QuestionOpen, QuestionClose)
	if p.Example != "" {
		fmt.Fprintf(&b, "\nExample of your style:\n%s%s%s\n", QuestionOpen, strings.TrimSpace(p.Example), QuestionClose)
	}
	return strings.TrimSpace(b.String())
}

func buildUser(topic, guestRole, speech, historySummary string) string {
	var b strings.Builder
	b.WriteString("Conference context:\n")
	fmt.Fprintf(&b, "- Topic: %s\n", topic)
	fmt.Fprintf(&b, "- Guest role: %s\n\n", guestRole)

	b.WriteString("Opening speech (constant reference):\n")
	fmt.Fprintf(&b, "\"\"\"%s\"\"\"\n\n", speech)

	b.WriteString("Summary of the latest exchanges:\n")
	b.WriteString(historySummary)
	b.WriteString("\n\n")

	b.WriteString("Task:\n")
	b.WriteString("1. Identify the points that are still ambiguous or unexplored.\n")
	b.WriteString("2. Decide whether to follow up on the opening speech or on the guest's last reply.\n")
	fmt.Fprintf(&b, "3. Ask ONE new, useful and coherent question, wrapped as %s ... %s\n", QuestionOpen, QuestionClose)
	return b.String()
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
