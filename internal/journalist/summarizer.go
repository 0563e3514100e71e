package journalist

import (
	"strings"
	"unicode/utf8"

	"pressroom.app/pressroom/internal/model"
)

const (
	// HistoryWindow is how many of the latest turns a summary keeps.
	HistoryWindow = 6

	DefaultHistoryBudget = 800

	NoPriorExchange = "No prior exchange."
	Ellipsis        = "…"
)

// SummarizeHistory renders the last HistoryWindow turns, oldest first, as
// "- <Role>: <content>" lines. Output longer than budget runes is cut to
// budget and suffixed with Ellipsis. A budget <= 0 means DefaultHistoryBudget.
func SummarizeHistory(turns []model.ConversationTurn, budget int) string {
	if len(turns) == 0 {
		return NoPriorExchange
	}
	if budget <= 0 {
		budget = DefaultHistoryBudget
	}

	recent := turns
	if len(recent) > HistoryWindow {
		recent = recent[len(recent)-HistoryWindow:]
	}

	lines := make([]string, 0, len(recent))
	for _, t := range recent {
		lines = append(lines, "- "+t.Speaker.Label()+": "+t.Content)
	}
	text := strings.Join(lines, "\n")

	if utf8.RuneCountInString(text) <= budget {
		return text
	}
	return string([]rune(text)[:budget]) + Ellipsis
}
