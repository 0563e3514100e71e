package journalist

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Delimiter protocol. Changing either tag breaks every deployed backend prompt.
const (
	QuestionOpen  = "<QUESTION>"
	QuestionClose = "<eoa>"

	EmptyOutput = "[Empty model output]"

	fallbackRunes = 500
)

var (
	questionSpan = regexp.MustCompile(`(?is)` + regexp.QuoteMeta(QuestionOpen) + `(.*?)` + regexp.QuoteMeta(QuestionClose))
	questionOpen = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(QuestionOpen))
	questionEnd  = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(QuestionClose))
)

// ExtractQuestion reduces raw model output to one question. It never fails
// and never returns an empty string:
//  1. content of the last non-empty <QUESTION>...<eoa> span
//  2. text after the last <QUESTION> when the end tag is missing
//  3. the first 500 characters of the trimmed text, tags removed
//  4. EmptyOutput
func ExtractQuestion(raw string) string {
	matches := questionSpan.FindAllStringSubmatch(raw, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		if q := strings.TrimSpace(matches[i][1]); q != "" {
			return q
		}
	}

	if locs := questionOpen.FindAllStringIndex(raw, -1); len(locs) > 0 {
		tail := raw[locs[len(locs)-1][1]:]
		tail = questionEnd.ReplaceAllString(tail, "")
		if q := strings.TrimSpace(tail); q != "" {
			return q
		}
	}

	trimmed := strings.TrimSpace(questionEnd.ReplaceAllString(questionOpen.ReplaceAllString(raw, ""), ""))
	if trimmed == "" {
		return EmptyOutput
	}
	if utf8.RuneCountInString(trimmed) > fallbackRunes {
		return string([]rune(trimmed)[:fallbackRunes])
	}
	return trimmed
}

// IsClosing reports whether the model ended the conference with END.
func IsClosing(question string) bool {
	q := strings.Trim(strings.TrimSpace(question), ".!`'\"")
	return strings.EqualFold(q, "END")
}
