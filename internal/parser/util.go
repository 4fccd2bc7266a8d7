package parser

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/insightdelivered/extrato-parser/internal/models"
)

// parseAmount converts a Brazilian-formatted number such as "-1.883,12" to a
// decimal. "." is the thousands separator and "," the decimal separator.
func parseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return amount, nil
}

// formatDate builds a DD/MM/YYYY date from its parts, zero-padding the day.
func formatDate(day, month, year string) string {
	if len(day) == 1 {
		day = "0" + day
	}
	return day + "/" + month + "/" + year
}

// lower folds s to lower case using Portuguese casing rules, so accented
// capitals in statements ("TRANSFERÊNCIA") match lower-case keywords.
// A Caser is stateful, so a new one is built per call.
func lower(s string) string {
	return cases.Lower(language.BrazilianPortuguese).String(s)
}

func upper(s string) string {
	return cases.Upper(language.BrazilianPortuguese).String(s)
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}

// lineTracer records per-line parse outcomes for the debug trace.
type lineTracer struct {
	lines []models.DebugLine
}

func (t *lineTracer) record(num int, text, result, reason string) {
	t.lines = append(t.lines, models.DebugLine{
		LineNum: num,
		Text:    text,
		Result:  result,
		Reason:  reason,
	})
}

// normalizeSpaces turns every Unicode space separator into an ASCII space.
// Statements often write "R$\u00a044,99" with a no-break space, which the
// line grammars' \s does not match.
func normalizeSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if r != ' ' && unicode.Is(unicode.Zs, r) {
			return ' '
		}
		return r
	}, s)
}

// splitLines splits the full document text into trimmed lines. Blank lines are
// kept so that line numbers in the trace match the input.
func splitLines(text string) []string {
	lines := strings.Split(normalizeSpaces(text), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return lines
}
