package eurotab

import (
	"regexp"
	"strings"
	"time"

	"github.com/nao1215/eurotab/domain/model"
)

// columnKind is the content class of a data column.
type columnKind int

const (
	columnKindText columnKind = iota
	columnKindNumber
	columnKindPercent
	columnKindDate
)

// European number shapes: grouped thousands or plain digits, comma decimals.
var europeanNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[-+]?\d{1,3}(\.\d{3})+(,\d+)?$`),
	regexp.MustCompile(`^[-+]?\d+(,\d+)?$`),
	regexp.MustCompile(`^[-+]?,\d+$`),
}

// Dotted dates look like grouped numbers and must be recognised first.
var europeanDatePatterns = []struct {
	pattern *regexp.Regexp
	formats []string
}{
	{
		regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.\d{4}$`),
		[]string{"2.1.2006", "02.01.2006"},
	},
	{
		regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`),
		[]string{"2/1/2006", "02/01/2006"},
	},
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
		[]string{"2006-01-02"},
	},
}

// isEuropeanDate checks if a string value represents a calendar date
func isEuropeanDate(value string) bool {
	value = strings.TrimSpace(value)
	for _, dp := range europeanDatePatterns {
		if !dp.pattern.MatchString(value) {
			continue
		}
		for _, format := range dp.formats {
			if _, err := time.Parse(format, value); err == nil {
				return true
			}
		}
	}
	return false
}

// isEuropeanNumber checks the shape of a number before the percent sign.
func isEuropeanNumber(value string) bool {
	for _, p := range europeanNumberPatterns {
		if p.MatchString(value) {
			return true
		}
	}
	return false
}

// inferColumnKind classifies a column from its cell texts. Blank cells and
// null tokens are ignored; any text cell makes the whole column text.
func inferColumnKind(values []string, nulls map[string]struct{}) columnKind {
	hasNumber := false
	hasPercent := false
	hasDate := false

	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := nulls[value]; ok {
			continue
		}

		if isEuropeanDate(value) {
			hasDate = true
			continue
		}

		if strings.HasSuffix(value, "%") {
			if isEuropeanNumber(strings.TrimSpace(strings.TrimSuffix(value, "%"))) {
				hasPercent = true
				continue
			}
			return columnKindText
		}

		if isEuropeanNumber(value) {
			hasNumber = true
			continue
		}
		return columnKindText
	}

	// Priority: DATE > PERCENT > NUMBER
	switch {
	case hasDate:
		return columnKindDate
	case hasPercent:
		return columnKindPercent
	case hasNumber:
		return columnKindNumber
	default:
		return columnKindText
	}
}

// inferNumericFields returns the labels of the header columns whose data
// cells are all European numbers or percentages. The entity column, blank
// labels, and repeated labels are skipped.
func inferNumericFields(header model.Header, records []model.Record, entityColumn int, nullTokens []string) []string {
	nulls := make(map[string]struct{}, len(nullTokens))
	for _, tok := range nullTokens {
		nulls[strings.TrimSpace(tok)] = struct{}{}
	}

	seen := make(map[string]bool, len(header))
	var fields []string
	for i, label := range header {
		label = strings.TrimSpace(label)
		if i == entityColumn || label == "" || seen[label] {
			continue
		}
		seen[label] = true

		values := make([]string, 0, len(records))
		for _, record := range records {
			values = append(values, record.Cell(i))
		}
		if !hasContent(values, nulls) {
			continue
		}

		switch inferColumnKind(values, nulls) {
		case columnKindNumber, columnKindPercent:
			fields = append(fields, label)
		}
	}
	return fields
}

// hasContent reports whether at least one value is a real cell.
func hasContent(values []string, nulls map[string]struct{}) bool {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := nulls[v]; ok {
			continue
		}
		return true
	}
	return false
}
