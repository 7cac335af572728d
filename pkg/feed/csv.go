package feed

import "strings"

// ParseCSV splits published CSV text into trimmed fields.
//
// Each line is scanned once, left to right. A quote toggles quoted mode unless
// it is immediately followed by another quote, which yields one literal quote.
// Commas outside quotes end a field. Quoted fields can't span lines, and rows
// are not padded to a common length. Blank lines are kept as a single empty
// field so row positions match the sheet.
func ParseCSV(text string) [][]string {
	rows := [][]string{}

	for _, line := range strings.Split(text, "\n") {
		rows = append(rows, parseLine(strings.TrimSuffix(line, "\r")))
	}

	return rows
}

func parseLine(line string) []string {
	fields := []string{}
	var field strings.Builder
	inQuotes := false
	runes := []rune(line)

	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '"':
			if i+1 < len(runes) && runes[i+1] == '"' {
				field.WriteRune('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(field.String()))
			field.Reset()
		default:
			field.WriteRune(c)
		}
	}

	return append(fields, strings.TrimSpace(field.String()))
}

// WriteCSV serializes rows so that ParseCSV reads them back unchanged.
// Quotes are always doubled; only fields containing a comma are wrapped in
// quotes, since an empty quoted field would read back as a literal quote.
// Rows are separated by newlines with no trailing newline.
func WriteCSV(rows [][]string) string {
	var b strings.Builder
	for r, row := range rows {
		if r > 0 {
			b.WriteByte('\n')
		}
		for i, field := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			escaped := strings.ReplaceAll(field, `"`, `""`)
			if strings.Contains(field, ",") {
				b.WriteByte('"')
				b.WriteString(escaped)
				b.WriteByte('"')
				continue
			}
			b.WriteString(escaped)
		}
	}
	return b.String()
}
