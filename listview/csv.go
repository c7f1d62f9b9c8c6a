// ABOUTME: CSV encoding for list exports
// ABOUTME: Header cells are quoted only when needed, every data cell is quoted
package listview

import (
	"bytes"
	"strings"
)

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func headerCell(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return quote(s)
	}
	return s
}

// encodeCSV writes a header row and one fully quoted row per record,
// separated by newlines.
func encodeCSV(header []string, rows [][]string) []byte {
	var buf bytes.Buffer
	for i, h := range header {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(headerCell(h))
	}
	for _, row := range rows {
		buf.WriteByte('\n')
		for i, cell := range row {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(quote(cell))
		}
	}
	return buf.Bytes()
}
