package catalog

import "strings"

// mojibake maps the corrupted sequences that appear when the dictionary's
// UTF-8 labels are decoded as Latin-1 a second time. Each accented letter
// becomes "Ã" followed by one more byte; where that byte has no printable
// form (a soft hyphen for í, C1 controls for the capitals) it is escaped.
var mojibake = strings.NewReplacer(
	"Ã¡", "á",
	"Ã©", "é",
	"Ã\u00ad", "í",
	"Ã³", "ó",
	"Ãº", "ú",
	"Ã±", "ñ",
	"Ã\u0081", "Á",
	"Ã\u0089", "É",
	"Ã\u008d", "Í",
	"Ã\u0093", "Ó",
	"Ã\u009a", "Ú",
	"Ã\u0091", "Ñ",
)

// RepairEncoding undoes double-decoded accents in free-text values such as
// country names and classification labels. Clean strings pass through.
func RepairEncoding(s string) string {
	if !strings.Contains(s, "Ã") {
		return s
	}
	return mojibake.Replace(s)
}
