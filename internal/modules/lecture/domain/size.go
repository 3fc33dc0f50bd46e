package domain

import (
	"strconv"
	"strings"
)

var sizeUnits = []string{"Б", "КБ", "МБ", "ГБ"}

// FormatFileSize renders a byte count with one decimal, e.g. "1.5 МБ".
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Б"
	}

	value := float64(bytes)
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}

	formatted := strings.TrimSuffix(strconv.FormatFloat(value, 'f', 1, 64), ".0")
	return formatted + " " + sizeUnits[unit]
}
