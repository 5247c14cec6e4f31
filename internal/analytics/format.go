package analytics

import "strconv"

func formatPaisa(paisa int64) string {
	return strconv.FormatInt(paisa, 10)
}
