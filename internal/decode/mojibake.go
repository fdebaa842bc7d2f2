package decode

import "strings"

// mojibakeFixes maps byte sequences produced by common encoding mix-ups back
// to the intended German characters. The list is ordered and evaluated
// first-match-wins; repair is best effort, not guaranteed correct (the
// replacement character most often stands for a lost 'ä' in headers like
// "Empfänger" or "Währung").
var mojibakeFixes = []struct {
	corrupted string
	fixed     string
}{
	// UTF-8 read as an 8-bit charset (double-encoding).
	{"Ã¼", "ü"},
	{"Ã¶", "ö"},
	{"Ã¤", "ä"},
	{"ÃŸ", "ß"},
	{"Ãœ", "Ü"},
	{"Ã–", "Ö"},
	{"Ã„", "Ä"},
	{"Â°", "°"},
	{"Â€", "€"},
	// Lossy decoding leftovers.
	{"�", "ä"},
}

// RepairMojibake applies the fix table to s in order.
func RepairMojibake(s string) string {
	for _, f := range mojibakeFixes {
		s = strings.ReplaceAll(s, f.corrupted, f.fixed)
	}
	return s
}
