// Package decode turns raw bank-export bytes into a RawTable. It resolves
// the character encoding, sniffs the field delimiter and repairs known
// German mojibake before any column mapping happens.
package decode

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/mbeier/kontoscan/internal/model"
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// Result reports how a file's bytes were interpreted.
type Result struct {
	Text      string
	Encoding  string
	Delimiter rune
}

// charsets tried after the UTF-8 BOM check, in order of likelihood for
// German exports. The first decoding without a replacement character wins.
var charsets = []struct {
	name string
	enc  *charmap.Charmap
}{
	{"utf-8", nil},
	{"cp1252", charmap.Windows1252},
	{"iso-8859-1", charmap.ISO8859_1},
	{"iso-8859-15", charmap.ISO8859_15},
}

// Resolve decodes file bytes into text. It never fails: if no encoding
// produces clean text, the bytes are decoded as cp1252 with lossy
// substitution. The delimiter is sniffed from the first decoded line.
func Resolve(data []byte) Result {
	res := Result{}
	if bytes.HasPrefix(data, utf8BOM) {
		res.Text = string(data[len(utf8BOM):])
		res.Encoding = "utf-8-sig"
	} else {
		for _, cs := range charsets {
			var decoded string
			if cs.enc == nil {
				decoded = string(data)
			} else {
				decoded = decodeCharmap(data, cs.enc)
			}
			if !strings.ContainsRune(decoded, '�') {
				res.Text = decoded
				res.Encoding = cs.name
				break
			}
		}
		if res.Encoding == "" {
			res.Text = decodeCharmap(data, charmap.Windows1252)
			res.Encoding = "cp1252 (fallback)"
		}
	}
	res.Delimiter = DetectDelimiter(res.Text)
	return res
}

func decodeCharmap(data []byte, cm *charmap.Charmap) string {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		b.WriteRune(cm.DecodeByte(c))
	}
	return b.String()
}

// delimiters are tried in order; ties in the count resolve to the earlier
// candidate.
var delimiters = []rune{';', ',', '\t', '|'}

// DetectDelimiter inspects only the first line of text and returns the
// candidate with the highest occurrence count, defaulting to ';' when no
// candidate occurs at all.
func DetectDelimiter(text string) rune {
	firstLine, _, _ := strings.Cut(text, "\n")
	best := ';'
	bestCount := 0
	for _, d := range delimiters {
		if n := strings.Count(firstLine, string(d)); n > bestCount {
			best = d
			bestCount = n
		}
	}
	return best
}

// ReadTable decodes data and parses it as delimited text. Malformed lines
// are skipped; the first parsable record becomes the header row. Mojibake
// repair is applied to every header and cell.
func ReadTable(data []byte) (*model.RawTable, Result) {
	res := Resolve(data)

	r := csv.NewReader(strings.NewReader(res.Text))
	r.Comma = res.Delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	table := &model.RawTable{}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		for i := range rec {
			rec[i] = RepairMojibake(rec[i])
		}
		if table.Headers == nil {
			table.Headers = rec
			continue
		}
		table.Rows = append(table.Rows, rec)
	}
	return table, res
}
