package decode

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestResolveUTF8BOM(t *testing.T) {
	t.Parallel()

	data := append([]byte{0xef, 0xbb, 0xbf}, []byte("Datum;Betrag\n01.01.2024;-12,50\n")...)
	res := Resolve(data)
	require.Equal(t, "utf-8-sig", res.Encoding)
	require.Equal(t, ';', res.Delimiter)
	require.Equal(t, "Datum;Betrag\n01.01.2024;-12,50\n", res.Text)
}

func TestResolvePlainUTF8(t *testing.T) {
	t.Parallel()

	res := Resolve([]byte("Datum,Betrag\n"))
	require.Equal(t, "utf-8", res.Encoding)
	require.Equal(t, ',', res.Delimiter)
}

func TestResolveWindows1252(t *testing.T) {
	t.Parallel()

	// "Empfänger" with a cp1252 'ä' (0xE4) is invalid UTF-8.
	data := []byte("Empf\xe4nger;Betrag\n")
	res := Resolve(data)
	require.Equal(t, "cp1252", res.Encoding)
	require.Equal(t, "Empfänger;Betrag\n", res.Text)
}

func TestResolveNeverFails(t *testing.T) {
	t.Parallel()

	// 0x81 is invalid UTF-8 and unassigned in cp1252; decoding must still
	// produce text instead of failing.
	res := Resolve([]byte{'a', 0x81, 'b'})
	require.NotEmpty(t, res.Encoding)
	require.Equal(t, 3, utf8.RuneCountInString(res.Text))
}

func TestDetectDelimiter(t *testing.T) {
	t.Parallel()

	require.Equal(t, ';', DetectDelimiter("a;b,c;d\nx,y"))
	require.Equal(t, ',', DetectDelimiter("a,b,c\n"))
	require.Equal(t, '\t', DetectDelimiter("a\tb\tc"))
	require.Equal(t, ';', DetectDelimiter("plain text without separators"))
	require.Equal(t, ';', DetectDelimiter(""))
}

func TestRepairMojibake(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Empfänger", RepairMojibake("Empf�nger"))
	require.Equal(t, "Währung", RepairMojibake("WÃ¤hrung"))
	require.Equal(t, "Straße", RepairMojibake("StraÃŸe"))
	require.Equal(t, "unchanged", RepairMojibake("unchanged"))
}

func TestReadTable(t *testing.T) {
	t.Parallel()

	data := []byte("Datum;Auftraggeber/Empf\xe4nger;Betrag\n01.02.2024;REWE;-23,10\n02.02.2024;Arbeitgeber GmbH;2.100,00\n")
	table, res := ReadTable(data)
	require.Equal(t, "cp1252", res.Encoding)
	require.Equal(t, []string{"Datum", "Auftraggeber/Empfänger", "Betrag"}, table.Headers)
	require.Len(t, table.Rows, 2)
	require.Equal(t, "REWE", table.Cell(table.Rows[0], "Auftraggeber/Empfänger"))
	require.Equal(t, "2.100,00", table.Cell(table.Rows[1], "Betrag"))
}

func TestReadTableShortRows(t *testing.T) {
	t.Parallel()

	table, _ := ReadTable([]byte("a;b;c\n1;2\n"))
	require.Len(t, table.Rows, 1)
	require.Equal(t, "", table.Cell(table.Rows[0], "c"))
}
