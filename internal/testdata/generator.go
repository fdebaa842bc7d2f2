// Package testdata builds sample bank exports for tests: German headers,
// legacy encodings and European number formats.
package testdata

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// GiroCSV returns a cp1252-encoded checking account export with German
// headers, semicolon delimiter and European amounts. It contains one
// outgoing transfer to the savings account (-500,00 on 02.03.2026).
func GiroCSV() []byte {
	text := strings.Join([]string{
		"Buchungstag;Auftraggeber/Empfänger;Verwendungszweck;Betrag;Währung",
		"01.03.2026;REWE Markt GmbH;Einkauf Lebensmittel;-54,23;EUR",
		"02.03.2026;Max Mustermann;Übertrag Tagesgeld;-500,00;EUR",
		"03.03.2026;Arbeitgeber AG;Gehalt März;2.400,00;EUR",
		"04.03.2026;Bäckerei Müller;Brötchen;-4,80;EUR",
		"",
	}, "\r\n")
	out, err := charmap.Windows1252.NewEncoder().Bytes([]byte(text))
	if err != nil {
		panic(err)
	}
	return out
}

// TagesgeldCSV returns a UTF-8 savings account export whose first row is the
// incoming leg of the transfer in GiroCSV.
func TagesgeldCSV() []byte {
	return []byte(strings.Join([]string{
		"Datum,Beschreibung,Wert",
		"02.03.2026,Übertrag von Girokonto,500.00",
		"15.03.2026,Zinsgutschrift,1.25",
		"",
	}, "\n"))
}

// BrokenCSV returns bytes with double-encoded umlauts and short rows, the
// kind of export the pipeline must survive.
func BrokenCSV() []byte {
	return []byte(strings.Join([]string{
		"Datum;EmpfÃ¤nger;Betrag",
		"05.03.2026;StraÃŸenbahn MÃ¼nchen;-3,40",
		"nur eine Zelle",
		"06.03.2026;BÃ¤ckerei am Markt;-7,90",
		"",
	}, "\n"))
}

// LargeCSV returns a UTF-8 export with n uniform rows, for batch tests.
func LargeCSV(n int) []byte {
	var b strings.Builder
	b.WriteString("Datum,Beschreibung,Betrag\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%02d.01.2026,Buchung %d,-%d.50\n", i%27+1, i+1, i+1)
	}
	return []byte(b.String())
}
