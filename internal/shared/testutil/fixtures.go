package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// HeaderA is the header row of an exchange A (BSE EQ_ISINCODE) bhavcopy.
const HeaderA = "SC_CODE,SC_NAME,SC_GROUP,SC_TYPE,OPEN,HIGH,LOW,CLOSE,LAST,PREVCLOSE,NO_TRADES,NO_OF_SHRS,NET_TURNOV,TDCLOINDI,ISIN_CODE"

// HeaderB is the header row of an exchange B bhavcopy.
const HeaderB = "SYMBOL,SERIES,OPEN,HIGH,LOW,CLOSE,LAST,PREVCLOSE,TOTTRDQTY,TOTTRDVAL,TIMESTAMP,TOTALTRADES,ISIN"

// SampleRowsA is a header plus three data rows in the exchange A layout.
var SampleRowsA = []string{
	HeaderA,
	"500002,AAA       ,A ,Q,10.00,12.00,9.00,11.00,11.00,10.50,100,2000,22000.00,,INE001A01001",
	"500003,BBB       ,B ,Q,5.00,6.00,4.00,5.00,5.00,5.10,10,300,1500.00,,INE002A01002",
	"500004,CCC       ,A ,Q,20.00,21.00,19.00,20.00,20.00,19.80,50,700,14000.00,,INE003A01003",
}

// SampleRowsB is a header plus three data rows in the exchange B layout.
var SampleRowsB = []string{
	HeaderB,
	"AAA,EQ,10,12,9,11,11,10.5,2000,22000,15-JAN-2026,100,INE001A01001",
	"BBB,EQ,5,6,4,5,5,5.1,300,1500,15-JAN-2026,10,INE002A01002",
	"CCC,EQ,20,21,19,20,20,19.8,700,14000,15-JAN-2026,50,INE003A01003",
}

// WriteBhavcopy writes rows as a comma-delimited file in a temp dir and
// returns its path.
func WriteBhavcopy(t *testing.T, rows []string) string {
	t.Helper()
	return WriteFile(t, "EQ_ISINCODE_150126.CSV", strings.Join(rows, "\n")+"\n")
}

// WriteRegistry writes a client registry in a temp dir and returns its path.
func WriteRegistry(t *testing.T, lines ...string) string {
	t.Helper()
	return WriteFile(t, "Clients.txt", strings.Join(lines, "\n")+"\n")
}

// WriteFile writes content to name inside a fresh temp dir.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}
