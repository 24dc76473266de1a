package exporter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BasioMeusPuga/BhavCopyParser/pkg/contracts/domain"
)

func TestWriteSheetCSV(t *testing.T) {
	sheet := domain.Sheet{Name: "Alpha", Rows: []domain.ScripRecord{
		rec("AAA", "10.05", "12", "9", "11.50"),
		rec("C,C", "20", "21", "19", "20"),
	}}

	t.Run("plain", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteSheetCSV(&buf, sheet, CSVOptions{}))

		want := "SCRIP NAME,OPEN,HIGH,LOW,CLOSE\n" +
			"AAA,10.05,12,9,11.5\n" +
			"\"C,C\",20,21,19,20\n"
		assert.Equal(t, want, buf.String())
	})

	t.Run("bom prefix", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteSheetCSV(&buf, domain.Sheet{Name: "Empty"}, CSVOptions{BOMPrefix: true}))

		assert.True(t, bytes.HasPrefix(buf.Bytes(), utf8BOM))
		assert.Equal(t, "SCRIP NAME,OPEN,HIGH,LOW,CLOSE\n", buf.String()[len(utf8BOM):])
	})
}
