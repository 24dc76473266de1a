package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExchange(t *testing.T) {
	tests := []struct {
		input   string
		want    Exchange
		wantErr bool
	}{
		{"A", ExchangeA, false},
		{"b", ExchangeB, false},
		{"  a ", ExchangeA, false},
		{"C", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseExchange(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unsupported exchange")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestClientPortfolioHolds(t *testing.T) {
	p := NewClientPortfolio("Alpha", []string{"CCC", "AAA", "AAA"})

	assert.True(t, p.Holds("AAA"))
	assert.False(t, p.Holds("aaa"), "matching is case-sensitive")
	assert.False(t, p.Holds("BBB"))
	assert.Equal(t, []string{"AAA", "CCC"}, p.ScripList())
}

func TestReportSheets(t *testing.T) {
	rec := ScripRecord{Name: "AAA", Open: decimal.RequireFromString("10"), Close: decimal.RequireFromString("11")}
	r := &Report{
		Exchange: ExchangeA,
		Sheets: []Sheet{
			{Name: AggregateSheetName, Rows: []ScripRecord{rec}},
			{Name: "Alpha"},
		},
	}

	assert.Equal(t, AggregateSheetName, r.Aggregate().Name)
	assert.Equal(t, []string{AggregateSheetName, "Alpha"}, r.SheetNames())

	s, ok := r.Sheet("Alpha")
	require.True(t, ok)
	assert.Empty(t, s.Rows)
	_, ok = r.Sheet("Beta")
	assert.False(t, ok)

	assert.Equal(t, "10", rec.OHLC()[0].String())
	assert.Equal(t, AggregateSheetName, (&Report{}).Aggregate().Name)
}
