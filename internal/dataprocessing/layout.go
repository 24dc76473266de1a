package dataprocessing

import (
	"github.com/BasioMeusPuga/BhavCopyParser/pkg/contracts/domain"
)

// ColumnLayout holds the 0-based column positions of the fields a bhavcopy
// row contributes to a ScripRecord.
type ColumnLayout struct {
	Name  int
	Open  int
	High  int
	Low   int
	Close int
}

// Layouts maps each supported exchange to its column layout.
// Supporting a new exchange means adding an entry here.
var Layouts = map[domain.Exchange]ColumnLayout{
	domain.ExchangeA: {Name: 1, Open: 4, High: 5, Low: 6, Close: 7},
	domain.ExchangeB: {Name: 0, Open: 2, High: 3, Low: 4, Close: 5},
}

// Width is the minimum number of columns a row needs for this layout.
func (l ColumnLayout) Width() int {
	w := l.Name
	for _, idx := range []int{l.Open, l.High, l.Low, l.Close} {
		if idx > w {
			w = idx
		}
	}
	return w + 1
}

// LayoutFor returns the layout registered for ex.
func LayoutFor(ex domain.Exchange) (ColumnLayout, bool) {
	l, ok := Layouts[ex]
	return l, ok
}
