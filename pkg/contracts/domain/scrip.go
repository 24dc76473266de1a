package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ScripRecord represents a single scrip's open/high/low/close figures for one
// trading session. It is created once per source row during extraction and
// is never modified afterwards.
type ScripRecord struct {
	Name  string          `json:"name" validate:"required"`
	Open  decimal.Decimal `json:"open"`
	High  decimal.Decimal `json:"high"`
	Low   decimal.Decimal `json:"low"`
	Close decimal.Decimal `json:"close"`
}

// OHLC returns the four price points in sheet column order.
func (r ScripRecord) OHLC() [4]decimal.Decimal {
	return [4]decimal.Decimal{r.Open, r.High, r.Low, r.Close}
}

// ClientPortfolio is a named set of scrip names loaded from the client
// registry. Scrip names match ScripRecord.Name by exact, case-sensitive
// equality.
type ClientPortfolio struct {
	Name   string              `json:"name" validate:"required"`
	Scrips map[string]struct{} `json:"-"`
}

// NewClientPortfolio builds a portfolio from a list of scrip names.
func NewClientPortfolio(name string, scrips []string) ClientPortfolio {
	set := make(map[string]struct{}, len(scrips))
	for _, s := range scrips {
		set[s] = struct{}{}
	}
	return ClientPortfolio{Name: name, Scrips: set}
}

// Holds reports whether the portfolio contains the named scrip.
func (p ClientPortfolio) Holds(scrip string) bool {
	_, ok := p.Scrips[scrip]
	return ok
}

// ScripList returns the portfolio's scrips sorted alphabetically.
func (p ClientPortfolio) ScripList() []string {
	list := make([]string, 0, len(p.Scrips))
	for s := range p.Scrips {
		list = append(list, s)
	}
	sort.Strings(list)
	return list
}
