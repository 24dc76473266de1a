package domain

import (
	"fmt"
	"strings"
)

// Exchange identifies the source layout of an end-of-day market data file.
type Exchange string

const (
	// ExchangeA is the BSE "EQ_ISINCODE" bhavcopy layout.
	ExchangeA Exchange = "A"
	// ExchangeB is the NSE-style bhavcopy layout.
	ExchangeB Exchange = "B"
)

// Exchanges lists every supported exchange in report order.
var Exchanges = []Exchange{ExchangeA, ExchangeB}

// ParseExchange converts a user supplied tag into an Exchange.
func ParseExchange(s string) (Exchange, error) {
	ex := Exchange(strings.ToUpper(strings.TrimSpace(s)))
	if !ex.Valid() {
		return "", fmt.Errorf("unsupported exchange %q", s)
	}
	return ex, nil
}

// Valid reports whether the exchange is one of the supported layouts.
func (e Exchange) Valid() bool {
	for _, ex := range Exchanges {
		if e == ex {
			return true
		}
	}
	return false
}

func (e Exchange) String() string {
	return string(e)
}
