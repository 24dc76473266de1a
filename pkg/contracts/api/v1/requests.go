// Package api contains the HTTP contract definitions for the bhavcopy report
// service. Version v1 is the current API version.
package api

// GenerateReportRequest asks the service to build workbooks for one trading
// date. Exchanges defaults to every configured exchange when empty. Inputs
// maps an exchange tag to a CSV path inside the server's downloads
// directory; exchanges without an input are fetched when Fetch is set and
// skipped otherwise. CustomURL must point at a configured source host.
type GenerateReportRequest struct {
	Date      string            `json:"date" validate:"required,bhavdate"`
	Exchanges []string          `json:"exchanges,omitempty" validate:"omitempty,dive,exchange"`
	Inputs    map[string]string `json:"inputs,omitempty" validate:"omitempty,dive,keys,exchange,endkeys,required"`
	Fetch     bool              `json:"fetch"`
	CustomURL string            `json:"custom_url,omitempty" validate:"omitempty,url"`
}

// ListReportsRequest filters the report listing.
type ListReportsRequest struct {
	Exchange string `json:"exchange" query:"exchange" validate:"omitempty,exchange"`
}
