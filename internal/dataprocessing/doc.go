// Package dataprocessing extracts scrip records from exchange bhavcopy files.
//
// Each supported exchange publishes a comma-delimited file whose columns
// differ. Layouts maps an exchange to the positions of the scrip name and
// its open, high, low and close figures; Extractor reads a file through that
// layout and returns one ScripRecord per data row in source order.
//
// # Usage
//
//	extractor := dataprocessing.NewExtractor(logger)
//	records, err := extractor.ExtractFile(ctx, "EQ_ISINCODE_150126.CSV", domain.ExchangeA)
//	if err != nil {
//	    return err
//	}
//
// # Error Handling
//
// Extraction stops at the first bad row. A row that is too short for the
// layout yields *errors.MalformedRowError and an OHLC cell that is not a
// decimal number yields *errors.NumericParseError. Both carry the 0-based
// source row index where the header is row 0.
package dataprocessing
