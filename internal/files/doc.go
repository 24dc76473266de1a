// Package files retrieves bhavcopies and finds files on disk.
//
// Fetcher downloads the bhavcopy for an exchange and date from a configured
// URL template, stores it under downloads/<ddmmyy>/ and unpacks the first
// entry of the zip next to it. A 404 from the source is not an error: Fetch
// returns an empty path meaning the file has not been published.
//
// Discovery lists workbooks and CSV files in a directory.
//
// Example usage:
//
//	fetcher := files.NewFetcher(cfg, nil, logger)
//	csvPath, err := fetcher.Fetch(ctx, domain.ExchangeA, date)
//	if err != nil {
//	    return err
//	}
//	if csvPath == "" {
//	    // not published yet
//	}
package files
