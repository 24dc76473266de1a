// Package app wires the bhavcopy service together and manages its lifecycle.
//
// # Initialization Flow
//
//  1. Load configuration (defaults, YAML file, BHAV_* environment)
//  2. Initialize slog logging and OpenTelemetry
//  3. Resolve and create the downloads, reports and logs directories
//  4. Build the fetcher, report service and health service
//  5. Set up the chi router, middleware and handlers
//  6. Configure the HTTP server
//
// # Usage
//
//	a, err := app.NewApplication("bhavcopy.yaml")
//	if err != nil {
//	    return err
//	}
//	return a.Run()
//
// Run blocks until SIGINT or SIGTERM, then shuts the server down, flushes
// telemetry and closes the log file. Initialization errors are returned to
// the caller; the package never calls os.Exit.
package app
