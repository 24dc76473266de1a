// Package validation checks run inputs before the pipeline touches them:
// source files, output directories, report file names requested over HTTP,
// and decoded API requests.
package validation
