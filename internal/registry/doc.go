// Package registry loads the client registry: a plain text file with one
// client per line in the form
//
//	NAME:SCRIP1;SCRIP2;SCRIP3
//
// Lines starting with '#' and blank lines are ignored. Malformed lines are
// skipped with a warning and recorded on the Registry. A duplicate client
// name is fatal. When the file is missing it is created from Template and
// the caller gets an empty registry whose Notice reports the fact.
package registry
