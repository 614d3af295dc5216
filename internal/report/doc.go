// Package report renders run summaries and stored run history for the terminal.
package report
