package cli

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
)

// FormatExecutionDuration formats a time.Duration for display.
// It shows microseconds for durations less than a millisecond, milliseconds
// for durations less than a second, and the default string representation
// otherwise.
func FormatExecutionDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	} else if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

const (
	// HexTruncationLimit is the hex digit threshold from which an operand
	// dump is truncated to avoid cluttering the terminal. A 1536-bit value
	// is 384 hex digits.
	HexTruncationLimit = 96
	// HexDisplayEdges specifies the number of hex characters to display at
	// the beginning and end of a truncated value.
	HexDisplayEdges = 40
	// SpinnerRefreshRate defines the refresh frequency of the wait spinner.
	SpinnerRefreshRate = 100 * time.Millisecond
)

// TruncateHex shortens a long hex string for terminal display, keeping the
// leading and trailing edges. Short strings pass through unchanged.
func TruncateHex(s string) string {
	if len(s) <= HexTruncationLimit {
		return s
	}
	return fmt.Sprintf("%s...%s (%d hex digits)", s[:HexDisplayEdges], s[len(s)-HexDisplayEdges:], len(s))
}

// Spinner abstracts the terminal spinner shown while vectors run on the
// hardware, decoupling the presenter from a specific implementation.
type Spinner interface {
	Start()
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts the spinner library to the Spinner interface.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) { rs.s.Suffix = suffix }

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], SpinnerRefreshRate, options...)
	return &realSpinner{s}
}

// nopSpinner is used in quiet mode and when output is not a terminal.
type nopSpinner struct{}

func (nopSpinner) Start()                     {}
func (nopSpinner) Stop()                      {}
func (nopSpinner) UpdateSuffix(suffix string) {}
