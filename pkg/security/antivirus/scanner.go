package antivirus

import (
	"context"
)

// Verdict is the outcome of scanning one uploaded document.
type Verdict struct {
	Infected bool
	Threat   string // signature name when Infected
	Scanner  string
	Err      error // scanner failure; callers treat it as a rejection
}

// Rejected reports whether the upload must be refused.
func (v Verdict) Rejected() bool {
	return v.Infected || v.Err != nil
}

// Scanner inspects resume bytes before they reach blob storage.
type Scanner interface {
	Scan(ctx context.Context, filename string, data []byte) Verdict
	Name() string
}

// NoOpScanner accepts everything. Used when no clamd address is configured.
type NoOpScanner struct{}

var _ Scanner = NoOpScanner{}

func (NoOpScanner) Scan(context.Context, string, []byte) Verdict {
	return Verdict{Scanner: "noop"}
}

func (NoOpScanner) Name() string { return "noop" }

// New picks ClamAV when an address is configured.
func New(address string) Scanner {
	if address == "" {
		return NoOpScanner{}
	}
	return NewClamAVScanner(address, 0)
}
