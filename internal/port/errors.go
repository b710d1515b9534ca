package port

import "errors"

// Sentinel errors used across ports.
var (
	ErrAuditNotFound   = errors.New("audit not found")
	ErrAuditTerminal   = errors.New("audit already in a terminal state")
	ErrInvalidSeedURL  = errors.New("seed URL is not normalizable")
	ErrNonHTMLContent  = errors.New("non-HTML content")
	ErrAnalyzerMissing = errors.New("analyzer not registered")
	ErrEmptyResponse   = errors.New("empty response from reasoning service")
	ErrCancelled       = errors.New("audit cancelled")
)
