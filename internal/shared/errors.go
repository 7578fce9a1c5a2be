package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Legacy source errors
	ErrConnection = fmt.Errorf("legacy database unreachable")

	// Store and ledger errors
	ErrNotFound = fmt.Errorf("entity not found")
	ErrStore    = fmt.Errorf("store operation failed")

	// Media errors
	ErrNoMediaURL = fmt.Errorf("no file URL found")
	ErrDownload   = fmt.Errorf("download failed")
	ErrStorage    = fmt.Errorf("file storage failed")

	// Run control errors
	ErrRunInProgress   = fmt.Errorf("another migration run is in progress")
	ErrUnknownCategory = fmt.Errorf("unknown migration type")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
