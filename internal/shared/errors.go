package shared

import "fmt"

var (
	// Parse and input errors: fatal for the run that hits them
	ErrParse           = fmt.Errorf("malformed playlist line")
	ErrEmptyPlaylist   = fmt.Errorf("playlist contains no entries")
	ErrNoBatchFiles    = fmt.Errorf("no batch files found")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrMissingArgument = fmt.Errorf("missing required argument")

	// Authentication errors: fatal
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrAuthFailed         = fmt.Errorf("authentication failed")
	ErrTokenExpired       = fmt.Errorf("access token expired")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Per-track and per-chunk errors: logged, run continues
	ErrTrackNotFound = fmt.Errorf("track not found")
	ErrNoQuery       = fmt.Errorf("no usable search metadata")
	ErrSubmission    = fmt.Errorf("playlist submission failed")

	// API and service errors
	ErrAPIRequest       = fmt.Errorf("API request failed")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")
)
