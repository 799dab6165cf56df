package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrForbidden        = fmt.Errorf("administrator access required")
	ErrInvalidToken     = fmt.Errorf("invalid token")

	// API and transport errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrTransport          = fmt.Errorf("transport error")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Client-side flow errors
	ErrValidation     = fmt.Errorf("validation failed")
	ErrNotFound       = fmt.Errorf("not found")
	ErrCancelled      = fmt.Errorf("cancelled")
	ErrSubmitInFlight = fmt.Errorf("submission already in progress")
	ErrStaleSubmit    = fmt.Errorf("stale form submission")
	ErrNoCollections  = fmt.Errorf("no collections")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
