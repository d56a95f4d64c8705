package model

import "errors"

var (
	// ErrMissingFields indicates a required input field was not provided
	ErrMissingFields = errors.New("all fields are required")

	// ErrRateLimited indicates the exchange-rate API returned 429
	ErrRateLimited = errors.New("rate limit exceeded on exchange-rate API")

	// ErrUnauthorized indicates an invalid or missing API key
	ErrUnauthorized = errors.New("exchange-rate API key invalid or expired")

	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrTimeout indicates the upstream request timed out
	ErrTimeout = errors.New("timeout calling exchange-rate API")

	// ErrInvalidResponse indicates the exchange-rate API returned an unusable body
	ErrInvalidResponse = errors.New("invalid response from exchange-rate API")

	// ErrReportNotFound indicates the report does not exist
	ErrReportNotFound = errors.New("report not found")

	// ErrBidNotFound indicates the bid does not exist
	ErrBidNotFound = errors.New("bid not found")

	// ErrInvalidProgress indicates a progress value outside 0-100
	ErrInvalidProgress = errors.New("progress is required and must be a number between 0 and 100")

	// ErrInvalidRating indicates a rating outside 1-5
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrInvalidStatus indicates an unknown report status value
	ErrInvalidStatus = errors.New("invalid status")

	// ErrTenderExists indicates the report already has an open tender
	ErrTenderExists = errors.New("report already has a tender")

	// ErrInvalidDeadline indicates a tender deadline that is not RFC3339
	ErrInvalidDeadline = errors.New("deadline must be an RFC3339 timestamp")
)
