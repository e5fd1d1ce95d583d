package generation

import "errors"

var (
	errMissingCaller = errors.New("caller identity is required")
	errEmptyResponse = errors.New("model returned no content")
)
