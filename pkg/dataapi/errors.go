package dataapi

import "fmt"

// Parameter names reported by MissingParameterError.
const (
	ParamEndpoint = "Endpoint"
	ParamQuery    = "Query"
)

// MissingParameterError reports a request that failed local validation
// before any network call was made.
type MissingParameterError struct {
	// Parameter is the name of the missing parameter, ParamEndpoint or
	// ParamQuery.
	Parameter string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("request is missing required parameter %q", e.Parameter)
}

// RequestError reports a transport-level failure during dispatch. It carries
// the endpoint addressed and the effective query that was sent, so callers
// can log or retry without re-parsing the message.
type RequestError struct {
	Endpoint string
	Query    Query
	Err      error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request to %s with query %v failed: %v", e.Endpoint, map[string]interface{}(e.Query), e.Err)
}

// Unwrap exposes the underlying transport error for errors.Is/As chains.
func (e *RequestError) Unwrap() error {
	return e.Err
}
