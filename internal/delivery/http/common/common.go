package http_common

// ErrorResponse is the uniform failure body: a short human-readable message
// the client surfaces directly.
type ErrorResponse struct {
	Message string `json:"message"`
}
