package types

// ErrorResponse is the body of every failed HTTP request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WindowList is the body of GET /windows.
type WindowList struct {
	Windows []WindowInfo `json:"windows"`
	Stats   Health       `json:"stats"`
}
