// Package envelope defines the uniform response wrapper returned by every
// API endpoint: {success, data, error, message}.
package envelope

// Response is the wire shape of every API response body.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// OK wraps data in a successful response.
func OK(data interface{}) *Response {
	return &Response{Success: true, Data: data}
}

// OKMsg wraps data in a successful response with a human-readable message.
func OKMsg(data interface{}, message string) *Response {
	return &Response{Success: true, Data: data, Message: message}
}

// Err wraps an error string in a failed response.
func Err(msg string) *Response {
	return &Response{Success: false, Error: msg}
}
