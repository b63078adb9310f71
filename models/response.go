package models

// Response is the envelope written by the HTTP API.
type Response struct {
	Success      int         `json:"success"`
	ErrorCode    string      `json:"error_code,omitempty"`
	ErrorDetails string      `json:"error_details,omitempty"`
	Data         interface{} `json:"data,omitempty"`
}

// KasmError is the error body the Kasm API returns alongside failed calls.
type KasmError struct {
	ErrorMessage string `json:"error_message"`
}
