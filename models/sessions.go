package models

// Image represents a workspace image.
type Image struct {
	ImageID      string `json:"image_id"`
	FriendlyName string `json:"friendly_name"`
}

// Session represents a running Kasm session. The API calls it a "kasm".
type Session struct {
	KasmID            string `json:"kasm_id"`
	StartDate         string `json:"start_date"`
	ExpirationDate    string `json:"expiration_date"`
	Image             Image  `json:"image"`
	OperationalStatus string `json:"operational_status"`
	UserID            string `json:"user_id"`
	Username          string `json:"username"`
}

// RequestKasmResponse is the body returned by public/request_kasm.
type RequestKasmResponse struct {
	KasmID       string `json:"kasm_id"`
	Username     string `json:"username"`
	Status       string `json:"status"`
	ShareID      string `json:"share_id"`
	KasmURL      string `json:"kasm_url"`
	SessionToken string `json:"session_token"`
}
