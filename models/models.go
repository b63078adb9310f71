package models

import "github.com/google/uuid"

// ExtensionStatus is the state of a keepalive extension attempt.
type ExtensionStatus string

const (
	// ExtensionRaised is published after the temporary setting value was written.
	ExtensionRaised ExtensionStatus = "raised"
	// ExtensionExtended is published after a successful keepalive and restore.
	ExtensionExtended ExtensionStatus = "extended"
	// ExtensionQuotaReached is published when keepalive reported usage_reached.
	ExtensionQuotaReached ExtensionStatus = "quota_reached"
	// ExtensionFailed is published for any other error after the raise.
	ExtensionFailed ExtensionStatus = "failed"
)

// ExtensionEvent records one keepalive extension attempt. Events sharing an
// ID describe the same attempt.
type ExtensionEvent struct {
	ID             uuid.UUID       `json:"id"`
	Status         ExtensionStatus `json:"status"`
	KasmID         string          `json:"kasmId"`
	UserID         string          `json:"userId"`
	Username       string          `json:"username"`
	GroupID        string          `json:"groupId"`
	GroupSettingID string          `json:"groupSettingId"`
	OriginalValue  SettingValue    `json:"originalValue"`
	ExtendedValue  SettingValue    `json:"extendedValue"`
	Restored       bool            `json:"restored"`
	Error          string          `json:"error,omitempty"`
	Timestamp      int64           `json:"timestamp"` // unix milliseconds
}

// ExtensionsResponse holds a list of extension records.
type ExtensionsResponse struct {
	Extensions []ExtensionEvent `json:"extensions"`
}

// SessionsResponse holds a list of sessions.
type SessionsResponse struct {
	Sessions []Session `json:"sessions"`
}

// KeepaliveRequest is the body accepted by the session keepalive endpoint.
type KeepaliveRequest struct {
	Hours int `json:"hours"`
}
