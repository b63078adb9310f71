package models

// Response fields holding each record type in Kasm API bodies.
const (
	UserField        = "user"
	UsersField       = "users"
	KasmField        = "kasm"
	KasmsField       = "kasms"
	SettingsField    = "settings"
	ImagesField      = "images"
	APIConfigsField  = "api_configs"
	PermissionsField = "permissions"
)
