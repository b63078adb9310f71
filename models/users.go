package models

// User represents a Kasm user and the groups it belongs to.
type User struct {
	UserID   string  `json:"user_id"`
	Username string  `json:"username"`
	Groups   []Group `json:"groups"`
}

// Group represents a Kasm group. Settings is filled in once when the owning
// user is fetched and is not refreshed afterwards.
type Group struct {
	GroupID  string    `json:"group_id"`
	Name     string    `json:"name"`
	Settings []Setting `json:"-"`
}

// Setting returns the group setting with the given name, or nil.
func (g *Group) Setting(name string) *Setting {
	for i := range g.Settings {
		if g.Settings[i].Name == name {
			return &g.Settings[i]
		}
	}
	return nil
}

// APIConfig represents an API key configuration.
type APIConfig struct {
	APIID    string  `json:"api_id"`
	Name     string  `json:"name"`
	APIKey   string  `json:"api_key"`
	Enabled  bool    `json:"enabled"`
	ReadOnly bool    `json:"read_only"`
	Created  string  `json:"created"`
	LastUsed string  `json:"last_used"`
	Expires  *string `json:"expires"`
}

// Permission represents a single permission granted to a group or API config.
type Permission struct {
	GroupPermissionID     string  `json:"group_permission_id"`
	GroupID               *string `json:"group_id"`
	PermissionName        string  `json:"permission_name"`
	PermissionDescription string  `json:"permission_description"`
	PermissionID          *int    `json:"permission_id"`
}
