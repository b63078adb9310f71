// Package kasmtest provides an in-memory Kasm API for tests.
package kasmtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/EO-DataHub/eodhp-kasm-services/models"
)

const (
	APIKey       = "test-key"
	APIKeySecret = "test-secret"
	ConfigName   = "automation"
)

// Call is a request received by the fake server, with the API key pair
// removed from the body.
type Call struct {
	Path string
	Body map[string]any
}

// Server is a fake Kasm API. Fields may be changed between calls.
type Server struct {
	*httptest.Server

	mu sync.Mutex

	Granted      []string
	Configs      []models.APIConfig
	Sessions     []models.Session
	Users        map[string]models.User
	Settings     map[string][]models.Setting
	Images       []models.Image
	UsageReached bool

	// Fail makes a path answer with the given status code.
	Fail map[string]int

	calls []Call
}

// NewServer starts a fake Kasm API that grants every permission the client
// needs. It is closed when the test ends.
func NewServer(t *testing.T) *Server {
	t.Helper()

	s := &Server{
		Granted: []string{"User", "Users Auth Session", "Images View", "Users View"},
		Configs: []models.APIConfig{
			{APIID: "cfg-1", Name: ConfigName, APIKey: APIKey, Enabled: true},
		},
		Users:    map[string]models.User{},
		Settings: map[string][]models.Setting{},
		Fail:     map[string]int{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// AddUser registers a user in a single group with the given keepalive value.
func (s *Server) AddUser(userID, username, groupID string, keepalive models.SettingValue) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Users[userID] = models.User{
		UserID:   userID,
		Username: username,
		Groups:   []models.Group{{GroupID: groupID, Name: groupID}},
	}
	s.Settings[groupID] = []models.Setting{
		{
			GroupID:        groupID,
			GroupSettingID: groupID + "-keepalive",
			Name:           models.KeepaliveSetting,
			Description:    "Default keepalive expiration in seconds",
			Value:          keepalive,
		},
	}
}

// Setting returns the current value of a group setting.
func (s *Server) Setting(groupID, name string) models.SettingValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, setting := range s.Settings[groupID] {
		if setting.Name == name {
			return setting.Value
		}
	}
	return models.SettingValue{}
}

// Calls returns every request received so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsTo returns the requests received for one path, e.g. "public/keepalive".
func (s *Server) CallsTo(path string) []Call {
	var calls []Call
	for _, c := range s.Calls() {
		if c.Path == path {
			calls = append(calls, c)
		}
	}
	return calls
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/api/")

	body := map[string]any{}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	if body["api_key"] != APIKey || body["api_key_secret"] != APIKeySecret {
		writeJSON(w, http.StatusForbidden, map[string]any{"error_message": "Access Denied"})
		return
	}
	delete(body, "api_key")
	delete(body, "api_key_secret")
	s.calls = append(s.calls, Call{Path: path, Body: body})

	if status, ok := s.Fail[path]; ok {
		writeJSON(w, status, map[string]any{"error_message": "forced failure"})
		return
	}

	switch path {
	case "admin/get_api_configs":
		writeJSON(w, http.StatusOK, map[string]any{models.APIConfigsField: s.Configs})

	case "admin/get_permissions_group":
		permissions := make([]models.Permission, len(s.Granted))
		for i, name := range s.Granted {
			permissions[i] = models.Permission{GroupPermissionID: "perm-" + name, PermissionName: name}
		}
		writeJSON(w, http.StatusOK, map[string]any{models.PermissionsField: permissions})

	case "public/get_kasms":
		writeJSON(w, http.StatusOK, map[string]any{models.KasmsField: s.Sessions})

	case "public/get_kasm_status":
		for _, session := range s.Sessions {
			if session.KasmID == body["kasm_id"] {
				writeJSON(w, http.StatusOK, map[string]any{models.KasmField: session})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"error_message": "Kasm not found"})

	case "public/get_user":
		target, _ := body["target_user"].(map[string]any)
		user, ok := s.Users[asString(target["user_id"])]
		if !ok {
			writeJSON(w, http.StatusOK, map[string]any{"error_message": "User not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{models.UserField: user})

	case "public/get_users":
		users := make([]models.User, 0, len(s.Users))
		for _, user := range s.Users {
			users = append(users, user)
		}
		writeJSON(w, http.StatusOK, map[string]any{models.UsersField: users})

	case "public/get_images":
		writeJSON(w, http.StatusOK, map[string]any{models.ImagesField: s.Images})

	case "admin/get_settings_group":
		target, _ := body["target_group"].(map[string]any)
		settings := s.Settings[asString(target["group_id"])]
		if settings == nil {
			settings = []models.Setting{}
		}
		writeJSON(w, http.StatusOK, map[string]any{models.SettingsField: settings})

	case "admin/update_settings_group":
		s.updateSetting(w, body)

	case "public/keepalive":
		writeJSON(w, http.StatusOK, map[string]any{"usage_reached": s.UsageReached})

	case "public/destroy_kasm":
		kept := s.Sessions[:0]
		for _, session := range s.Sessions {
			if session.KasmID != body["kasm_id"] {
				kept = append(kept, session)
			}
		}
		s.Sessions = kept
		writeJSON(w, http.StatusOK, map[string]any{})

	case "public/request_kasm":
		session := models.Session{
			KasmID:            "kasm-new",
			Image:             models.Image{ImageID: asString(body["image_id"])},
			OperationalStatus: "starting",
			UserID:            asString(body["user_id"]),
		}
		s.Sessions = append(s.Sessions, session)
		writeJSON(w, http.StatusOK, map[string]any{"kasm_id": session.KasmID, "status": "starting"})

	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"error_message": "unknown path " + path})
	}
}

func (s *Server) updateSetting(w http.ResponseWriter, body map[string]any) {
	group, _ := body["target_group"].(map[string]any)
	target, _ := body["target_setting"].(map[string]any)

	raw, err := json.Marshal(target["value"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error_message": err.Error()})
		return
	}
	var value models.SettingValue
	if err := json.Unmarshal(raw, &value); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error_message": err.Error()})
		return
	}

	settings := s.Settings[asString(group["group_id"])]
	for i := range settings {
		if settings[i].GroupSettingID == target["group_setting_id"] {
			settings[i].Value = value
			writeJSON(w, http.StatusOK, map[string]any{})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"error_message": "Setting not found"})
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
