package services

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	kasm "github.com/EO-DataHub/eodhp-kasm-services/api/services"
	"github.com/EO-DataHub/eodhp-kasm-services/internal/kasmtest"
	"github.com/EO-DataHub/eodhp-kasm-services/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSessionExtender struct {
	mock.Mock
}

func (m *mockSessionExtender) Extend(ctx context.Context, session models.Session, duration time.Duration) error {
	return m.Called(ctx, session, duration).Error(0)
}

type staticSessions []models.Session

func (s staticSessions) GetSessions(context.Context) ([]models.Session, error) {
	return s, nil
}

// newScenario starts a fake Kasm API holding one running Chrome session of
// alice whose group keepalive is "21600".
func newScenario(t *testing.T) (*kasmtest.Server, *Operator, *bytes.Buffer, *strings.Reader) {
	server := kasmtest.NewServer(t)
	server.Sessions = []models.Session{testSession}
	server.AddUser("u1", "alice", "g1", models.StringValue("21600"))

	client := kasm.NewKasmClient(server.URL, kasmtest.APIKey, kasmtest.APIKeySecret, 5*time.Second)
	input := strings.NewReader("")
	output := &bytes.Buffer{}
	operator := NewOperator(client, NewExtender(client, nil), 6, input, output)
	return server, operator, output, input
}

func settingWrites(server *kasmtest.Server) []any {
	var values []any
	for _, call := range server.CallsTo("admin/update_settings_group") {
		target := call.Body["target_setting"].(map[string]any)
		values = append(values, target["value"])
	}
	return values
}

func TestOperator_ExtendsSelectedSession(t *testing.T) {
	server, operator, output, input := newScenario(t)
	input.Reset("1\n2\n")

	err := operator.Run(context.Background(), ExtendOptions{})
	require.NoError(t, err)

	// Temporary raise as an integer, then the original string value back
	assert.Equal(t, []any{float64(7200), "21600"}, settingWrites(server))

	keepalives := server.CallsTo("public/keepalive")
	require.Len(t, keepalives, 1)
	assert.Equal(t, "abc", keepalives[0].Body["kasm_id"])

	var paths []string
	for _, call := range server.Calls() {
		if call.Path == "admin/update_settings_group" || call.Path == "public/keepalive" {
			paths = append(paths, call.Path)
		}
	}
	assert.Equal(t, []string{"admin/update_settings_group", "public/keepalive", "admin/update_settings_group"}, paths)

	assert.Equal(t, models.StringValue("21600"), server.Setting("g1", models.KeepaliveSetting))
	assert.Equal(t, "\nAvailable sessions:\n"+
		"[1] T0 - Chrome (state: running)\n"+
		"\nSelect session to extend (number)[1]: "+
		"New expiration time (in hours)[6]: "+
		"✅ Session expiration updated successfully!\n", output.String())
}

func TestOperator_QuotaReached(t *testing.T) {
	server, operator, output, input := newScenario(t)
	server.UsageReached = true
	input.Reset("\n2\n")

	err := operator.Run(context.Background(), ExtendOptions{})
	assert.ErrorIs(t, err, kasm.ErrUsageQuotaReached)

	assert.Equal(t, []any{float64(7200), "21600"}, settingWrites(server))
	assert.Equal(t, models.StringValue("21600"), server.Setting("g1", models.KeepaliveSetting))
	assert.Len(t, server.Sessions, 1)
	assert.Empty(t, server.CallsTo("public/destroy_kasm"))
	assert.True(t, strings.HasSuffix(output.String(), "ERROR: Session not modified, usage quota reached!\n"))
	assert.NotContains(t, output.String(), "✅")
}

func TestOperator_DefaultsOnEmptyInput(t *testing.T) {
	_, operator, output, _ := newScenario(t)
	extender := new(mockSessionExtender)
	operator.Extender = extender
	extender.On("Extend", mock.Anything, testSession, 6*time.Hour).Return(nil).Once()

	require.NoError(t, operator.Run(context.Background(), ExtendOptions{}))
	extender.AssertExpectations(t)
	assert.Contains(t, output.String(), "✅ Session expiration updated successfully!")
}

func TestOperator_NoSessions(t *testing.T) {
	extender := new(mockSessionExtender)
	output := &bytes.Buffer{}
	operator := NewOperator(staticSessions(nil), extender, 6, strings.NewReader("1\n"), output)

	require.NoError(t, operator.Run(context.Background(), ExtendOptions{}))
	assert.Equal(t, "No active or paused sessions found.\n", output.String())
	extender.AssertNotCalled(t, "Extend", mock.Anything, mock.Anything, mock.Anything)
}

func TestOperator_Flags(t *testing.T) {
	sessions := staticSessions{
		{KasmID: "abc", StartDate: "T0", Image: models.Image{FriendlyName: "Chrome"}},
		{KasmID: "def", StartDate: "T1", Image: models.Image{FriendlyName: "Terminal"}},
	}
	extender := new(mockSessionExtender)
	extender.On("Extend", mock.Anything, sessions[1], 3*time.Hour).Return(nil).Once()
	output := &bytes.Buffer{}

	operator := NewOperator(sessions, extender, 6, strings.NewReader(""), output)
	require.NoError(t, operator.Run(context.Background(), ExtendOptions{KasmID: "def", Hours: 3}))

	extender.AssertExpectations(t)
	assert.NotContains(t, output.String(), "Select session")
	assert.NotContains(t, output.String(), "New expiration time")

	err := operator.Run(context.Background(), ExtendOptions{KasmID: "zzz", Hours: 3})
	assert.ErrorContains(t, err, "session zzz not found")

	err = operator.Run(context.Background(), ExtendOptions{KasmID: "def", Hours: 3000000})
	assert.ErrorContains(t, err, "invalid number of hours")
	extender.AssertNumberOfCalls(t, "Extend", 1)
}

func TestOperator_InvalidInput(t *testing.T) {
	sessions := staticSessions{{KasmID: "abc"}}

	tests := []struct {
		name  string
		input string
		err   string
	}{
		{name: "session out of range", input: "2\n", err: "invalid session number"},
		{name: "session not a number", input: "one\n", err: "invalid session number"},
		{name: "hours not a number", input: "1\nsix\n", err: "invalid number of hours"},
		{name: "hours zero", input: "1\n0\n", err: "invalid number of hours"},
		{name: "hours above maximum", input: "1\n169\n", err: "invalid number of hours"},
		{name: "hours overflowing a duration", input: "1\n3000000\n", err: "invalid number of hours"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extender := new(mockSessionExtender)
			operator := NewOperator(sessions, extender, 6, strings.NewReader(tt.input), &bytes.Buffer{})

			err := operator.Run(context.Background(), ExtendOptions{})
			assert.ErrorContains(t, err, tt.err)
			extender.AssertNotCalled(t, "Extend", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestOperator_ListFailure(t *testing.T) {
	server, operator, _, _ := newScenario(t)
	server.Fail["public/get_kasms"] = 500

	err := operator.Run(context.Background(), ExtendOptions{})

	var httpErr *kasm.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 500, httpErr.Status)
}
