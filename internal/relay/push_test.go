package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wconnect/internal/domain"
)

func TestPushClientRegister(t *testing.T) {
	var got domain.PushRegistration
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/new", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		_ = json.NewDecoder(r.Body).Decode(&got)
		ok := got.Token != "bad"
		_ = json.NewEncoder(w).Encode(map[string]bool{"success": ok})
	}))
	defer srv.Close()

	c := NewPushClient(srv.URL+"/", nil)
	reg := domain.PushRegistration{
		Bridge: "https://bridge.example", Topic: "client-id", Type: "fcm",
		Token: "tok", PeerName: "Dapp", Language: "en",
	}
	require.NoError(t, c.Register(context.Background(), reg))
	assert.Equal(t, reg, got)

	reg.Token = "bad"
	assert.ErrorIs(t, c.Register(context.Background(), reg), ErrPushRejected)
}

func TestPushClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := NewPushClient(srv.URL, nil).Register(context.Background(), domain.PushRegistration{})
	assert.ErrorContains(t, err, "503")
}
