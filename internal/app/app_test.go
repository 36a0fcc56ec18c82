package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greader/internal/config"
	"greader/reader"
)

func TestNewReaderClient(t *testing.T) {
	login := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		if r.PostForm.Get("Passwd") != "secret" {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte("Error=BadAuthentication\n"))
			return
		}
		w.Write([]byte("SID=s\nLSID=l\nAuth=cfg-token\n"))
	}))
	defer login.Close()

	cfg := config.New().Reader
	cfg.LoginURL = login.URL
	cfg.Email = "user@example.com"
	cfg.Password = "secret"
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	client, err := NewReaderClient(context.Background(), cfg, log)
	require.NoError(t, err)
	assert.Equal(t, "GoogleLogin auth=cfg-token", client.AuthHeader())

	cfg.Password = "wrong"
	_, err = NewReaderClient(context.Background(), cfg, log)
	var authErr *reader.AuthenticationError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "BadAuthentication", authErr.Reason)
	assert.Contains(t, err.Error(), "google reader login failed")
}
