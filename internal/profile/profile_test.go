package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/warung-pos/warung-pos/internal/platform/store"
)

func newService(t *testing.T) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store.NewMemory(), logger, time.Second)
}

func TestGetBeforeSave(t *testing.T) {
	svc := newService(t)

	_, err := svc.Get(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSaveAndGet(t *testing.T) {
	svc := newService(t)
	want := Profile{
		Name:    "Kedai Kopi Nusantara",
		Address: "Jl. Merdeka No. 12, Yogyakarta",
		Phone:   "0812-3456-7890",
		Owner:   "Bu Sari",
	}

	require.NoError(t, svc.Save(context.Background(), want))

	got, err := svc.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestHandlerRoundTrip(t *testing.T) {
	svc := newService(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	r.Route("/profile", NewHandler(logger, svc).MountRoutes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/profile")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	body := `{"name":"Kedai Kopi Nusantara","address":"Jl. Merdeka No. 12","phone":"0812-3456-7890","owner":"Bu Sari"}`
	req, err := http.NewRequest(http.MethodPut, srv.URL+"/profile", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	putResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	putResp.Body.Close()
	require.Equal(t, http.StatusOK, putResp.StatusCode)

	getResp, err := http.Get(srv.URL + "/profile")
	require.NoError(t, err)
	defer getResp.Body.Close()
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	var got Profile
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&got))
	require.Equal(t, "Kedai Kopi Nusantara", got.Name)
	require.Equal(t, "Bu Sari", got.Owner)
}

func TestHandlerRejectsMissingName(t *testing.T) {
	svc := newService(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	r.Route("/profile", NewHandler(logger, svc).MountRoutes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/profile", bytes.NewBufferString(`{"address":"x"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
