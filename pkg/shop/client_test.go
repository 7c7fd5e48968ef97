package shop

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvents_DecodesFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/events", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"events": [
				{"id": "ev1", "pubkey": "pk1", "content": "hello",
				 "images": ["https://example.org/a.jpg"],
				 "profile": {"name": "alice", "display_name": "Alice"}}
			],
			"count": 1,
			"loading": false,
			"last_refresh": 1724700000.5
		}`))
	}))
	defer server.Close()

	feed, err := NewClient(server.URL).Events(context.Background())
	require.NoError(t, err)
	require.Len(t, feed.Events, 1)
	assert.Equal(t, "ev1", feed.Events[0].ID)
	assert.Equal(t, "Alice", feed.Events[0].Profile.DisplayName)
	assert.Equal(t, 1, feed.Count)
	assert.False(t, feed.Loading)
}

func TestSetIndex_PostsJSONBody(t *testing.T) {
	var got map[string]int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/set_index", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	err := NewClient(server.URL).SetIndex(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, got["index"])
}

func TestCapture_DecodesResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/capture", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"ipfs_cid": "bafyabc",
			"ipfs_url": "https://gw.example.org/ipfs/bafyabc",
			"posted": true,
			"qr_url": "https://example.org/p/bafyabc",
			"faces": [{"user_id": "u1", "name": "Bob", "status": "new", "visit_count": 1}]
		}`))
	}))
	defer server.Close()

	result, err := NewClient(server.URL).Capture(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "bafyabc", result.IPFSCid)
	require.Len(t, result.Faces, 1)
	assert.Equal(t, "new", result.Faces[0].Status)
}

func TestQR_DecodesPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/qr", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"qr_code": "aGVsbG8=", "url": "https://shop.example.org"}`))
	}))
	defer server.Close()

	qr, err := NewClient(server.URL).QR(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "aGVsbG8=", qr.QRCode)
	assert.Equal(t, "https://shop.example.org", qr.URL)
}

func TestClient_SurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewClient(server.URL)

	_, err := c.Events(context.Background())
	assert.Error(t, err)

	_, err = c.Capture(context.Background())
	assert.Error(t, err)

	assert.Error(t, c.SetIndex(context.Background(), 0))
}
