package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMetadataClient_FollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ipfs/QmHash", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/gateway/QmHash", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/gateway/QmHash", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"Token #1"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewMetadataClient(time.Second, zap.NewNop())
	body, err := c.Fetch(context.Background(), srv.URL+"/ipfs/QmHash")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Token #1"}`, string(body))
}

func TestMetadataClient_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := NewMetadataClient(time.Second, zap.NewNop())
	_, err := c.Fetch(context.Background(), srv.URL+"/missing.json")
	assert.Error(t, err)
}

func TestENSClient_Get(t *testing.T) {
	contract := "0x57f1887a8BF19b14fC0dF6Fd9B2acc9Af147eA85"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mainnet/"+contract+"/123", r.URL.Path)
		_, _ = w.Write([]byte(`{"name":"vitalik.eth","description":"vitalik.eth, an ENS name.","image":"https://img","version":0}`))
	}))
	defer srv.Close()

	c := NewENSClient(srv.URL+"/", time.Second, zap.NewNop())
	assert.Equal(t, srv.URL+"/mainnet/"+contract+"/123", c.URL(contract, "123"))

	meta, err := c.Get(context.Background(), contract, "123")
	require.NoError(t, err)
	assert.Equal(t, "vitalik.eth", meta.Name)
	assert.Equal(t, "https://img", meta.Image)
}
