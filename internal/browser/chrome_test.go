package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fakeDevtools(t *testing.T, list string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/json/version":
			w.Write([]byte(`{"Browser":"Chrome/129.0.6668.58","webSocketDebuggerUrl":"ws://127.0.0.1:1/devtools/browser/x"}`))
		case "/json/list":
			w.Write([]byte(list))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestChromeVersion(t *testing.T) {
	srv := fakeDevtools(t, `[]`)
	c := NewChrome(srv.URL+"/", zap.NewNop())

	v, err := c.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Chrome/129.0.6668.58", v)
}

func TestChromeNoPages(t *testing.T) {
	// Only non-page targets: no CDP connection is needed.
	srv := fakeDevtools(t, `[
		{"id":"1","type":"service_worker","title":"sw","url":"chrome-extension://abc/sw.js"},
		{"id":"2","type":"background_page","title":"bg","url":"chrome-extension://abc/bg.html"}
	]`)
	c := NewChrome(srv.URL, zap.NewNop())

	tabs, err := c.CurrentWindowTabs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tabs)
}

func TestChromeListError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewChrome(srv.URL, zap.NewNop())
	_, err := c.CurrentWindowTabs(context.Background())
	assert.Error(t, err)

	_, err = c.Version(context.Background())
	assert.Error(t, err)
}

func TestChromeCloseNothing(t *testing.T) {
	c := NewChrome("http://127.0.0.1:1", zap.NewNop())
	assert.NoError(t, c.CloseTabs(context.Background(), nil))
}
