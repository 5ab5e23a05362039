package otahttp

import (
	"crypto/tls"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/frantjc/ota"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLFromReq(t *testing.T) {
	for name, tc := range map[string]struct {
		headers  map[string]string
		tls      bool
		expected string
	}{
		"host":              {expected: "http://ota.example.com"},
		"tls":               {tls: true, expected: "https://ota.example.com"},
		"x-forwarded":       {headers: map[string]string{"X-Forwarded-Proto": "https", "X-Forwarded-Host": "proxy.example.com"}, expected: "https://proxy.example.com"},
		"x-forwarded list":  {headers: map[string]string{"X-Forwarded-Proto": "https, http", "X-Forwarded-Host": "a.example.com, b.example.com"}, expected: "https://a.example.com"},
		"forwarded":         {headers: map[string]string{"Forwarded": `for=192.0.2.60;proto=https;host="fwd.example.com", for=198.51.100.17`}, expected: "https://fwd.example.com"},
		"forwarded no host": {headers: map[string]string{"Forwarded": "for=192.0.2.60;proto=https"}, tls: true, expected: "https://ota.example.com"},
		"origin ignored":    {headers: map[string]string{"Origin": "https://app.example.com"}, expected: "http://ota.example.com"},
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://ota.example.com/api/upload", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			if tc.tls {
				req.TLS = &tls.ConnectionState{}
			}

			u, err := urlFromReq(req)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, u.String())
		})
	}
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "500MB", formatSize(500<<20))
	assert.Equal(t, "1GB", formatSize(1<<30))
	assert.Equal(t, "1536KB", formatSize(1536<<10))
	assert.Equal(t, "1000B", formatSize(1000))
}

func TestRecoverer(t *testing.T) {
	var (
		h = recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))
		rec = httptest.NewRecorder()
	)

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	res := &ota.ErrorResponse{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(res))
	assert.Equal(t, "Internal server error", res.Error)
}
