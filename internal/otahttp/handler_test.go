package otahttp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/frantjc/ota"
	"github.com/frantjc/ota/internal/otametrics"
	"github.com/frantjc/ota/internal/otahttp"
	"github.com/frantjc/ota/ios"
	"github.com/frantjc/ota/propertylist"
	"github.com/klauspost/compress/zip"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
	"gocloud.dev/blob/memblob"
	"howett.net/plist"
)

func newIPA(t *testing.T, info map[string]any) []byte {
	t.Helper()

	b, err := plist.Marshal(info, plist.BinaryFormat)
	require.NoError(t, err)

	var (
		buf = new(bytes.Buffer)
		zw  = zip.NewWriter(buf)
	)

	w, err := zw.Create("Payload/Example.app/Info.plist")
	require.NoError(t, err)

	_, err = w.Write(b)
	require.NoError(t, err)

	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func exampleInfo() map[string]any {
	return map[string]any{
		"CFBundleIdentifier":         "com.example.app",
		"CFBundleDisplayName":        "Example App",
		"CFBundleShortVersionString": "1.0",
		"CFBundleVersion":            "1",
	}
}

func newHandler(t *testing.T, cfg otahttp.Config) (http.Handler, *blob.Bucket) {
	t.Helper()

	if cfg.Bucket == nil {
		cfg.Bucket = memblob.OpenBucket(nil)
		t.Cleanup(func() {
			_ = cfg.Bucket.Close()
		})
	}

	h, err := otahttp.NewHandler(cfg)
	require.NoError(t, err)

	return h, cfg.Bucket
}

func newUploadRequest(t *testing.T, field, name string, b []byte) *http.Request {
	t.Helper()

	var (
		body = new(bytes.Buffer)
		mw   = multipart.NewWriter(body)
	)

	require.NoError(t, mw.WriteField("note", "ignored"))

	part, err := mw.CreateFormFile(field, name)
	require.NoError(t, err)

	_, err = part.Write(b)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "http://ota.example.com/api/upload", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	res := &ota.ErrorResponse{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(res))

	return res.Error
}

func countObjects(t *testing.T, bucket *blob.Bucket) int {
	t.Helper()

	var (
		n    = 0
		iter = bucket.List(nil)
	)
	for {
		_, err := iter.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return n
		}
		require.NoError(t, err)
		n++
	}
}

func TestNewHandlerRequiresBucket(t *testing.T) {
	_, err := otahttp.NewHandler(otahttp.Config{})
	assert.Error(t, err)
}

func TestIndex(t *testing.T) {
	h, _ := newHandler(t, otahttp.Config{})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	index := &ota.Index{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(index))
	assert.Equal(t, ota.Name, index.Name)
	assert.Equal(t, "/api/upload", index.Endpoints.Upload)
	assert.Equal(t, "/api/status", index.Endpoints.Status)
}

func TestStatus(t *testing.T) {
	h, _ := newHandler(t, otahttp.Config{})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/status?pretty=true", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "\n  \"status\"")

	status := &ota.Status{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(status))
	assert.Equal(t, "running", status.Status)
	assert.False(t, status.Timestamp.IsZero())
	assert.Equal(t, ota.SemVer(), status.Version)
}

func TestUpload(t *testing.T) {
	h, bucket := newHandler(t, otahttp.Config{})

	rec := serve(h, newUploadRequest(t, "file", "Example.ipa", newIPA(t, exampleInfo())))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	upload := &ota.Upload{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(upload))

	assert.True(t, upload.Success)
	assert.Equal(t, &ios.Metadata{
		BundleID:     "com.example.app",
		AppName:      "Example App",
		Version:      "1.0",
		BuildVersion: "1",
	}, upload.Metadata)
	assert.Equal(t, "http://ota.example.com/static/uploads/"+upload.ID+".ipa", upload.IPAURL)
	assert.Equal(t, "http://ota.example.com/static/manifests/"+upload.ID+".plist", upload.ManifestURL)
	assert.Equal(t, ios.InstallLink(upload.ManifestURL), upload.ITMSURL)
	assert.Equal(t, 2, countObjects(t, bucket))

	rec = serve(h, httptest.NewRequest(http.MethodGet, upload.ManifestURL, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))

	etag := rec.Header().Get("ETag")
	assert.True(t, strings.HasPrefix(etag, `"sha256:`), etag)

	manifest, err := ios.UnmarshalManifest(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, ios.NewManifest(upload.Metadata, upload.IPAURL), manifest)

	req := httptest.NewRequest(http.MethodGet, upload.ManifestURL, nil)
	req.Header.Set("If-None-Match", etag)
	rec = serve(h, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodGet, upload.IPAURL, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, newIPA(t, exampleInfo())[:4], rec.Body.Bytes()[:4])
}

func TestUploadBaseURL(t *testing.T) {
	base, err := url.Parse("https://cdn.example.com/ota")
	require.NoError(t, err)

	h, _ := newHandler(t, otahttp.Config{BaseURL: base})

	rec := serve(h, newUploadRequest(t, "file", "Example.ipa", newIPA(t, exampleInfo())))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	upload := &ota.Upload{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(upload))
	assert.Equal(t, "https://cdn.example.com/ota/static/manifests/"+upload.ID+".plist", upload.ManifestURL)
	assert.Equal(t,
		"itms-services://?action=download-manifest&url=https%3A%2F%2Fcdn.example.com%2Fota%2Fstatic%2Fmanifests%2F"+upload.ID+".plist",
		upload.ITMSURL,
	)
}

func TestUploadBinaryManifest(t *testing.T) {
	h, _ := newHandler(t, otahttp.Config{ManifestFormat: propertylist.FormatBinary})

	rec := serve(h, newUploadRequest(t, "file", "Example.ipa", newIPA(t, exampleInfo())))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	upload := &ota.Upload{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(upload))

	rec = serve(h, httptest.NewRequest(http.MethodGet, upload.ManifestURL, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, propertylist.FormatBinary, propertylist.Sniff(rec.Body.Bytes()))
}

func TestUploadRejected(t *testing.T) {
	missingVersion := exampleInfo()
	delete(missingVersion, "CFBundleVersion")

	for name, tc := range map[string]struct {
		req     func(t *testing.T) *http.Request
		message string
	}{
		"not multipart": {
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader("{}"))
			},
			message: "No file provided",
		},
		"no file part": {
			req: func(t *testing.T) *http.Request {
				return newUploadRequest(t, "upload", "Example.ipa", newIPA(t, exampleInfo()))
			},
			message: "No file provided",
		},
		"no file name": {
			req: func(t *testing.T) *http.Request {
				return newUploadRequest(t, "file", "", newIPA(t, exampleInfo()))
			},
			message: "No file selected",
		},
		"wrong extension": {
			req: func(t *testing.T) *http.Request {
				return newUploadRequest(t, "file", "Example.apk", newIPA(t, exampleInfo()))
			},
			message: "Invalid file type. Only .ipa files are allowed",
		},
		"not a zip": {
			req: func(t *testing.T) *http.Request {
				return newUploadRequest(t, "file", "Example.ipa", []byte("this is not a zip"))
			},
			message: "Invalid IPA file: corrupt_archive",
		},
		"missing field": {
			req: func(t *testing.T) *http.Request {
				return newUploadRequest(t, "file", "Example.IPA", newIPA(t, missingVersion))
			},
			message: "Invalid IPA file: missing_field",
		},
	} {
		t.Run(name, func(t *testing.T) {
			h, bucket := newHandler(t, otahttp.Config{})

			rec := serve(h, tc.req(t))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.message, errorMessage(t, rec))
			assert.Zero(t, countObjects(t, bucket))
		})
	}
}

func TestUploadTooLarge(t *testing.T) {
	h, bucket := newHandler(t, otahttp.Config{MaxUploadSize: 1 << 10})

	rec := serve(h, newUploadRequest(t, "file", "Example.ipa", bytes.Repeat([]byte{0}, 4<<10)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "File too large. Maximum size is 1KB", errorMessage(t, rec))
	assert.Zero(t, countObjects(t, bucket))
}

func TestNotFound(t *testing.T) {
	h, _ := newHandler(t, otahttp.Config{})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Endpoint not found", errorMessage(t, rec))

	for _, target := range []string{
		"/static/uploads/00000000-0000-0000-0000-000000000000.ipa",
		"/static/manifests/00000000-0000-0000-0000-000000000000.plist",
		"/static/uploads/..%2Fsecret.ipa",
		"/static/manifests/abc123.ipa",
	} {
		rec = serve(h, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
	}
}

func TestCORS(t *testing.T) {
	h, _ := newHandler(t, otahttp.Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("Origin", "https://app.example.com")

	rec := serve(h, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestProbesAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	h, _ := newHandler(t, otahttp.Config{
		Metrics:        otametrics.NewProm("ota", reg),
		MetricsHandler: otametrics.Handler(reg),
	})

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := serve(h, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "ok", rec.Body.String(), path)
	}

	_ = serve(h, newUploadRequest(t, "file", "Example.ipa", []byte("nope")))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `ota_uploads_total{result="corrupt_archive"} 1`)
	assert.Contains(t, rec.Body.String(), `ota_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}

func TestClient(t *testing.T) {
	h, _ := newHandler(t, otahttp.Config{})

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	base, err := url.Parse(srv.URL)
	require.NoError(t, err)

	var (
		ctx = context.Background()
		cli = &ota.Client{HTTPClient: srv.Client(), Base: base}
	)

	require.NoError(t, cli.Healthz(ctx))
	require.NoError(t, cli.Readyz(ctx))

	status, err := cli.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "running", status.Status)

	index, err := cli.Index(ctx)
	require.NoError(t, err)
	assert.Equal(t, ota.Name, index.Name)

	upload, err := cli.Upload(ctx, "Example.ipa", bytes.NewReader(newIPA(t, exampleInfo())))
	require.NoError(t, err)
	assert.Equal(t, "com.example.app", upload.Metadata.BundleID)
	assert.True(t, strings.HasPrefix(upload.ManifestURL, srv.URL+"/static/manifests/"))

	_, err = cli.Upload(ctx, "Example.ipa", strings.NewReader("not a zip"))
	assert.ErrorContains(t, err, "Invalid IPA file: corrupt_archive")
}
