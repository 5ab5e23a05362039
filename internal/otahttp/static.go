package otahttp

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/frantjc/ota/internal/otablob"
	"github.com/frantjc/ota/internal/otaerr"
	"github.com/frantjc/ota/internal/otaregexp"
	"github.com/frantjc/ota/ios"
	"github.com/go-chi/chi/v5"
)

func (h *handler) handleUploads(w http.ResponseWriter, r *http.Request) error {
	return h.serveArtifact(w, r, otablob.ExtIPA, otablob.IPAKey, ios.ContentTypeIPA)
}

func (h *handler) handleManifests(w http.ResponseWriter, r *http.Request) error {
	return h.serveArtifact(w, r, otablob.ExtPlist, otablob.ManifestKey, ios.ContentTypePlist)
}

// serveArtifact serves the stored artifact named by the "file" URL
// parameter, which must be an upload ID followed by ext.
func (h *handler) serveArtifact(w http.ResponseWriter, r *http.Request, ext string, key func(string) string, contentType string) error {
	file := chi.URLParam(r, "file")

	id, ok := strings.CutSuffix(file, ext)
	if !ok || !otaregexp.IsUUID(id) {
		return otaerr.HTTPStatusCodeErrorWithMessage(
			fmt.Errorf("invalid file %s", file),
			http.StatusNotFound,
			"File not found",
		)
	}

	obj, err := otablob.NewReader(r.Context(), h.Bucket, key(strings.ToLower(id)))
	if err != nil {
		return err
	}
	defer obj.Close()

	w.Header().Set("Content-Type", contentType)
	if obj.Digest != "" {
		w.Header().Set("ETag", fmt.Sprintf(`"%s"`, obj.Digest))
	}

	http.ServeContent(w, r, file, obj.ModTime(), obj)

	return nil
}
