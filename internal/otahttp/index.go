package otahttp

import (
	"net/http"
	"time"

	"github.com/frantjc/ota"
)

func (h *handler) handleIndex(w http.ResponseWriter, r *http.Request) error {
	return respondJSON(w, r, &ota.Index{
		Name:        ota.Name,
		Version:     ota.SemVer(),
		Description: ota.Description,
		Endpoints: ota.IndexEndpoints{
			Upload: PathUpload,
			Status: PathStatus,
		},
	})
}

func (h *handler) handleStatus(w http.ResponseWriter, r *http.Request) error {
	return respondJSON(w, r, &ota.Status{
		Status:    ota.StatusRunning,
		Timestamp: time.Now().UTC(),
		Version:   ota.SemVer(),
	})
}
