package otahttp

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/frantjc/ota"
	"github.com/frantjc/ota/internal/otaerr"
	"github.com/timewasted/go-accept-headers"
)

const contentTypeJSON = "application/json"

func handleErr(handler func(w http.ResponseWriter, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := handler(w, r); err != nil {
			var (
				log        = ota.LoggerFrom(r.Context())
				statusCode = otaerr.HTTPStatusCode(err)
				message    = otaerr.Message(err)
			)

			if statusCode >= http.StatusInternalServerError {
				log.Error(err, "request failed", "status", statusCode)
			} else {
				log.V(1).Info("request rejected", "status", statusCode, "err", err)
			}

			if nErr := negotiate(w, r, contentTypeJSON); nErr != nil {
				http.Error(w, message, statusCode)
				return
			}

			w.WriteHeader(statusCode)
			_ = encodeJSON(w, &ota.ErrorResponse{Error: message}, wantsPretty(r))
		}
	}
}

func negotiate(w http.ResponseWriter, r *http.Request, contentType string) error {
	if _, err := accept.Negotiate(r.Header.Get("Accept"), contentType); err != nil {
		w.Header().Set("Accept", contentType)
		return otaerr.HTTPStatusCodeError(err, http.StatusNotAcceptable)
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Add("Vary", "Accept")

	return nil
}

func respondJSON(w http.ResponseWriter, r *http.Request, a any) error {
	if err := negotiate(w, r, contentTypeJSON); err != nil {
		return err
	}

	return encodeJSON(w, a, wantsPretty(r))
}

func encodeJSON(w http.ResponseWriter, a any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}

	return enc.Encode(a)
}

func wantsPretty(r *http.Request) bool {
	pretty, _ := strconv.ParseBool(r.URL.Query().Get("pretty"))
	return pretty
}
