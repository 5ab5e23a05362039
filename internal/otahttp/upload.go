package otahttp

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/frantjc/ota"
	"github.com/frantjc/ota/internal/otablob"
	"github.com/frantjc/ota/internal/otaerr"
	"github.com/frantjc/ota/internal/otametrics"
	"github.com/frantjc/ota/internal/otaregexp"
	"github.com/frantjc/ota/ios"
	"github.com/google/uuid"
	"github.com/opencontainers/go-digest"
)

const formFieldFile = "file"

func (h *handler) handleUpload(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadSize)

	name, b, err := h.readUpload(r)
	if err != nil {
		return err
	}

	var (
		ctx = r.Context()
		id  = uuid.NewString()
		log = ota.LoggerFrom(ctx).WithValues("id", id, "file", name, "digest", digest.FromBytes(b))
	)

	base, err := h.baseURL(r)
	if err != nil {
		return err
	}

	var (
		ipaURL      = base.JoinPath(PathUploads, id+otablob.ExtIPA).String()
		manifestURL = base.JoinPath(PathManifests, id+otablob.ExtPlist).String()
	)

	install, err := ios.Process(b, ipaURL, manifestURL, &ios.Opts{
		MaxArchiveSize: h.MaxUploadSize,
		ManifestFormat: h.ManifestFormat,
	})
	if err != nil {
		kind := ios.ErrorKind(err)
		h.Metrics.ObserveUpload(kind, len(b))
		log.Info("rejected upload", "kind", kind, "err", err.Error())

		if errors.Is(err, ios.ErrArchiveTooLarge) {
			return h.tooLarge(err)
		}

		return otaerr.HTTPStatusCodeErrorWithMessage(err, http.StatusBadRequest, "Invalid IPA file: "+kind)
	}

	if err = otablob.WriteArtifacts(ota.WithLogger(ctx, log), h.Bucket,
		otablob.Artifact{
			Key:         otablob.IPAKey(id),
			ContentType: ios.ContentTypeIPA,
			Data:        b,
		},
		otablob.Artifact{
			Key:         otablob.ManifestKey(id),
			ContentType: ios.ContentTypePlist,
			Data:        install.Manifest,
		},
	); err != nil {
		h.Metrics.ObserveUpload("storage_error", len(b))
		return err
	}

	h.Metrics.ObserveUpload(otametrics.ResultSuccess, len(b))
	log.Info("accepted upload", "bundleID", install.Metadata.BundleID, "version", install.Metadata.Version)

	return respondJSON(w, r, &ota.Upload{
		Success:     true,
		Metadata:    install.Metadata,
		ITMSURL:     install.InstallLink,
		ManifestURL: manifestURL,
		IPAURL:      ipaURL,
		ID:          id,
	})
}

// readUpload finds the "file" part of a multipart upload and reads it whole.
func (h *handler) readUpload(r *http.Request) (string, []byte, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return "", nil, otaerr.HTTPStatusCodeErrorWithMessage(err, http.StatusBadRequest, "No file provided")
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return "", nil, otaerr.HTTPStatusCodeErrorWithMessage(
				fmt.Errorf("no %s part", formFieldFile),
				http.StatusBadRequest,
				"No file provided",
			)
		} else if err != nil {
			return "", nil, h.partErr(err)
		}

		if part.FormName() != formFieldFile {
			_ = part.Close()
			continue
		}
		defer part.Close()

		name := part.FileName()
		if name == "" {
			return "", nil, otaerr.HTTPStatusCodeErrorWithMessage(
				fmt.Errorf("empty file name"),
				http.StatusBadRequest,
				"No file selected",
			)
		}

		if !otaregexp.IsIPA(name) {
			return "", nil, otaerr.HTTPStatusCodeErrorWithMessage(
				fmt.Errorf("unsupported file %s", name),
				http.StatusBadRequest,
				"Invalid file type. Only .ipa files are allowed",
			)
		}

		b, err := io.ReadAll(part)
		if err != nil {
			return "", nil, h.partErr(err)
		}

		return name, b, nil
	}
}

func (h *handler) partErr(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return h.tooLarge(err)
	}

	return otaerr.HTTPStatusCodeErrorWithMessage(err, http.StatusBadRequest, "Malformed multipart body")
}

func (h *handler) tooLarge(err error) error {
	return otaerr.HTTPStatusCodeErrorWithMessage(
		err,
		http.StatusRequestEntityTooLarge,
		"File too large. Maximum size is "+formatSize(h.MaxUploadSize),
	)
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<30 && n%(1<<30) == 0:
		return fmt.Sprintf("%dGB", n>>30)
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%dKB", n>>10)
	}

	return fmt.Sprintf("%dB", n)
}
