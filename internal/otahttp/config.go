package otahttp

import (
	"net/http"
	"net/url"

	"github.com/frantjc/ota/internal/otametrics"
	"github.com/frantjc/ota/ios"
	"github.com/frantjc/ota/propertylist"
	"gocloud.dev/blob"
)

// Config is everything the HTTP API needs to serve uploads.
type Config struct {
	// Bucket stores uploaded archives and their manifests. Required.
	Bucket *blob.Bucket

	// BaseURL prefixes every public URL. When nil it is derived from each
	// request.
	BaseURL *url.URL

	// MaxUploadSize bounds the request body of an upload.
	MaxUploadSize int64

	// ManifestFormat is the encoding manifests are stored in.
	ManifestFormat propertylist.Format

	Metrics otametrics.Metrics

	// MetricsHandler serves /metrics. Nothing is served there when nil.
	MetricsHandler http.Handler
}

func (c *Config) init() {
	if c.MaxUploadSize <= 0 {
		c.MaxUploadSize = ios.DefaultMaxArchiveSize
	}

	if c.ManifestFormat == 0 {
		c.ManifestFormat = propertylist.FormatXML
	}

	if c.Metrics == nil {
		c.Metrics = otametrics.Noop{}
	}
}
