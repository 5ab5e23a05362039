package ota

import (
	"time"

	"github.com/frantjc/ota/ios"
)

const (
	Name        = "IPA Processing API"
	Description = "API for processing IPA files and generating itms-services URLs"

	StatusRunning = "running"
)

// Upload is the response to a successful upload of an .ipa.
type Upload struct {
	Success     bool          `json:"success" yaml:"success"`
	Metadata    *ios.Metadata `json:"metadata" yaml:"metadata"`
	ITMSURL     string        `json:"itms_url" yaml:"itms_url"`
	ManifestURL string        `json:"manifest_url" yaml:"manifest_url"`
	IPAURL      string        `json:"ipa_url" yaml:"ipa_url"`
	ID          string        `json:"id" yaml:"id"`
}

type Status struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

type Index struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Endpoints   IndexEndpoints `json:"endpoints"`
}

type IndexEndpoints struct {
	Upload string `json:"upload"`
	Status string `json:"status"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}
