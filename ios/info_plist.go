package ios

import (
	"errors"
	"fmt"

	"github.com/frantjc/ota/propertylist"
)

const (
	KeyBundleIdentifier         = "CFBundleIdentifier"
	KeyBundleDisplayName        = "CFBundleDisplayName"
	KeyBundleName               = "CFBundleName"
	KeyBundleShortVersionString = "CFBundleShortVersionString"
	KeyBundleVersion            = "CFBundleVersion"
)

// Metadata is the subset of an app's Info.plist needed to install it.
type Metadata struct {
	BundleID     string `json:"bundle_id" yaml:"bundle_id"`
	AppName      string `json:"app_name" yaml:"app_name"`
	Version      string `json:"version" yaml:"version"`
	BuildVersion string `json:"build_version" yaml:"build_version"`
}

// ExtractMetadata reads Metadata from the top-level dictionary of an
// Info.plist. A key holding an empty string counts as absent. The app name
// is CFBundleDisplayName, falling back to CFBundleName; when both are absent
// the error names CFBundleDisplayName.
func ExtractMetadata(v propertylist.Value) (*Metadata, error) {
	info, err := v.AsDict()
	if err != nil {
		return nil, fmt.Errorf("%s root: %w", InfoPlistName, err)
	}

	md := &Metadata{}

	if md.BundleID, err = requiredString(info, KeyBundleIdentifier); err != nil {
		return nil, err
	}

	if md.AppName, err = requiredString(info, KeyBundleDisplayName); errors.Is(err, ErrMissingField) {
		if md.AppName, err = requiredString(info, KeyBundleName); errors.Is(err, ErrMissingField) {
			return nil, &propertylist.MissingFieldError{Key: KeyBundleDisplayName}
		}
	}
	if err != nil {
		return nil, err
	}

	if md.Version, err = requiredString(info, KeyBundleShortVersionString); err != nil {
		return nil, err
	}

	if md.BuildVersion, err = requiredString(info, KeyBundleVersion); err != nil {
		return nil, err
	}

	return md, nil
}

func requiredString(info propertylist.Dict, key string) (string, error) {
	s, err := info.String(key)
	if err != nil {
		return "", err
	}

	if s == "" {
		return "", &propertylist.MissingFieldError{Key: key}
	}

	return s, nil
}
