package ios

import (
	"errors"

	"github.com/frantjc/ota/propertylist"
)

var (
	ErrCorruptArchive    = errors.New("corrupt archive")
	ErrArchiveTooLarge   = errors.New("archive too large")
	ErrMetadataNotFound  = errors.New("no Info.plist found in .ipa")
	ErrAmbiguousMetadata = errors.New("multiple Info.plist found in .ipa")

	ErrInvalidPropertyList = propertylist.ErrInvalidPropertyList
	ErrMissingField        = propertylist.ErrMissingField
	ErrSerialization       = propertylist.ErrSerialization
)

// ErrorKind names the class of a Process failure for logs and metric labels.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrArchiveTooLarge):
		return "archive_too_large"
	case errors.Is(err, ErrCorruptArchive):
		return "corrupt_archive"
	case errors.Is(err, ErrMetadataNotFound):
		return "metadata_not_found"
	case errors.Is(err, ErrAmbiguousMetadata):
		return "ambiguous_metadata"
	case errors.Is(err, ErrMissingField):
		return "missing_field"
	case errors.Is(err, ErrInvalidPropertyList):
		return "invalid_property_list"
	case errors.Is(err, ErrSerialization):
		return "serialization_error"
	}

	return "unknown"
}
