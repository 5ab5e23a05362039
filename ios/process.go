package ios

import (
	"fmt"

	"github.com/frantjc/ota/propertylist"
)

// Install is everything needed to offer an .ipa for over-the-air installation.
type Install struct {
	Metadata    *Metadata
	Manifest    []byte
	InstallLink string
}

// ReadMetadata extracts Metadata from the main bundle's Info.plist in the
// .ipa b.
func ReadMetadata(b []byte, opts ...Opt) (*Metadata, error) {
	archive, err := OpenArchive(b, opts...)
	if err != nil {
		return nil, err
	}

	entry, err := archive.FindEntry(InfoPlistPattern)
	if err != nil {
		return nil, err
	}

	info, err := entry.Bytes()
	if err != nil {
		return nil, err
	}

	v, _, err := propertylist.Decode(info)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", entry.Name, err)
	}

	md, err := ExtractMetadata(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", entry.Name, err)
	}

	return md, nil
}

// Process builds the Install for the .ipa b, whose manifest will point at
// ipaURL and whose link will point at manifestURL. It either returns every
// part of the Install or an error, never a partial result.
func Process(b []byte, ipaURL, manifestURL string, opts ...Opt) (*Install, error) {
	o := newOpts(opts...)

	md, err := ReadMetadata(b, o)
	if err != nil {
		return nil, err
	}

	manifest, err := MarshalManifest(NewManifest(md, ipaURL), o.ManifestFormat)
	if err != nil {
		return nil, err
	}

	return &Install{
		Metadata:    md,
		Manifest:    manifest,
		InstallLink: InstallLink(manifestURL),
	}, nil
}
