package ios

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/frantjc/ota/propertylist"
	"github.com/klauspost/compress/zip"
)

const (
	InfoPlistName = "Info.plist"
	// InfoPlistPattern matches the main bundle's Info.plist only, not
	// those of nested bundles such as frameworks, plugins or watch apps.
	InfoPlistPattern = "Payload/*.app/" + InfoPlistName

	DefaultMaxArchiveSize int64 = 500 << 20
	DefaultMaxEntrySize   int64 = 8 << 20
)

type Opts struct {
	MaxArchiveSize int64
	MaxEntrySize   int64
	ManifestFormat propertylist.Format
}

type Opt interface {
	Apply(*Opts)
}

func (o *Opts) Apply(opts *Opts) {
	if o != nil {
		if opts != nil {
			if o.MaxArchiveSize > 0 {
				opts.MaxArchiveSize = o.MaxArchiveSize
			}
			if o.MaxEntrySize > 0 {
				opts.MaxEntrySize = o.MaxEntrySize
			}
			if o.ManifestFormat != 0 {
				opts.ManifestFormat = o.ManifestFormat
			}
		}
	}
}

func newOpts(opts ...Opt) *Opts {
	o := &Opts{
		MaxArchiveSize: DefaultMaxArchiveSize,
		MaxEntrySize:   DefaultMaxEntrySize,
		ManifestFormat: propertylist.FormatXML,
	}

	for _, opt := range opts {
		opt.Apply(o)
	}

	return o
}

// Archive is an index over the entries of an in-memory .ipa.
type Archive struct {
	zr           *zip.Reader
	maxEntrySize int64
}

// ArchiveEntry is a single member of an Archive.
type ArchiveEntry struct {
	Name string

	file    *zip.File
	maxSize int64
}

// OpenArchive indexes b as a zip container. b is only read, never retained
// beyond the returned Archive.
func OpenArchive(b []byte, opts ...Opt) (*Archive, error) {
	o := newOpts(opts...)

	if size := int64(len(b)); size > o.MaxArchiveSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrArchiveTooLarge, size, o.MaxArchiveSize)
	}

	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptArchive, err)
	}

	return &Archive{zr: zr, maxEntrySize: o.MaxEntrySize}, nil
}

// FindEntry returns the single entry whose name matches pattern as
// interpreted by path.Match. It never picks among multiple matches.
func (a *Archive) FindEntry(pattern string) (*ArchiveEntry, error) {
	var matches []*zip.File
	for _, zf := range a.zr.File {
		if strings.HasSuffix(zf.Name, "/") {
			continue
		}

		matched, err := path.Match(pattern, zf.Name)
		if err != nil {
			return nil, err
		}

		if matched {
			matches = append(matches, zf)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: no entry matches %s", ErrMetadataNotFound, pattern)
	case 1:
		return &ArchiveEntry{
			Name:    matches[0].Name,
			file:    matches[0],
			maxSize: a.maxEntrySize,
		}, nil
	}

	names := make([]string, len(matches))
	for i, zf := range matches {
		names[i] = zf.Name
	}

	return nil, fmt.Errorf("%w: %s", ErrAmbiguousMetadata, strings.Join(names, ", "))
}

// Bytes decompresses the entry, verifying its checksum.
func (e *ArchiveEntry) Bytes() ([]byte, error) {
	if e.file.UncompressedSize64 > uint64(e.maxSize) {
		return nil, fmt.Errorf("%w: %s declares %d bytes", ErrCorruptArchive, e.Name, e.file.UncompressedSize64)
	}

	rc, err := e.file.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrCorruptArchive, e.Name, err)
	}
	defer rc.Close()

	b, err := io.ReadAll(io.LimitReader(rc, e.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrCorruptArchive, e.Name, err)
	}

	if int64(len(b)) > e.maxSize {
		return nil, fmt.Errorf("%w: %s inflates beyond %d bytes", ErrCorruptArchive, e.Name, e.maxSize)
	}

	return b, nil
}
