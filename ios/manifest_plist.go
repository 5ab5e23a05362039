package ios

import (
	"fmt"

	"github.com/frantjc/ota/propertylist"
)

const (
	SchemeITMSServices = "itms-services"
	ContentTypeIPA     = "application/octet-stream"
	ContentTypePlist   = "application/xml"

	AssetKindSoftwarePackage = "software-package"
	MetadataKindSoftware     = "software"
)

// Manifest is the document an iOS device fetches via itms-services to
// learn where to download an app and what to display while installing it.
// The plist tags document the wire keys for howett.net/plist users.
type Manifest struct {
	Items []ManifestItem `plist:"items"`
}

type ManifestItem struct {
	Assets   []ManifestItemAsset   `plist:"assets"`
	Metadata *ManifestItemMetadata `plist:"metadata"`
}

type ManifestItemAsset struct {
	Kind string `plist:"kind"`
	URL  string `plist:"url"`
}

type ManifestItemMetadata struct {
	BundleIdentifier string `plist:"bundle-identifier"`
	BundleVersion    string `plist:"bundle-version"`
	Kind             string `plist:"kind"`
	Title            string `plist:"title"`
}

// NewManifest describes a single software package served at ipaURL,
// which is used verbatim.
func NewManifest(md *Metadata, ipaURL string) *Manifest {
	return &Manifest{
		Items: []ManifestItem{
			{
				Assets: []ManifestItemAsset{
					{
						Kind: AssetKindSoftwarePackage,
						URL:  ipaURL,
					},
				},
				Metadata: &ManifestItemMetadata{
					BundleIdentifier: md.BundleID,
					BundleVersion:    md.Version,
					Kind:             MetadataKindSoftware,
					Title:            md.AppName,
				},
			},
		},
	}
}

func (m *Manifest) Value() propertylist.Value {
	items := make(propertylist.Array, len(m.Items))
	for i, item := range m.Items {
		assets := make(propertylist.Array, len(item.Assets))
		for j, asset := range item.Assets {
			assets[j] = propertylist.NewDict(propertylist.Dict{
				"kind": propertylist.String(asset.Kind),
				"url":  propertylist.String(asset.URL),
			})
		}

		dict := propertylist.Dict{
			"assets": propertylist.NewArray(assets...),
		}
		if item.Metadata != nil {
			dict["metadata"] = propertylist.NewDict(propertylist.Dict{
				"bundle-identifier": propertylist.String(item.Metadata.BundleIdentifier),
				"bundle-version":    propertylist.String(item.Metadata.BundleVersion),
				"kind":              propertylist.String(item.Metadata.Kind),
				"title":             propertylist.String(item.Metadata.Title),
			})
		}

		items[i] = propertylist.NewDict(dict)
	}

	return propertylist.NewDict(propertylist.Dict{
		"items": propertylist.NewArray(items...),
	})
}

func MarshalManifest(m *Manifest, format propertylist.Format) ([]byte, error) {
	return propertylist.Encode(m.Value(), format)
}

// UnmarshalManifest parses a manifest in either property-list encoding.
func UnmarshalManifest(b []byte) (*Manifest, error) {
	v, _, err := propertylist.Decode(b)
	if err != nil {
		return nil, err
	}

	return ManifestFromValue(v)
}

func ManifestFromValue(v propertylist.Value) (*Manifest, error) {
	root, err := v.AsDict()
	if err != nil {
		return nil, err
	}

	items, err := root.Array("items")
	if err != nil {
		return nil, err
	}

	m := &Manifest{Items: make([]ManifestItem, len(items))}
	for i, itemValue := range items {
		item, err := itemValue.AsDict()
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}

		assets, err := item.Array("assets")
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}

		for j, assetValue := range assets {
			asset, err := assetValue.AsDict()
			if err != nil {
				return nil, fmt.Errorf("items[%d].assets[%d]: %w", i, j, err)
			}

			kind, err := asset.String("kind")
			if err != nil {
				return nil, fmt.Errorf("items[%d].assets[%d]: %w", i, j, err)
			}

			url, err := asset.String("url")
			if err != nil {
				return nil, fmt.Errorf("items[%d].assets[%d]: %w", i, j, err)
			}

			m.Items[i].Assets = append(m.Items[i].Assets, ManifestItemAsset{Kind: kind, URL: url})
		}

		if _, ok := item.Lookup("metadata"); !ok {
			continue
		}

		metadata, err := item.Dict("metadata")
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}

		m.Items[i].Metadata = &ManifestItemMetadata{}
		for key, dst := range map[string]*string{
			"bundle-identifier": &m.Items[i].Metadata.BundleIdentifier,
			"bundle-version":    &m.Items[i].Metadata.BundleVersion,
			"kind":              &m.Items[i].Metadata.Kind,
			"title":             &m.Items[i].Metadata.Title,
		} {
			if *dst, err = metadata.String(key); err != nil {
				return nil, fmt.Errorf("items[%d].metadata: %w", i, err)
			}
		}
	}

	return m, nil
}
