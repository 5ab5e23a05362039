package otablob

import "path"

const (
	UploadsPrefix   = "uploads/"
	ManifestsPrefix = "manifests/"

	ExtIPA   = ".ipa"
	ExtPlist = ".plist"
)

func IPAKey(id string) string {
	return path.Join(UploadsPrefix, id+ExtIPA)
}

func ManifestKey(id string) string {
	return path.Join(ManifestsPrefix, id+ExtPlist)
}
