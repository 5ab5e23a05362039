package otaregexp

import "regexp"

var (
	UUID = regexp.MustCompile("^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$")

	IPA   = regexp.MustCompile(`(?i)^.+\.ipa$`)
	Plist = regexp.MustCompile(`(?i)^.+\.plist$`)
)
