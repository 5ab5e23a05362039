package ios

import (
	"net/url"
	"strings"
)

// InstallLink returns the itms-services deep link that makes an iOS device
// fetch the manifest at manifestURL. manifestURL must be raw, not already
// escaped. Spaces are escaped as %20 rather than '+'.
func InstallLink(manifestURL string) string {
	values := url.Values{}
	values.Add("action", "download-manifest")
	values.Add("url", manifestURL)

	return SchemeITMSServices + "://?" + strings.ReplaceAll(values.Encode(), "+", "%20")
}
