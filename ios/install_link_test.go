package ios_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/frantjc/ota/ios"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallLink(t *testing.T) {
	for manifestURL, expected := range map[string]string{
		exampleManifestURL:                     "itms-services://?action=download-manifest&url=https%3A%2F%2Fhost%2Fmanifests%2Fabc123.plist",
		"https://host/a b.plist":               "itms-services://?action=download-manifest&url=https%3A%2F%2Fhost%2Fa%20b.plist",
		"https://host/a+b.plist":               "itms-services://?action=download-manifest&url=https%3A%2F%2Fhost%2Fa%2Bb.plist",
		"https://host/m.plist?x=1&y=2#frag":    "itms-services://?action=download-manifest&url=https%3A%2F%2Fhost%2Fm.plist%3Fx%3D1%26y%3D2%23frag",
		"https://hôst/é.plist":                 "itms-services://?action=download-manifest&url=https%3A%2F%2Fh%C3%B4st%2F%C3%A9.plist",
		"https://host:8443/manifests/%2F.plist": "itms-services://?action=download-manifest&url=https%3A%2F%2Fhost%3A8443%2Fmanifests%2F%252F.plist",
	} {
		t.Run(manifestURL, func(t *testing.T) {
			link := ios.InstallLink(manifestURL)
			assert.Equal(t, expected, link)
			assert.Equal(t, link, ios.InstallLink(manifestURL))
		})
	}
}

func TestInstallLinkRoundTrip(t *testing.T) {
	for _, manifestURL := range []string{
		exampleManifestURL,
		"https://host/a b.plist",
		"https://host/a+b.plist",
		"https://host/a%20b.plist",
		"https://host/m.plist?x=1&y=2",
		"",
	} {
		link := ios.InstallLink(manifestURL)
		require.True(t, strings.HasPrefix(link, ios.SchemeITMSServices+"://?"))

		query, err := url.ParseQuery(strings.TrimPrefix(link, ios.SchemeITMSServices+"://?"))
		require.NoError(t, err)
		assert.Equal(t, "download-manifest", query.Get("action"))
		assert.Equal(t, manifestURL, query.Get("url"))
	}
}

func TestInstallLinkInjective(t *testing.T) {
	manifestURLs := []string{
		exampleManifestURL,
		"https://host/manifests/abc124.plist",
		"https://host/a b.plist",
		"https://host/a+b.plist",
		"https://host/a%20b.plist",
		"https://host/a%2Bb.plist",
		"http://host/manifests/abc123.plist",
		"https://HOST/manifests/abc123.plist",
	}

	seen := map[string]string{}
	for _, manifestURL := range manifestURLs {
		link := ios.InstallLink(manifestURL)
		if other, ok := seen[link]; ok {
			t.Fatalf("%q and %q share install link %q", other, manifestURL, link)
		}
		seen[link] = manifestURL
	}
}
