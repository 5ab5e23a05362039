package otaregexp_test

import (
	"testing"

	"github.com/frantjc/ota/internal/otaregexp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestIsUUID(t *testing.T) {
	assert.True(t, otaregexp.IsUUID(uuid.NewString()))
	assert.False(t, otaregexp.IsUUID("abc123"))
	assert.False(t, otaregexp.IsUUID("../"+uuid.NewString()))
}

func TestIsIPA(t *testing.T) {
	for _, name := range []string{"Example.ipa", "example.IPA", "my app.ipa", "a.b.ipa"} {
		assert.True(t, otaregexp.IsIPA(name), name)
	}

	for _, name := range []string{"", ".ipa", "Example.apk", "Example.ipa.zip", "Example.ipa\n"} {
		assert.False(t, otaregexp.IsIPA(name), name)
	}
}

func TestIsPlist(t *testing.T) {
	assert.True(t, otaregexp.IsPlist("manifest.plist"))
	assert.False(t, otaregexp.IsPlist("manifest.xml"))
}
