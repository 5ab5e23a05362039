package otaregexp

func IsUUID(name string) bool {
	return UUID.MatchString(name)
}

// IsIPA reports whether an uploaded file name carries the .ipa extension,
// ignoring case.
func IsIPA(name string) bool {
	return IPA.MatchString(name)
}

func IsPlist(name string) bool {
	return Plist.MatchString(name)
}
