package exportoptions

import "strings"

// normalize percent-encodes the URL leaves of doc in place. doc must be a copy
// owned by the caller.
func normalize(doc Document) Document {
	if s, ok := doc[OnDemandResourcesAssetPacksBaseURLKey].(string); ok {
		doc[OnDemandResourcesAssetPacksBaseURLKey] = EscapeURL(s)
	}
	if manifest := doc.Sub(ManifestKey); manifest != nil {
		for _, key := range manifestURLKeys {
			if s, ok := manifest[key].(string); ok {
				manifest[key] = EscapeURL(s)
			}
		}
		doc[ManifestKey] = map[string]any(manifest)
	}
	return doc
}

const upperhex = "0123456789ABCDEF"

// EscapeURL percent-encodes '#' and every byte of raw that is neither an
// RFC 3986 unreserved nor a reserved character. Existing %XX escapes are
// kept, so EscapeURL(EscapeURL(s)) == EscapeURL(s).
func EscapeURL(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '%' && i+2 < len(raw) && isHex(raw[i+1]) && isHex(raw[i+2]):
			b.WriteByte(c)
		case allowedInURL(c):
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&15])
		}
	}
	return b.String()
}

func allowedInURL(c byte) bool {
	if 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' {
		return true
	}
	switch c {
	case '-', '_', '.', '~', // unreserved
		':', '/', '?', '[', ']', '@', // gen-delims except '#'
		'!', '$', '&', '\'', '(', ')', '*', '+', ',', ';', '=': // sub-delims
		return true
	}
	return false
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}
