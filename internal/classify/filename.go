package classify

import (
	"strings"
	"unicode"
)

const maxFilenameLen = 255

var invalidFilenameChars = `<>:"/\|?*`

// Device names the storage backend reserves regardless of extension.
var reservedDeviceNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {},
	"COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {},
	"LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// SanitizeFilename makes a name acceptable to the document store: strips
// characters the store rejects, strips control characters, collapses runs of
// whitespace, trims leading and trailing dots and spaces, underscore-prefixes
// reserved device names, and truncates to 255 characters. Applying it twice
// returns the same string.
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		if strings.ContainsRune(invalidFilenameChars, r) || unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	s := strings.Join(strings.Fields(b.String()), " ")
	s = strings.Trim(s, ". ")

	if isReservedDeviceName(s) {
		s = "_" + s
	}

	if runes := []rune(s); len(runes) > maxFilenameLen {
		s = string(runes[:maxFilenameLen])
		s = strings.TrimRight(s, ". ")
	}
	return s
}

func isReservedDeviceName(name string) bool {
	stem := name
	if i := strings.LastIndex(name, "."); i >= 0 {
		stem = name[:i]
	}
	_, ok := reservedDeviceNames[strings.ToUpper(stem)]
	return ok
}
