package obj

import (
	"bytes"
	"unicode/utf8"
)

// StringTable is the content of an SHT_STRTAB section.
type StringTable []byte

// Lookup returns the NUL terminated string starting at off. It reports false
// when off is outside the table, the string runs off the end of the table, or
// the bytes are not valid UTF-8.
func (t StringTable) Lookup(off uint32) (string, bool) {
	if uint64(off) >= uint64(len(t)) {
		return "", false
	}
	rest := t[off:]
	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		return "", false
	}
	if !utf8.Valid(rest[:end]) {
		return "", false
	}
	return string(rest[:end]), true
}
