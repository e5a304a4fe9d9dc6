// Package strfunc is the string-transform collaborator invoked when a data
// declaration wraps a string literal in one of the __utf16__/__utf32__
// family of pseudo-functions — grounded on NASM's string_transform /
// strfunc dispatch table in asm/strfunc.c.
package strfunc

import "unicode/utf16"

// Func identifies a supported string transform.
type Func int

const (
	UTF16 Func = iota
	UTF16LE
	UTF16BE
	UTF32
	UTF32LE
	UTF32BE
)

var byName = map[string]Func{
	"__utf16__":   UTF16,
	"__utf16le__": UTF16LE,
	"__utf16be__": UTF16BE,
	"__utf32__":   UTF32,
	"__utf32le__": UTF32LE,
	"__utf32be__": UTF32BE,
}

// Lookup resolves a scanner identifier spelling to a Func.
func Lookup(word string) (Func, bool) {
	f, ok := byName[word]
	return f, ok
}

// Apply transforms the raw bytes of a quoted string literal according to
// fn, returning the re-encoded byte sequence ready to splice into a data
// declaration's byte stream.
func Apply(fn Func, raw string) []byte {
	runes := []rune(raw)
	switch fn {
	case UTF16, UTF16LE:
		return encodeUTF16(runes, false)
	case UTF16BE:
		return encodeUTF16(runes, true)
	case UTF32, UTF32LE:
		return encodeUTF32(runes, false)
	case UTF32BE:
		return encodeUTF32(runes, true)
	default:
		return nil
	}
}

func encodeUTF16(runes []rune, bigEndian bool) []byte {
	units := utf16.Encode(runes)
	out := make([]byte, 0, len(units)*2)
	for _, u := range units {
		if bigEndian {
			out = append(out, byte(u>>8), byte(u))
		} else {
			out = append(out, byte(u), byte(u>>8))
		}
	}
	return out
}

func encodeUTF32(runes []rune, bigEndian bool) []byte {
	out := make([]byte, 0, len(runes)*4)
	for _, r := range runes {
		v := uint32(r)
		if bigEndian {
			out = append(out, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
		} else {
			out = append(out, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
		}
	}
	return out
}
