package execraw

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Supported output encoding names.
const (
	EncodingUTF8    = "utf8"
	EncodingUTF16LE = "utf16le"
	EncodingUTF16BE = "utf16be"
	EncodingCP1252  = "cp1252"
	EncodingAuto    = "auto"
)

// resolveEncoding maps an encoding name to a golang.org/x/text Encoding.
// A nil return means UTF-8 passthrough.
func resolveEncoding(name string) encoding.Encoding {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case EncodingCP1252, "windows-1252", "latin1":
		return charmap.Windows1252
	case EncodingUTF16LE, "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case EncodingUTF16BE, "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	default:
		return nil
	}
}

// sniffEncoding inspects raw bytes for a BOM or the null-byte pattern of
// BOM-less UTF-16 and returns the matching encoding, or nil for UTF-8.
func sniffEncoding(data []byte) encoding.Encoding {
	if len(data) >= 2 {
		if data[0] == 0xFF && data[1] == 0xFE {
			return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
		}

		if data[0] == 0xFE && data[1] == 0xFF {
			return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
		}
	}

	if LooksUTF16(data) {
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	}

	return nil
}

// LooksUTF16 reports whether data appears to be 16-bit encoded: a large
// share of null bytes in the sample. wsl.exe emits UTF-16LE on many host
// locales without a BOM.
func LooksUTF16(data []byte) bool {
	if len(data) < 4 {
		return false
	}

	sample := data
	if len(sample) > 512 {
		sample = sample[:512]
	}

	nulls := bytes.Count(sample, []byte{0})

	return nulls*4 >= len(sample) // at least 25% null bytes
}

// DecodeOutput converts raw command output to a UTF-8 string per the named
// encoding ("auto" sniffs a BOM or null-byte pattern). Decoding is best
// effort: on decoder failure the raw bytes are returned with nulls stripped
// rather than losing the output entirely.
func DecodeOutput(data []byte, encodingName string) string {
	if len(data) == 0 {
		return ""
	}

	var enc encoding.Encoding

	switch strings.ToLower(strings.TrimSpace(encodingName)) {
	case "", EncodingUTF8, "utf-8":
		return string(data)
	case EncodingAuto:
		enc = sniffEncoding(data)
	default:
		enc = resolveEncoding(encodingName)
	}

	if enc == nil {
		return string(data)
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return string(bytes.ReplaceAll(data, []byte{0}, nil))
	}

	return string(decoded)
}
