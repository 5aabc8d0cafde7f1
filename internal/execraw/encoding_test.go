package execraw

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

func utf16le(t *testing.T, s string) []byte {
	t.Helper()

	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()

	out, err := enc.Bytes([]byte(s))
	require.NoError(t, err)

	return out
}

func TestDecodeOutput_UTF8Passthrough(t *testing.T) {
	require.Equal(t, "hello", DecodeOutput([]byte("hello"), ""))
	require.Equal(t, "hello", DecodeOutput([]byte("hello"), EncodingUTF8))
	require.Equal(t, "", DecodeOutput(nil, ""))
}

func TestDecodeOutput_UTF16LE(t *testing.T) {
	raw := utf16le(t, "Ubuntu-22.04\r\n")

	decoded := DecodeOutput(raw, EncodingUTF16LE)

	require.Equal(t, "Ubuntu-22.04\r\n", decoded)
}

func TestDecodeOutput_AutoSniffsNullHeavyOutput(t *testing.T) {
	// BOM-less UTF-16LE, the way wsl.exe emits its listing on many locales.
	raw := utf16le(t, "  NAME      STATE      VERSION\n* Ubuntu    Running    2\n")

	decoded := DecodeOutput(raw, EncodingAuto)

	require.Contains(t, decoded, "Ubuntu")
	require.NotContains(t, decoded, "\x00")
}

func TestDecodeOutput_AutoWithBOM(t *testing.T) {
	raw := append([]byte{0xFF, 0xFE}, utf16le(t, "Debian")...)

	require.Equal(t, "Debian", DecodeOutput(raw, EncodingAuto))
}

func TestDecodeOutput_AutoKeepsPlainASCII(t *testing.T) {
	require.Equal(t, "plain text", DecodeOutput([]byte("plain text"), EncodingAuto))
}

func TestLooksUTF16(t *testing.T) {
	require.True(t, LooksUTF16(utf16le(t, "Ubuntu Running")))
	require.False(t, LooksUTF16([]byte("Ubuntu Running")))
	require.False(t, LooksUTF16([]byte{0}))
	// A stray null here and there is not 16-bit encoding.
	require.False(t, LooksUTF16([]byte(strings.Repeat("abcdefg", 20)+"\x00")))
}
