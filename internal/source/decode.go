package source

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode returns data as NFC-normalized UTF-8 with "\n" line endings. Input
// that is not valid UTF-8 is read as Windows-1252, the encoding of older
// bulletin exports.
func Decode(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)

	var text string
	if utf8.Valid(data) {
		text = string(data)
	} else {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			text = strings.ToValidUTF8(string(data), "�")
		} else {
			text = string(decoded)
		}
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	return norm.NFC.String(text)
}
