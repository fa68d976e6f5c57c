package extract

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// prescanLen is how much of a page is searched for a <meta> charset.
const prescanLen = 1024

// Decode converts raw page bytes to a valid UTF-8 string.
// Pages are transcoded only when a BOM or <meta> declares a non-UTF-8
// charset. Otherwise undecodable byte sequences are dropped.
func Decode(raw []byte) string {
	enc, name, certain := charset.DetermineEncoding(raw, "")
	if name == "utf-8" || (!certain && !declaresCharset(raw)) {
		return strings.ToValidUTF8(string(raw), "")
	}

	out, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), "")
	}
	return strings.ToValidUTF8(string(out), "")
}

// declaresCharset reports whether the head of raw carries a <meta> charset
// other than UTF-8. Non-ASCII bytes are blanked so the detector cannot fall
// back to its windows-1252 guess.
func declaresCharset(raw []byte) bool {
	head := make([]byte, min(len(raw), prescanLen))
	for i, b := range raw[:len(head)] {
		if b < utf8.RuneSelf {
			head[i] = b
		} else {
			head[i] = ' '
		}
	}
	_, name, _ := charset.DetermineEncoding(head, "")
	return name != "utf-8"
}
