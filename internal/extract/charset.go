package extract

import (
	"bytes"
	"mime"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
)

const metaSniffLimit = 4096

var metaCharsetPattern = regexp.MustCompile(`(?i)<meta[^>]+charset\s*=\s*["']?\s*([a-z0-9_\-:.]+)`)

// DecodeBody converts a fetched page to UTF-8. The declared charset (header,
// then in-page meta) is authoritative; byte-level detection is only consulted
// when nothing is declared or a UTF-8 declaration does not hold.
func DecodeBody(body []byte, contentType string) (string, string) {
	label := charsetFromContentType(contentType)
	if label == "" {
		label = charsetFromMeta(body)
	}

	if label == "" || isUTF8Label(label) {
		if utf8.Valid(body) {
			return string(body), "utf-8"
		}
		detected := detectCharset(body)
		if detected == "" || isUTF8Label(detected) {
			return strings.ToValidUTF8(string(body), "�"), "utf-8"
		}
		label = detected
	}

	enc := encodingFor(label)
	if enc == nil {
		return strings.ToValidUTF8(string(body), "�"), "utf-8"
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return strings.ToValidUTF8(string(body), "�"), "utf-8"
	}
	return string(decoded), strings.ToLower(label)
}

func charsetFromContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(params["charset"])
}

func charsetFromMeta(body []byte) string {
	head := body
	if len(head) > metaSniffLimit {
		head = head[:metaSniffLimit]
	}
	m := metaCharsetPattern.FindSubmatch(head)
	if m == nil {
		return ""
	}
	return string(bytes.TrimSpace(m[1]))
}

func detectCharset(body []byte) string {
	result, err := chardet.NewHtmlDetector().DetectBest(body)
	if err != nil || result == nil {
		return ""
	}
	return result.Charset
}

func isUTF8Label(label string) bool {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "utf-8", "utf8", "unicode-1-1-utf-8":
		return true
	}
	return false
}

func encodingFor(label string) encoding.Encoding {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "shift_jis", "shift-jis", "sjis", "x-sjis", "ms_kanji", "windows-31j", "cp932", "csshiftjis":
		return japanese.ShiftJIS
	case "euc-jp", "eucjp", "x-euc-jp", "cseucpkdfmtjapanese":
		return japanese.EUCJP
	case "iso-2022-jp", "csiso2022jp":
		return japanese.ISO2022JP
	}
	enc, _ := charset.Lookup(label)
	return enc
}
