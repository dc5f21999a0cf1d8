package content

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// decodeLesson returns data as UTF-8. Binary files are rejected; text in a
// legacy charset is transcoded.
func decodeLesson(name string, data []byte) ([]byte, error) {
	mtype := mimetype.Detect(data)
	if !isText(mtype) {
		return nil, fmt.Errorf("%w: %s is not a text file (detected %s)", ErrInvalidLesson, name, mtype.String())
	}
	if utf8.Valid(data) {
		return data, nil
	}

	detected := detectCharset(data)
	enc, canonical := charset.Lookup(detected)
	if enc == nil {
		return nil, fmt.Errorf("%w: %s is not UTF-8 and charset %q is unsupported", ErrInvalidLesson, name, detected)
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: decode %s: %v", ErrInvalidLesson, name, canonical, err)
	}
	return decoded, nil
}

func isText(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func detectCharset(data []byte) string {
	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil {
		return "windows-1252"
	}
	return strings.ToLower(result.Charset)
}
