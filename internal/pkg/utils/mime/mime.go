package mime

import (
	"bytes"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// SniffLen is how many leading bytes are inspected.
const SniffLen = 3072

func init() {
	mimetype.SetLimit(SniffLen)
}

// Detect inspects content (never a client supplied header) and returns the bare
// MIME type, without parameters, plus its canonical extension without the dot.
// The extension is empty when the format has none.
func Detect(content []byte) (mimeType string, ext string) {
	m := mimetype.Detect(content)
	return bare(m.String()), strings.TrimPrefix(m.Extension(), ".")
}

// Sniff detects the MIME type of a stream. The returned reader replays the
// inspected bytes followed by the rest of r.
func Sniff(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, SniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, err
	}
	head = head[:n]
	return bare(mimetype.Detect(head).String()), io.MultiReader(bytes.NewReader(head), r), nil
}

func bare(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.TrimSpace(mt)
}
