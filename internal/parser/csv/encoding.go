package csv

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// decoderFor resolves a WHATWG encoding label to a decoding transformer. It
// returns nil for UTF-8 (including the empty label), which needs no decoding.
func decoderFor(label string) (transform.Transformer, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", label, err)
	}
	if name, _ := htmlindex.Name(enc); name == "utf-8" {
		return nil, nil
	}
	return enc.NewDecoder(), nil
}

// newlineNormalizer rewrites CRLF and lone CR line terminators to LF so that
// encoding/csv, which only recognises LF and CRLF, also splits old-Mac files.
// Bytes inside a quoted field pass through unchanged. A doubled quote toggles
// the state twice, so escapes need no special case.
type newlineNormalizer struct {
	inQuote bool
}

func (n *newlineNormalizer) Reset() { n.inQuote = false }

func (n *newlineNormalizer) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]
		if c != '\r' || n.inQuote {
			if nDst >= len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			if c == '"' {
				n.inQuote = !n.inQuote
			}
			dst[nDst] = c
			nDst++
			nSrc++
			continue
		}

		// A CR at the end of the chunk may be the first half of CRLF.
		if nSrc+1 == len(src) && !atEOF {
			return nDst, nSrc, transform.ErrShortSrc
		}
		if nDst >= len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		dst[nDst] = '\n'
		nDst++
		if nSrc+1 < len(src) && src[nSrc+1] == '\n' {
			nSrc += 2
		} else {
			nSrc++
		}
	}
	return nDst, nSrc, nil
}
