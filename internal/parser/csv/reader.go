// Package csv reads delimited input files as a lazy, finite sequence of rows.
//
// Dialect: comma delimiter, double-quote quoting with doubled-quote escape,
// and CR, LF or CRLF line terminators. Rows may have any number of fields;
// width checks are the caller's business. Empty rows are skipped.
//
// The file is opened when iteration starts and closed when it ends, whether
// the data ran out, an error was yielded, the caller stopped early, or the
// context was canceled.
package csv

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/zeebo/xxh3"
	"golang.org/x/text/transform"
)

// Options configures a Reader. The zero value reads UTF-8 input without a
// header.
type Options struct {
	// HasHeader discards the first physical line before any row is yielded.
	HasHeader bool

	// Encoding names the input character set (WHATWG label, e.g. "gbk",
	// "gb18030", "windows-1252"). Empty or "utf-8" means no decoding.
	Encoding string
}

// Reader yields the rows of one file. A Reader is not safe for concurrent
// iteration.
type Reader struct {
	path   string
	opt    Options
	digest uint64
	done   bool
}

// NewReader returns a Reader for path. No I/O happens until Rows is iterated.
func NewReader(path string, opt Options) *Reader {
	return &Reader{path: path, opt: opt}
}

// Path returns the file path the Reader was created with.
func (r *Reader) Path() string { return r.path }

// Digest returns the xxh3 hash of the raw file bytes. It is only meaningful
// after Rows has been drained to the end without error; otherwise ok is false.
func (r *Reader) Digest() (sum uint64, ok bool) { return r.digest, r.done }

// Rows returns the sequence of rows in file order. On failure (open, decode,
// I/O or a malformed record) the sequence yields a single (nil, err) pair and
// ends. Each yielded slice is freshly allocated and owned by the caller.
func (r *Reader) Rows(ctx context.Context) iter.Seq2[[]string, error] {
	return func(yield func([]string, error) bool) {
		r.done = false

		f, err := os.Open(r.path)
		if err != nil {
			yield(nil, fmt.Errorf("csv: open %s: %w", r.path, err))
			return
		}
		defer f.Close()

		h := xxh3.New()
		src, err := r.decode(io.TeeReader(f, h))
		if err != nil {
			yield(nil, err)
			return
		}

		br := bufio.NewReaderSize(src, 64*1024)
		if err := skipBOM(br); err != nil {
			yield(nil, fmt.Errorf("csv: read %s: %w", r.path, err))
			return
		}

		lineOffset := 0
		if r.opt.HasHeader {
			if _, err := br.ReadString('\n'); err != nil && !errors.Is(err, io.EOF) {
				yield(nil, fmt.Errorf("csv: read header of %s: %w", r.path, err))
				return
			}
			lineOffset = 1
		}

		cr := csv.NewReader(br)
		cr.FieldsPerRecord = -1

		for {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			rec, err := cr.Read()
			if errors.Is(err, io.EOF) {
				r.digest = h.Sum64()
				r.done = true
				return
			}
			if err != nil {
				yield(nil, fmt.Errorf("csv: %s: %w", r.path, shiftLines(err, lineOffset)))
				return
			}
			if len(rec) == 0 {
				continue
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// decode wraps src with the configured charset decoder and the line-ending
// normaliser.
func (r *Reader) decode(src io.Reader) (io.Reader, error) {
	dec, err := decoderFor(r.opt.Encoding)
	if err != nil {
		return nil, fmt.Errorf("csv: %s: %w", r.path, err)
	}
	if dec == nil {
		return transform.NewReader(src, &newlineNormalizer{}), nil
	}
	return transform.NewReader(src, transform.Chain(dec, &newlineNormalizer{})), nil
}

// shiftLines adjusts the line numbers of a *csv.ParseError so they count the
// discarded header line.
func shiftLines(err error, offset int) error {
	var pe *csv.ParseError
	if offset == 0 || !errors.As(err, &pe) {
		return err
	}
	shifted := *pe
	shifted.StartLine += offset
	shifted.Line += offset
	return &shifted
}
