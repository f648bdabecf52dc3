// Package reader streams 128-byte-aligned batches of labels from an
// initialized dataset directory. It is the concrete implementation of the
// data-reader oracle interface the proving core treats as external.
package reader

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/Klingon-tech/klingnet-post/internal/log"
)

// chunkBytes is the label chunk size the rest of the core operates on:
// 8 labels of 16 bytes each.
const chunkBytes = 128

// Batch is a contiguous, 128-byte-aligned slice of the logical label stream,
// tagged with its byte offset into that stream.
type Batch struct {
	Data []byte
	Pos  uint64
}

// Reader is a pull-based iterator over a dataset's label batches.
type Reader interface {
	// Next returns the next batch, or ok=false when the stream is exhausted.
	Next(ctx context.Context) (batch Batch, ok bool, err error)
	Close() error
}

// FileReader reads labels out of one or more fixed-size files under a
// dataset directory (postdata_0.bin, postdata_1.bin, ...), presenting them
// as a single logical, contiguous label stream.
type FileReader struct {
	bufSize int
	files   []string

	cur       int
	curFile   *os.File
	curReader *bufio.Reader
	pos       uint64

	// carry holds a trailing remainder shorter than chunkBytes left over from
	// the previous read, so the logical stream stays contiguous across a
	// label file boundary that isn't itself chunk-aligned.
	carry []byte
}

// NewFileReader opens a FileReader over datadir's label files. chunkSize is
// the internal buffer size (tuning only, not correctness). maxFileSize is
// used only to validate files are expected sizes; a zero value skips the
// check.
func NewFileReader(datadir string, chunkSize int, maxFileSize uint64) (*FileReader, error) {
	if chunkSize <= 0 {
		chunkSize = 1024 * 1024
	}

	files, err := labelFiles(datadir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("reader: no label files found in %s", datadir)
	}

	if maxFileSize > 0 {
		for _, f := range files {
			info, err := os.Stat(f)
			if err != nil {
				return nil, fmt.Errorf("reader: stat %s: %w", f, err)
			}
			if uint64(info.Size()) > maxFileSize {
				return nil, fmt.Errorf("reader: %s exceeds max_file_size", f)
			}
		}
	}

	log.Reader.Debug().Int("num_files", len(files)).Str("datadir", datadir).Msg("opening label dataset")

	r := &FileReader{bufSize: chunkSize, files: files}
	if err := r.openCurrent(); err != nil {
		return nil, err
	}
	return r, nil
}

func labelFiles(datadir string) ([]string, error) {
	entries, err := os.ReadDir(datadir)
	if err != nil {
		return nil, fmt.Errorf("reader: reading %s: %w", datadir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if filepath.Ext(name) == ".bin" {
			files = append(files, filepath.Join(datadir, name))
		}
	}
	sort.Strings(files)
	return files, nil
}

func (r *FileReader) openCurrent() error {
	f, err := os.Open(r.files[r.cur])
	if err != nil {
		return fmt.Errorf("reader: opening %s: %w", r.files[r.cur], err)
	}
	log.Reader.Debug().Str("file", r.files[r.cur]).Msg("opened label file")
	r.curFile = f
	r.curReader = bufio.NewReaderSize(f, r.bufSize)
	return nil
}

// Next reads the next chunk-aligned batch, advancing across file boundaries
// transparently. A trailing remainder shorter than chunkBytes at a file
// boundary is carried forward and prepended to the next file's data, so the
// logical, multi-file label stream never drops bytes at a boundary.
func (r *FileReader) Next(ctx context.Context) (Batch, bool, error) {
	if err := ctx.Err(); err != nil {
		return Batch{}, false, err
	}
	if r.curReader == nil {
		return Batch{}, false, nil
	}

	readSize := r.bufSize - (r.bufSize % chunkBytes)
	if readSize == 0 {
		readSize = chunkBytes
	}
	buf := make([]byte, readSize)

	for {
		n, err := io.ReadFull(r.curReader, buf)
		if n > 0 {
			data := append(r.carry, buf[:n]...)
			r.carry = nil

			aligned := len(data) - (len(data)%chunkBytes)
			if aligned > 0 {
				batch := Batch{Data: data[:aligned], Pos: r.pos}
				r.pos += uint64(aligned)
				if rem := data[aligned:]; len(rem) > 0 {
					r.carry = append([]byte(nil), rem...)
				}
				return batch, true, nil
			}
			r.carry = data
		}

		if err == io.EOF || err == io.ErrUnexpectedEOF {
			if advanceErr := r.advanceFile(); advanceErr != nil {
				return Batch{}, false, advanceErr
			}
			if r.curReader == nil {
				if len(r.carry) > 0 {
					return Batch{}, false, fmt.Errorf("reader: %d trailing bytes at end of dataset are not a multiple of chunk size %d", len(r.carry), chunkBytes)
				}
				return Batch{}, false, nil
			}
			continue
		}
		if err != nil {
			return Batch{}, false, fmt.Errorf("reader: reading %s: %w", r.files[r.cur], err)
		}
	}
}

// advanceFile closes the current file and opens the next one, if any.
// Sets curReader to nil once all files are exhausted.
func (r *FileReader) advanceFile() error {
	if r.curFile != nil {
		r.curFile.Close()
	}
	r.cur++
	if r.cur >= len(r.files) {
		r.curReader = nil
		r.curFile = nil
		return nil
	}
	return r.openCurrent()
}

// Close releases the reader's open file handle, if any.
func (r *FileReader) Close() error {
	if r.curFile != nil {
		return r.curFile.Close()
	}
	return nil
}
