package reader

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeLabelFile(t *testing.T, dir, name string, nChunks int) []byte {
	t.Helper()
	data := make([]byte, nChunks*chunkBytes)
	for i := range data {
		data[i] = byte(i % 251)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return data
}

func writeRawFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func readAll(t *testing.T, r *FileReader) []byte {
	t.Helper()
	var got []byte
	for {
		b, ok, err := r.Next(context.Background())
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		if b.Pos != uint64(len(got)) {
			t.Fatalf("batch.Pos = %d, want %d", b.Pos, len(got))
		}
		got = append(got, b.Data...)
	}
	return got
}

func TestFileReader_SingleFile(t *testing.T) {
	dir := t.TempDir()
	want := writeLabelFile(t, dir, "postdata_0.bin", 20)

	r, err := NewFileReader(dir, 256, 0)
	if err != nil {
		t.Fatalf("NewFileReader: %v", err)
	}
	defer r.Close()

	got := readAll(t, r)
	if !bytes.Equal(want, got) {
		t.Fatalf("got %d bytes, want %d bytes (content mismatch)", len(got), len(want))
	}
}

func TestFileReader_MultipleFiles(t *testing.T) {
	dir := t.TempDir()
	want0 := writeLabelFile(t, dir, "postdata_0.bin", 8)
	want1 := writeLabelFile(t, dir, "postdata_1.bin", 8)

	r, err := NewFileReader(dir, 1024, 0)
	if err != nil {
		t.Fatalf("NewFileReader: %v", err)
	}
	defer r.Close()

	got := readAll(t, r)
	want := append(append([]byte(nil), want0...), want1...)
	if !bytes.Equal(want, got) {
		t.Fatalf("got %d bytes, want %d bytes (content mismatch)", len(got), len(want))
	}
}

func TestFileReader_NoFiles(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewFileReader(dir, 1024, 0); err == nil {
		t.Fatal("expected error for empty dataset directory, got nil")
	}
}

func TestFileReader_BatchesAreChunkAligned(t *testing.T) {
	dir := t.TempDir()
	writeLabelFile(t, dir, "postdata_0.bin", 30)

	r, err := NewFileReader(dir, 333, 0) // not a multiple of chunkBytes
	if err != nil {
		t.Fatalf("NewFileReader: %v", err)
	}
	defer r.Close()

	for {
		b, ok, err := r.Next(context.Background())
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		if len(b.Data)%chunkBytes != 0 {
			t.Fatalf("batch length %d is not a multiple of chunkBytes", len(b.Data))
		}
	}
}

// TestFileReader_CarriesRemainderAcrossFileBoundary exercises a dataset whose
// first file is not itself chunk-aligned: the logical stream must still be
// read out contiguously, with the boundary remainder stitched onto the start
// of the next file rather than dropped.
func TestFileReader_CarriesRemainderAcrossFileBoundary(t *testing.T) {
	dir := t.TempDir()

	full := make([]byte, 3*chunkBytes+40) // 3 whole chunks plus a 40-byte tail
	for i := range full {
		full[i] = byte(i % 251)
	}
	writeRawFile(t, dir, "postdata_0.bin", full)

	// File 1 carries the rest of the chunk straddling the boundary plus more
	// whole chunks.
	rest := make([]byte, 2*chunkBytes-40)
	for i := range rest {
		rest[i] = byte((i + 3*chunkBytes + 40) % 251)
	}
	writeRawFile(t, dir, "postdata_1.bin", rest)

	want := append(append([]byte(nil), full[:3*chunkBytes+40]...), rest...)

	r, err := NewFileReader(dir, 128, 0)
	if err != nil {
		t.Fatalf("NewFileReader: %v", err)
	}
	defer r.Close()

	got := readAll(t, r)
	if !bytes.Equal(want, got) {
		t.Fatalf("got %d bytes, want %d bytes (boundary bytes dropped or reordered)", len(got), len(want))
	}
	if len(got)%chunkBytes != 0 {
		t.Fatalf("total bytes read %d is not a multiple of chunkBytes", len(got))
	}
}

// TestFileReader_TrailingUnalignedDataErrors verifies that a dataset whose
// final byte count isn't a multiple of chunkBytes is reported as an error
// instead of silently dropping the trailing bytes.
func TestFileReader_TrailingUnalignedDataErrors(t *testing.T) {
	dir := t.TempDir()
	writeRawFile(t, dir, "postdata_0.bin", make([]byte, chunkBytes+10))

	r, err := NewFileReader(dir, 128, 0)
	if err != nil {
		t.Fatalf("NewFileReader: %v", err)
	}
	defer r.Close()

	for {
		_, ok, err := r.Next(context.Background())
		if err != nil {
			return // expected
		}
		if !ok {
			t.Fatal("expected a trailing-bytes error, got clean EOF")
		}
	}
}
