// Package zip writes deflate-compressed archives entry by entry, so large
// bundles stream to disk instead of accumulating in memory.
package zip

import (
	"archive/zip"
	"fmt"
	"io"
)

// Entry names one file inside an archive.
type Entry struct {
	Name string
	Data []byte
}

// Writer wraps archive/zip with deflate as the method for every entry.
type Writer struct {
	zw *zip.Writer
}

// NewWriter begins an archive on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{zw: zip.NewWriter(w)}
}

// Add appends one named entry.
func (w *Writer) Add(name string, data []byte) error {
	fw, err := w.zw.CreateHeader(&zip.FileHeader{
		Name:   name,
		Method: zip.Deflate,
	})
	if err != nil {
		return fmt.Errorf("zip: create entry %q: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("zip: write entry %q: %w", name, err)
	}
	return nil
}

// Close finalizes the central directory.
func (w *Writer) Close() error {
	return w.zw.Close()
}

// Archive writes all entries to w and closes the archive.
func Archive(w io.Writer, entries []Entry) error {
	zw := NewWriter(w)
	for _, e := range entries {
		if err := zw.Add(e.Name, e.Data); err != nil {
			return err
		}
	}
	return zw.Close()
}
