package bagit

import (
	"archive/zip"
	"fmt"
	"io"
	"time"
)

// Writer assembles a bag into a zip file. It does no checksumming and
// writes no tag files of its own: payload streams and already generated tag
// files are copied into the archive exactly as given.
type Writer struct {
	z       *zip.Writer     // the underlying zip writer
	dirname string          // includes trailing slash
	names   map[string]bool // every path written so far
}

// NewWriter creates a new bag writer which will serialize itself to the
// provided io.Writer. Use name to set the directory name the bag will
// unserialize into, as required by RFC 8493.
func NewWriter(w io.Writer, name string) *Writer {
	return &Writer{
		z:       zip.NewWriter(w),
		dirname: name + "/",
		names:   make(map[string]bool),
	}
}

// Close writes the zip directory. It does not close the original io.Writer
// provided to NewWriter().
func (w *Writer) Close() error {
	return w.z.Close()
}

// Create starts a new file at the given path inside the bag. The path is
// relative to the bag directory and should already be encoded, e.g.
// "data/file.txt". The returned writer is only valid until the next call
// to Create, WriteFile, or Close.
func (w *Writer) Create(path string) (io.Writer, error) {
	if w.names[path] {
		return nil, fmt.Errorf("bag already contains %s", path)
	}
	w.names[path] = true
	header := zip.FileHeader{
		Name:   w.dirname + path,
		Method: zip.Store,
	}
	header.SetModTime(time.Now())
	return w.z.CreateHeader(&header)
}

// WriteFile writes a complete file into the bag.
func (w *Writer) WriteFile(path string, content []byte) error {
	out, err := w.Create(path)
	if err != nil {
		return err
	}
	_, err = out.Write(content)
	return err
}
