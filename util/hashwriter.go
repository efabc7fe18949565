package util

import (
	"encoding/hex"
	"hash"
	"io"

	"github.com/ndlib/bagger/bagit"
)

// VerifyStreamHash checksums the given io.Reader and compares the result
// against the hex checksums in want. It returns true if every one matches.
// An empty want map is trivially true. The reader is not closed when
// finished.
func VerifyStreamHash(r io.Reader, want map[bagit.Algorithm]string) (bool, error) {
	if len(want) == 0 {
		return true, nil
	}
	var algs []bagit.Algorithm
	for alg := range want {
		algs = append(algs, alg)
	}
	hw := NewHashWriterPlain(algs...)
	_, err := io.Copy(hw, r)
	got := hw.Sums()
	var result = true
	for alg, goal := range want {
		result = result && got[alg] == goal
	}
	return result, err
}

// An HashWriter wraps an io.Writer and also calculates a checksum of the
// bytes written for each requested algorithm. It also counts the bytes.
type HashWriter struct {
	io.Writer // our io.MultiWriter
	hashes    map[bagit.Algorithm]hash.Hash
	n         int64
}

// NewHashWriter returns a HashWriter wrapping w and computing each of algs.
func NewHashWriter(w io.Writer, algs ...bagit.Algorithm) *HashWriter {
	hw := &HashWriter{hashes: make(map[bagit.Algorithm]hash.Hash)}
	var targets []io.Writer
	if w != nil {
		targets = append(targets, w)
	}
	for _, alg := range algs {
		if _, ok := hw.hashes[alg]; ok {
			continue
		}
		h := alg.New()
		hw.hashes[alg] = h
		targets = append(targets, h)
	}
	targets = append(targets, counter{&hw.n})
	hw.Writer = io.MultiWriter(targets...)
	return hw
}

// NewHashWriterPlain returns a HashWriter that does not wrap an output
// stream. It will just compute the checksums of the data written to it.
func NewHashWriterPlain(algs ...bagit.Algorithm) *HashWriter {
	return NewHashWriter(nil, algs...)
}

// Size returns the number of bytes written so far.
func (hw *HashWriter) Size() int64 {
	return hw.n
}

// Sum returns the lower case hex checksum for alg, and false if this
// writer is not computing alg.
func (hw *HashWriter) Sum(alg bagit.Algorithm) (string, bool) {
	h, ok := hw.hashes[alg]
	if !ok {
		return "", false
	}
	return hex.EncodeToString(h.Sum(nil)), true
}

// Sums returns the hex checksums for every algorithm this writer computes.
func (hw *HashWriter) Sums() map[bagit.Algorithm]string {
	result := make(map[bagit.Algorithm]string, len(hw.hashes))
	for alg := range hw.hashes {
		result[alg], _ = hw.Sum(alg)
	}
	return result
}

type counter struct {
	n *int64
}

func (c counter) Write(p []byte) (int, error) {
	*c.n += int64(len(p))
	return len(p), nil
}
