package bagit

import (
	"archive/zip"
	"encoding/hex"
	"errors"
	"io"
	"io/ioutil"
	"sort"
	"strings"
)

// Reader reads a zipped bag, such as one made by Writer.
type Reader struct {
	z       *zip.Reader
	dirname string // includes trailing slash, or is empty
	files   map[string]*zip.File
}

// NewReader creates a bag reader which wraps r. It expects a ZIP datastream,
// and uses size to locate the zip manifest block, which is at the end.
//
// The checksums are not checked upon opening. Call Verify() to verify all the
// checksums.
//
// Closing a reader does not close the underlying ReaderAt.
func NewReader(r io.ReaderAt, size int64) (*Reader, error) {
	in, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	result := &Reader{
		z:     in,
		files: make(map[string]*zip.File),
	}
	if len(in.File) > 0 {
		paths := strings.SplitN(in.File[0].Name, "/", 2)
		if len(paths) == 2 {
			result.dirname = paths[0] + "/"
		}
	}
	for _, f := range in.File {
		if !strings.HasPrefix(f.Name, result.dirname) || strings.HasSuffix(f.Name, "/") {
			continue
		}
		result.files[strings.TrimPrefix(f.Name, result.dirname)] = f
	}
	return result, nil
}

var (
	// ErrNotFound means a stream inside a zip file with the given name
	// could not be found.
	ErrNotFound = errors.New("stream not found")
)

// Open returns a reader for the payload file having the given name.
// The name is unencoded; the file is looked for at "<bag name>/data/<name>".
func (r *Reader) Open(name string) (io.ReadCloser, error) {
	return r.open(PayloadDir + "/" + EncodeBarePath(name))
}

// open will open any file, not necessarily one inside the data directory.
func (r *Reader) open(path string) (io.ReadCloser, error) {
	f, ok := r.files[path]
	if !ok {
		return nil, ErrNotFound
	}
	return f.Open()
}

func (r *Reader) readFile(path string) ([]byte, error) {
	rc, err := r.open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ioutil.ReadAll(rc)
}

// Files returns the unencoded names of the payload files, sorted.
func (r *Reader) Files() []string {
	var result []string
	prefix := PayloadDir + "/"
	for path := range r.files {
		if strings.HasPrefix(path, prefix) {
			result = append(result, DecodePath(strings.TrimPrefix(path, prefix)))
		}
	}
	sort.Strings(result)
	return result
}

// Tags returns the tags in the bag declaration followed by those in
// bag-info.txt. A missing bag-info.txt is not an error.
func (r *Reader) Tags() (Tags, error) {
	var result Tags
	for _, name := range []string{DeclarationName, BagInfoName} {
		b, err := r.readFile(name)
		if err == ErrNotFound && name == BagInfoName {
			continue
		} else if err != nil {
			return nil, err
		}
		tags, err := ReadLabelsAndValues(b)
		if err != nil {
			return nil, err
		}
		result = append(result, tags...)
	}
	return result, nil
}

// Checksum returns the checksums recorded in the payload manifests for the
// given unencoded payload file name. It returns nil if the file is not in
// any manifest.
func (r *Reader) Checksum(name string) map[Algorithm]string {
	target := PayloadDir + "/" + EncodeBarePath(name)
	var result map[Algorithm]string
	for path := range r.files {
		alg, tag, ok := AlgorithmFromManifestName(path)
		if !ok || tag {
			continue
		}
		entries, err := r.manifest(path)
		if err != nil {
			continue
		}
		if sum, ok := entries.Get(target); ok {
			if result == nil {
				result = make(map[Algorithm]string)
			}
			result[alg] = sum
		}
	}
	return result
}

func (r *Reader) manifest(path string) (Pairs, error) {
	b, err := r.readFile(path)
	if err != nil {
		return nil, err
	}
	return ReadManifest(b)
}

// Verify checks the bag declaration, every payload and tag manifest, and
// that each payload file is listed in every payload manifest. Problems with
// the bag are returned as a BagError. Any other error means the
// verification itself could not be done.
func (r *Reader) Verify() error {
	b, err := r.readFile(DeclarationName)
	if err == ErrNotFound {
		return BagError{Path: DeclarationName, Reason: "missing"}
	} else if err != nil {
		return err
	}
	decl, err := ReadDeclaration(b)
	if err != nil {
		return BagError{Path: DeclarationName, Reason: err.Error()}
	}
	for _, label := range []string{VersionLabel, EncodingLabel} {
		if _, ok := decl.Get(label); !ok {
			return BagError{Path: DeclarationName, Reason: "missing " + label}
		}
	}

	var payloadManifests []string
	for path := range r.files {
		alg, tag, ok := AlgorithmFromManifestName(path)
		if !ok {
			continue
		}
		if !tag {
			payloadManifests = append(payloadManifests, path)
		}
		if err := r.verifyManifest(path, alg, tag); err != nil {
			return err
		}
	}
	if len(payloadManifests) == 0 {
		return BagError{Reason: "no payload manifest"}
	}

	// every payload file must be in every payload manifest
	for _, mpath := range payloadManifests {
		entries, err := r.manifest(mpath)
		if err != nil {
			return err
		}
		for path := range r.files {
			if !strings.HasPrefix(path, PayloadDir+"/") {
				continue
			}
			if _, ok := entries.Get(path); !ok {
				return BagError{Path: path, Reason: "not listed in " + mpath}
			}
		}
	}
	return nil
}

func (r *Reader) verifyManifest(mpath string, alg Algorithm, tag bool) error {
	entries, err := r.manifest(mpath)
	if err != nil {
		if _, ok := err.(*ValidationError); ok {
			return BagError{Path: mpath, Reason: err.Error()}
		}
		return err
	}
	for _, entry := range entries {
		inPayload := strings.HasPrefix(entry.Key, PayloadDir+"/")
		if tag == inPayload {
			return BagError{Path: mpath, Reason: "lists " + entry.Key}
		}
		rc, err := r.open(entry.Key)
		if err == ErrNotFound {
			return BagError{Path: entry.Key, Reason: "listed in " + mpath + " but missing"}
		} else if err != nil {
			return err
		}
		h := alg.New()
		_, err = io.Copy(h, rc)
		rc.Close()
		if err != nil {
			return err
		}
		if !strings.EqualFold(hex.EncodeToString(h.Sum(nil)), entry.Value) {
			return BagError{Path: entry.Key, Reason: alg.Token() + " checksum mismatch"}
		}
	}
	return nil
}
