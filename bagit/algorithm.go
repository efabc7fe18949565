package bagit

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"strings"
)

// Algorithm is one of the checksum algorithms a bag manifest may use.
type Algorithm int

// The zero Algorithm is not valid.
const (
	MD5 Algorithm = iota + 1
	SHA1
	SHA256
	SHA512
)

// Algorithms lists every supported algorithm, weakest first.
var Algorithms = []Algorithm{MD5, SHA1, SHA256, SHA512}

type algorithmInfo struct {
	token    string // used in manifest file names
	digest   string // name of the digest to ask a digesting layer for
	newHash  func() hash.Hash
	spelling []string // accepted spellings, already lower case without hyphens
}

var algorithmTable = map[Algorithm]algorithmInfo{
	MD5:    {"md5", "MD5", md5.New, []string{"md5"}},
	SHA1:   {"sha1", "SHA-1", sha1.New, []string{"sha1", "sha"}},
	SHA256: {"sha256", "SHA-256", sha256.New, []string{"sha256"}},
	SHA512: {"sha512", "SHA-512", sha512.New, []string{"sha512"}},
}

// UnsupportedAlgorithmError is returned when a checksum algorithm name is
// not recognized.
type UnsupportedAlgorithmError struct {
	Name string
}

func (e *UnsupportedAlgorithmError) Error() string {
	return fmt.Sprintf("unsupported checksum algorithm %q", e.Name)
}

// LookupAlgorithm returns the algorithm with the given name. The lookup
// ignores case and hyphens, so "sha-256", "SHA256" and "SHA-256" are all
// SHA256.
func LookupAlgorithm(name string) (Algorithm, error) {
	key := strings.ToLower(strings.Replace(name, "-", "", -1))
	for _, alg := range Algorithms {
		for _, s := range algorithmTable[alg].spelling {
			if s == key {
				return alg, nil
			}
		}
	}
	return 0, &UnsupportedAlgorithmError{Name: name}
}

// ParseAlgorithms looks up each name in turn. Duplicates are removed,
// keeping the first occurrence.
func ParseAlgorithms(names []string) ([]Algorithm, error) {
	var result []Algorithm
	seen := make(map[Algorithm]bool)
	for _, name := range names {
		alg, err := LookupAlgorithm(name)
		if err != nil {
			return nil, err
		}
		if seen[alg] {
			continue
		}
		seen[alg] = true
		result = append(result, alg)
	}
	return result, nil
}

// Valid reports whether a is one of the supported algorithms.
func (a Algorithm) Valid() bool {
	_, ok := algorithmTable[a]
	return ok
}

// Token is the lower case name used in manifest file names, e.g. "sha256".
func (a Algorithm) Token() string { return algorithmTable[a].token }

// DigestName is the canonical digest identifier, e.g. "SHA-256".
func (a Algorithm) DigestName() string { return algorithmTable[a].digest }

// New returns a new hash.Hash computing this algorithm. It panics if a is
// not valid.
func (a Algorithm) New() hash.Hash {
	info, ok := algorithmTable[a]
	if !ok {
		panic(fmt.Sprintf("bagit: unknown algorithm %d", int(a)))
	}
	return info.newHash()
}

func (a Algorithm) String() string {
	if !a.Valid() {
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
	return a.DigestName()
}

// ManifestName returns the payload manifest file name for a.
func ManifestName(a Algorithm) string {
	return "manifest-" + a.Token() + ".txt"
}

// TagManifestName returns the tag manifest file name for a.
func TagManifestName(a Algorithm) string {
	return "tagmanifest-" + a.Token() + ".txt"
}

// AlgorithmFromManifestName parses a payload or tag manifest file name.
// The boolean is true for tag manifests. ok is false if name is not a
// manifest of a supported algorithm.
func AlgorithmFromManifestName(name string) (alg Algorithm, tag bool, ok bool) {
	if !strings.HasSuffix(name, ".txt") {
		return 0, false, false
	}
	base := strings.TrimSuffix(name, ".txt")
	switch {
	case strings.HasPrefix(base, "tagmanifest-"):
		tag = true
		base = strings.TrimPrefix(base, "tagmanifest-")
	case strings.HasPrefix(base, "manifest-"):
		base = strings.TrimPrefix(base, "manifest-")
	default:
		return 0, false, false
	}
	alg, err := LookupAlgorithm(base)
	if err != nil {
		return 0, false, false
	}
	return alg, tag, true
}
