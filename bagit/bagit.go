// Package bagit implements the parts of the BagIt specification (RFC 8493)
// needed to deposit a submission into an external repository. It knows how
// to encode and decode tag files and manifests byte for byte, which checksum
// algorithms a bag may use, and how to assemble and verify a zipped bag.
//
// The encoding rules are the subtle part. Only CR, LF and the percent sign
// are percent-encoded inside manifest paths; spaces are left as is. Tag labels
// are never encoded, they are rejected instead if they cannot be represented.
//
// The zip Writer and Reader mirror the archive/zip interface as much as
// possible. Bags are zip files which do not use compression.
//
// The BagIt spec can be found at https://tools.ietf.org/html/rfc8493.
package bagit

import (
	"fmt"
)

// Version identifies a version of the BagIt specification.
type Version struct {
	Major  int
	Minor  int
	Dotted bool // write as "M.m" instead of "Mm"
}

func (v Version) String() string {
	if v.Dotted {
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	}
	return fmt.Sprintf("%d%d", v.Major, v.Minor)
}

var (
	V0_97 = Version{Major: 0, Minor: 97, Dotted: true}
	V1_0  = Version{Major: 1, Minor: 0, Dotted: true}

	// CurrentVersion is the version written into every bag declaration.
	CurrentVersion = V1_0
)

const (
	// DeclarationName is the bag declaration tag file.
	DeclarationName = "bagit.txt"

	// BagInfoName is the bag metadata tag file.
	BagInfoName = "bag-info.txt"

	// PayloadDir is the directory all payload files live under.
	PayloadDir = "data"

	// TagFileEncoding is the only character encoding we write tag files in.
	TagFileEncoding = "UTF-8"

	// labels used in the bag declaration
	VersionLabel  = "BagIt-Version"
	EncodingLabel = "Tag-File-Character-Encoding"
)

// BagError describes a problem found while verifying a bag. It is
// distinct from an I/O error encountered while doing the verification.
type BagError struct {
	Path   string
	Reason string
}

func (e BagError) Error() string {
	if e.Path == "" {
		return "bag: " + e.Reason
	}
	return fmt.Sprintf("bag: %s: %s", e.Path, e.Reason)
}
