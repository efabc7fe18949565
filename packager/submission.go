package packager

import (
	"log"
	"time"

	"github.com/antonholmquist/jason"

	"github.com/ndlib/bagger/bagit"
)

// Submission holds what the packager needs to know about the submission
// being deposited. It is supplied by the data access layer.
type Submission struct {
	ID             string
	Title          string
	SubmitterName  string
	SubmitterEmail string
	SubmittedDate  time.Time

	// Metadata is the submission's JSON metadata blob. It may be empty.
	Metadata string
}

// CustodialResource is one submitted file after it has been streamed and
// checksummed. Checksums holds lower case hex digests.
type CustodialResource struct {
	Name      string
	Size      int64
	Checksums map[bagit.Algorithm]string
}

// submissionMetadata are the fields we pull out of the metadata blob.
type submissionMetadata struct {
	PublisherID string
	DOI         string
}

// parseMetadata reads the publisher id and DOI from the metadata blob. The
// publisher id is either the top level "publisher-id" string or the "id"
// of a "publisher" object. Metadata we cannot parse is logged and treated
// as empty, since none of these fields are required.
func parseMetadata(blob string) submissionMetadata {
	var result submissionMetadata
	if blob == "" {
		return result
	}
	obj, err := jason.NewObjectFromBytes([]byte(blob))
	if err != nil {
		log.Printf("submission metadata: %s", err.Error())
		return result
	}
	if s, err := obj.GetString("publisher-id"); err == nil {
		result.PublisherID = s
	} else if s, err := obj.GetString("publisher", "id"); err == nil {
		result.PublisherID = s
	}
	if s, err := obj.GetString("doi"); err == nil {
		result.DOI = s
	}
	return result
}
