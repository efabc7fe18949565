package packager

import (
	"fmt"
	"time"
)

// Layouts used when rendering dates into bag-info.txt.
const (
	SubmissionDateLayout = "2006-01-02T15:04:05.999999999Z07:00"
	BaggingDateLayout    = "2006-01-02"
)

// Model is the flat record handed to the bag-info template. It is built
// once per build and is not modified by the renderer.
type Model struct {
	SubmissionID       string
	Title              string
	SubmitterName      string
	SubmitterEmail     string
	SubmissionDate     string
	PublisherID        string
	ExternalIdentifier string
	SourceOrganization string
	BaggingDate        string
	BagItVersion       string
	CustodialSize      int64
	CustodialFileCount int
	BagSize            string
	PayloadOxum        string
}

// Binary size units for HumanSize.
const (
	kib int64 = 1 << (10 * (iota + 1))
	mib
	gib
	tib
)

// HumanSize formats size using the largest 1024 based unit for which the
// value is at least one. The value is truncated, so 1.5 KiB is "1 KiB".
func HumanSize(size int64) string {
	var units string
	switch {
	case size < kib:
		units = "bytes"
	case size < mib:
		size /= kib
		units = "KiB"
	case size < gib:
		size /= mib
		units = "MiB"
	case size < tib:
		size /= gib
		units = "GiB"
	default:
		size /= tib
		units = "TiB"
	}
	return fmt.Sprintf("%d %s", size, units)
}

// payloadOxum is the "octetstream sum" of RFC 8493, "<bytes>.<files>".
func payloadOxum(size int64, count int) string {
	return fmt.Sprintf("%d.%d", size, count)
}

func formatSubmissionDate(t time.Time) string {
	return t.Format(SubmissionDateLayout)
}
