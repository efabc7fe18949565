package packager

import (
	"fmt"

	"github.com/ndlib/bagger/bagit"
)

// MissingChecksumError means a custodial resource did not carry a checksum
// for one of the algorithms requested at Start. The digesting layer is
// expected to compute every requested algorithm, so this is a contract
// violation and fails the whole build.
type MissingChecksumError struct {
	Resource  string
	Algorithm bagit.Algorithm
}

func (e *MissingChecksumError) Error() string {
	return fmt.Sprintf("resource %q has no %s checksum", e.Resource, e.Algorithm)
}

// TemplateError means the bag-info template could not be loaded or
// rendered.
type TemplateError struct {
	Name string
	Err  error
}

func (e *TemplateError) Error() string {
	name := e.Name
	if name == "" {
		name = "default template"
	}
	return fmt.Sprintf("bag-info template %s: %s", name, e.Err)
}

func (e *TemplateError) Cause() error { return e.Err }

// SequencingError means a Build method was called in the wrong state.
type SequencingError struct {
	Op    string
	State State
}

func (e *SequencingError) Error() string {
	return fmt.Sprintf("cannot %s a build that is %s", e.Op, e.State)
}
