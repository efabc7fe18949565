// Package packager turns a submission and its checksummed custodial files
// into the tag files of a BagIt bag: payload manifests, the bag declaration,
// bag-info.txt, and tag manifests.
//
// A Packager holds configuration only and may be reused for any number of
// builds, one after the other. Everything belonging to a single build lives
// in a Build, which moves through the states Created, Started, and Finished:
//
//	b, err := p.Start(sub, names, Options{Algorithms: []string{"sha512"}})
//	for _, name := range names {
//		path := b.PackagePath(name)
//		// stream the file into the archive at path, computing checksums
//	}
//	files, err := b.Finish(sub, resources)
//
// The packager does not read custodial bytes and does not produce the
// archive itself. Finish returns either every generated file or none.
package packager

import (
	"bytes"
	"encoding/hex"
	"log"

	"github.com/facebookgo/clock"

	"github.com/ndlib/bagger/bagit"
)

// State is the lifecycle state of a Build.
type State int

const (
	Created State = iota
	Started
	Finished
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Started:
		return "started"
	case Finished:
		return "finished"
	}
	return "unknown"
}

// GeneratedFile is a tag file produced by Finish. It is never modified
// after it is returned, and belongs to the caller.
type GeneratedFile struct {
	Name        string // file name, e.g. "manifest-sha512.txt"
	PackagePath string // path relative to the bag root
	Content     []byte
	Length      int64
	Description string
}

// Options are the per build settings given to Start.
type Options struct {
	// Algorithms are the checksum algorithms to write manifests for.
	// Any spelling accepted by bagit.LookupAlgorithm may be used.
	Algorithms []string

	// Template names the bag-info template in the Packager's template
	// store. Empty selects DefaultBagInfoTemplate.
	Template string
}

// Packager holds the configuration shared by every build.
type Packager struct {
	// SourceOrganization is written into bag-info.txt by the default
	// template.
	SourceOrganization string

	Templates TemplateLoader
	Renderer  Renderer    // TextRenderer if nil
	Clock     clock.Clock // the real clock if nil
}

// New returns a Packager which loads named templates from tl and renders
// them with a TextRenderer.
func New(tl TemplateLoader) *Packager {
	return &Packager{
		Templates: tl,
		Renderer:  TextRenderer{},
		Clock:     clock.New(),
	}
}

// PackagePath returns the path inside the bag for the custodial file with
// the given name. It is a pure function and may be called at any time.
func (p *Packager) PackagePath(name string) string {
	return bagit.PayloadDir + "/" + bagit.EncodeBarePath(name)
}

// NewBuild returns a build in the Created state.
func (p *Packager) NewBuild() *Build {
	return &Build{p: p}
}

// Start is NewBuild followed by Build.Start.
func (p *Packager) Start(sub *Submission, files []string, opts Options) (*Build, error) {
	b := p.NewBuild()
	if err := b.Start(sub, files, opts); err != nil {
		return nil, err
	}
	return b, nil
}

// Build is the state of a single bag being packaged. A Build is not safe
// for concurrent use.
type Build struct {
	p          *Packager
	state      State
	algorithms []bagit.Algorithm
	template   string
	declared   map[string]bool // custodial names given to Start
}

// State returns the current state of the build.
func (b *Build) State() State {
	return b.state
}

// Start records the checksum algorithms and template to use, and the names
// of the custodial files which will be in the bag. Each name must be a
// relative slash separated path that stays inside the payload directory.
// It does no I/O.
func (b *Build) Start(sub *Submission, files []string, opts Options) error {
	if b.state != Created {
		return &SequencingError{Op: "start", State: b.state}
	}
	algs, err := bagit.ParseAlgorithms(opts.Algorithms)
	if err != nil {
		return err
	}
	if len(algs) == 0 {
		return &bagit.UnsupportedAlgorithmError{Name: ""}
	}
	declared := make(map[string]bool, len(files))
	for _, name := range files {
		if err := bagit.ValidatePayloadName(name); err != nil {
			return err
		}
		declared[name] = true
	}
	b.algorithms = algs
	b.template = opts.Template
	b.declared = declared
	b.state = Started
	return nil
}

// PackagePath is the same as Packager.PackagePath.
func (b *Build) PackagePath(name string) string {
	return b.p.PackagePath(name)
}

// Finish generates every tag file for the bag, in this order: one payload
// manifest per algorithm, bagit.txt, bag-info.txt, then one tag manifest per
// algorithm covering the files before it. The build is Finished afterwards
// whether or not an error is returned. On error no files are returned.
func (b *Build) Finish(sub *Submission, resources []CustodialResource) ([]GeneratedFile, error) {
	if b.state != Started {
		return nil, &SequencingError{Op: "finish", State: b.state}
	}
	b.state = Finished

	seen := make(map[string]bool, len(resources))
	for _, r := range resources {
		if !b.declared[r.Name] {
			return nil, &bagit.ValidationError{What: "resource", Value: r.Name, Reason: "not given to Start"}
		}
		if seen[r.Name] {
			return nil, &bagit.ValidationError{What: "resource", Value: r.Name, Reason: "duplicate"}
		}
		seen[r.Name] = true
	}

	var result []GeneratedFile
	for _, alg := range b.algorithms {
		f, err := b.payloadManifest(alg, resources)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}

	f, err := declaration()
	if err != nil {
		return nil, err
	}
	result = append(result, f)

	f, err = b.bagInfo(sub, resources)
	if err != nil {
		return nil, err
	}
	result = append(result, f)

	tagfiles := result
	for _, alg := range b.algorithms {
		result = append(result, tagManifest(alg, tagfiles))
	}
	if sub != nil {
		log.Printf("bag for submission %s: %d custodial files, %d tag files",
			sub.ID, len(resources), len(result))
	}
	return result, nil
}

func (b *Build) payloadManifest(alg bagit.Algorithm, resources []CustodialResource) (GeneratedFile, error) {
	var buf bytes.Buffer
	for _, r := range resources {
		sum, ok := r.Checksums[alg]
		if !ok || sum == "" {
			return GeneratedFile{}, &MissingChecksumError{Resource: r.Name, Algorithm: alg}
		}
		bagit.WriteManifestLine(&buf, sum, b.PackagePath(r.Name))
	}
	name := bagit.ManifestName(alg)
	return newGeneratedFile(name, "payload manifest ("+alg.DigestName()+")", buf.Bytes()), nil
}

func declaration() (GeneratedFile, error) {
	var buf bytes.Buffer
	err := bagit.WriteTagLine(&buf, bagit.VersionLabel, bagit.CurrentVersion.String())
	if err == nil {
		err = bagit.WriteTagLine(&buf, bagit.EncodingLabel, bagit.TagFileEncoding)
	}
	if err != nil {
		return GeneratedFile{}, err
	}
	return newGeneratedFile(bagit.DeclarationName, "bag declaration", buf.Bytes()), nil
}

func (b *Build) bagInfo(sub *Submission, resources []CustodialResource) (GeneratedFile, error) {
	m, err := b.model(sub, resources)
	if err != nil {
		return GeneratedFile{}, err
	}
	tmpl, err := b.p.Templates.Load(b.template)
	if err != nil {
		return GeneratedFile{}, err
	}
	var r Renderer = TextRenderer{}
	if b.p.Renderer != nil {
		r = b.p.Renderer
	}
	content, err := r.Render(tmpl, m)
	if err != nil {
		if _, ok := err.(*TemplateError); !ok {
			err = &TemplateError{Name: b.template, Err: err}
		}
		return GeneratedFile{}, err
	}
	return newGeneratedFile(bagit.BagInfoName, "bag metadata", content), nil
}

func (b *Build) model(sub *Submission, resources []CustodialResource) (*Model, error) {
	if sub == nil || sub.SubmitterName == "" {
		return nil, &bagit.ValidationError{What: "submission", Reason: "no submitter"}
	}
	if sub.SubmittedDate.IsZero() {
		return nil, &bagit.ValidationError{What: "submission", Value: sub.ID, Reason: "no submission date"}
	}
	var size int64
	for _, r := range resources {
		size += r.Size
	}
	md := parseMetadata(sub.Metadata)
	c := b.p.Clock
	if c == nil {
		c = clock.New()
	}
	return &Model{
		SubmissionID:       sub.ID,
		Title:              sub.Title,
		SubmitterName:      sub.SubmitterName,
		SubmitterEmail:     sub.SubmitterEmail,
		SubmissionDate:     formatSubmissionDate(sub.SubmittedDate),
		PublisherID:        md.PublisherID,
		ExternalIdentifier: md.DOI,
		SourceOrganization: b.p.SourceOrganization,
		BaggingDate:        c.Now().Format(BaggingDateLayout),
		BagItVersion:       bagit.CurrentVersion.String(),
		CustodialSize:      size,
		CustodialFileCount: len(resources),
		BagSize:            HumanSize(size),
		PayloadOxum:        payloadOxum(size, len(resources)),
	}, nil
}

// tagManifest checksums the content of each tag file directly.
func tagManifest(alg bagit.Algorithm, tagfiles []GeneratedFile) GeneratedFile {
	var buf bytes.Buffer
	for _, f := range tagfiles {
		h := alg.New()
		h.Write(f.Content)
		bagit.WriteManifestLine(&buf, hex.EncodeToString(h.Sum(nil)), f.PackagePath)
	}
	name := bagit.TagManifestName(alg)
	return newGeneratedFile(name, "tag manifest ("+alg.DigestName()+")", buf.Bytes())
}

func newGeneratedFile(name, description string, content []byte) GeneratedFile {
	return GeneratedFile{
		Name:        name,
		PackagePath: name,
		Content:     content,
		Length:      int64(len(content)),
		Description: description,
	}
}
