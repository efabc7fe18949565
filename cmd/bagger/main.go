// Command bagger packages a submission's files into a zipped BagIt bag.
//
//	bagger -config bagger.toml -submission sub.json [-C dir] [-o outdir] file...
//
// The files are given relative to the -C directory, and are placed in the
// bag's data directory under those same relative paths. The bag is written
// to <submission id>.zip in the output directory.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	raven "github.com/getsentry/raven-go"
	"github.com/pkg/errors"

	"github.com/ndlib/bagger/bagit"
	"github.com/ndlib/bagger/packager"
	"github.com/ndlib/bagger/store"
	"github.com/ndlib/bagger/util"
)

func main() {
	var (
		configFile = flag.String("config", "", "TOML configuration file")
		subFile    = flag.String("submission", "", "submission description (JSON)")
		baseDir    = flag.String("C", ".", "directory the files are relative to")
		outDir     = flag.String("o", "", "output directory, overrides the config file")
	)
	flag.Parse()

	if *subFile == "" || flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: bagger -submission sub.json [-config file] [-C dir] [-o outdir] file...")
		os.Exit(2)
	}
	cfg, err := LoadConfig(*configFile)
	if err != nil {
		log.Fatalln(err)
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}
	if cfg.SentryDSN != "" {
		if err := raven.SetDSN(cfg.SentryDSN); err != nil {
			log.Println("sentry:", err)
		}
	}
	sub, err := ReadSubmission(*subFile)
	if err != nil {
		log.Fatalln(err)
	}

	log.Printf("Packaging submission %s (%d files)", sub.ID, flag.NArg())
	key, err := MakeBag(cfg, sub, *baseDir, flag.Args())
	if err != nil {
		log.Println(err)
		raven.CaptureErrorAndWait(err, map[string]string{"Submission": sub.ID})
		os.Exit(1)
	}
	log.Printf("Wrote %s", filepath.Join(cfg.OutputDir, key))
}

// MakeBag writes a bag containing the given files into the output
// directory named in cfg. It returns the store key of the new bag. A bag is
// either completely written or not written at all.
func MakeBag(cfg *Config, sub *packager.Submission, baseDir string, names []string) (string, error) {
	algs, err := bagit.ParseAlgorithms(cfg.Algorithms)
	if err != nil {
		return "", err
	}
	var tl packager.TemplateLoader
	if cfg.TemplateDir != "" {
		tl.S = store.NewFileSystem(cfg.TemplateDir)
	}
	p := packager.New(tl)
	p.SourceOrganization = cfg.SourceOrganization

	b, err := p.Start(sub, names, packager.Options{
		Algorithms: cfg.Algorithms,
		Template:   cfg.Template,
	})
	if err != nil {
		return "", err
	}

	name := bagName(sub.ID)
	key := name + ".zip"
	out := store.NewFileSystem(cfg.OutputDir)
	f, err := out.Create(key)
	if err != nil {
		return "", errors.Wrap(err, key)
	}
	err = writeBag(f, name, b, sub, baseDir, names, algs)
	if err != nil {
		f.Close()
		out.Delete(key)
		return "", err
	}
	if err = f.Close(); err != nil {
		out.Delete(key)
		return "", err
	}
	return key, nil
}

func writeBag(f io.Writer, name string, b *packager.Build, sub *packager.Submission, baseDir string, names []string, algs []bagit.Algorithm) error {
	w := bagit.NewWriter(f, name)
	var resources []packager.CustodialResource
	for _, fname := range names {
		r, err := addPayload(w, b.PackagePath(fname), filepath.Join(baseDir, filepath.FromSlash(fname)), algs)
		if err != nil {
			return err
		}
		r.Name = fname
		resources = append(resources, r)
	}
	files, err := b.Finish(sub, resources)
	if err != nil {
		return err
	}
	for _, gf := range files {
		if err := w.WriteFile(gf.PackagePath, gf.Content); err != nil {
			return err
		}
	}
	return w.Close()
}

// addPayload copies the file at source into the bag at path, computing
// its checksums on the way.
func addPayload(w *bagit.Writer, path, source string, algs []bagit.Algorithm) (packager.CustodialResource, error) {
	var r packager.CustodialResource
	in, err := os.Open(source)
	if err != nil {
		return r, err
	}
	defer in.Close()
	out, err := w.Create(path)
	if err != nil {
		return r, err
	}
	hw := util.NewHashWriter(out, algs...)
	if _, err = io.Copy(hw, in); err != nil {
		return r, errors.Wrap(err, source)
	}
	r.Size = hw.Size()
	r.Checksums = hw.Sums()
	return r, nil
}
