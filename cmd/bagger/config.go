package main

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/antonholmquist/jason"
	"github.com/pkg/errors"

	"github.com/ndlib/bagger/packager"
)

// Config is the contents of the bagger configuration file.
type Config struct {
	SourceOrganization string   `toml:"source-organization"`
	Algorithms         []string `toml:"algorithms"`
	TemplateDir        string   `toml:"template-dir"`
	Template           string   `toml:"template"`
	OutputDir          string   `toml:"output-dir"`
	SentryDSN          string   `toml:"sentry-dsn"`
}

var defaultAlgorithms = []string{"sha512"}

// LoadConfig reads the TOML configuration file at path. An empty path gives
// the default configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, errors.Wrap(err, "reading config")
		}
	}
	if len(cfg.Algorithms) == 0 {
		cfg.Algorithms = defaultAlgorithms
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	return cfg, nil
}

// ReadSubmission parses a submission description. The format is
//
//	{
//	  "id": "sub-1",
//	  "title": "A Study",
//	  "submitter": {"name": "Jane Doe", "email": "jane@example.edu"},
//	  "submitted": "2020-03-04T05:06:07Z",
//	  "metadata": "{\"publisher-id\": \"pub-9\"}"
//	}
//
// Only id, submitter.name, and submitted are required.
func ReadSubmission(path string) (*packager.Submission, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	obj, err := jason.NewObjectFromReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "reading submission")
	}
	sub := &packager.Submission{}
	if sub.ID, err = obj.GetString("id"); err != nil {
		return nil, errors.Wrap(err, "submission id")
	}
	if sub.SubmitterName, err = obj.GetString("submitter", "name"); err != nil {
		return nil, errors.Wrap(err, "submitter name")
	}
	submitted, err := obj.GetString("submitted")
	if err != nil {
		return nil, errors.Wrap(err, "submission date")
	}
	if sub.SubmittedDate, err = time.Parse(time.RFC3339, submitted); err != nil {
		return nil, errors.Wrap(err, "submission date")
	}
	// the rest are optional
	sub.Title, _ = obj.GetString("title")
	sub.SubmitterEmail, _ = obj.GetString("submitter", "email")
	sub.Metadata, _ = obj.GetString("metadata")
	return sub, nil
}

// bagName turns a submission id into something usable as both a directory
// name inside the zip file and a store key.
func bagName(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, strings.TrimLeft(id, "."))
}
