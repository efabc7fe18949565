package bagit

import (
	"fmt"
	"io"
	"strings"
)

// ValidationError means a label or path cannot be written into a tag file
// or manifest.
type ValidationError struct {
	What   string // "label", "path", ...
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.What, e.Value, e.Reason)
}

// The same three token mapping is used by both path encoders and by
// DecodePath.
var pathEscaper = strings.NewReplacer(
	"%", "%25",
	"\r", "%0D",
	"\n", "%0A",
)

// ValidateLabel returns an error if label may not be used as a tag label.
// Labels may not begin or end with a space or tab, and may not contain a
// colon, CR, or LF.
func ValidateLabel(label string) error {
	if label == "" {
		return &ValidationError{What: "label", Value: label, Reason: "empty"}
	}
	if isBlank(label[0]) || isBlank(label[len(label)-1]) {
		return &ValidationError{What: "label", Value: label, Reason: "leading or trailing whitespace"}
	}
	if i := strings.IndexAny(label, ":\r\n"); i >= 0 {
		return &ValidationError{
			What:   "label",
			Value:  label,
			Reason: fmt.Sprintf("contains %q", label[i]),
		}
	}
	return nil
}

// ValidatePayloadName returns an error unless name is a relative, slash
// separated path that cannot leave the payload directory: it may not be
// empty, begin with a slash, or have an empty, "." or ".." segment.
func ValidatePayloadName(name string) error {
	if name == "" {
		return &ValidationError{What: "path", Value: name, Reason: "empty"}
	}
	if name[0] == '/' {
		return &ValidationError{What: "path", Value: name, Reason: "absolute"}
	}
	for _, seg := range strings.Split(name, "/") {
		switch seg {
		case "", ".", "..":
			return &ValidationError{What: "path", Value: name, Reason: fmt.Sprintf("has a %q segment", seg)}
		}
	}
	return nil
}

// EncodeTagLabel returns label unchanged if it is valid. Labels are never
// escaped.
func EncodeTagLabel(label string) (string, error) {
	if err := ValidateLabel(label); err != nil {
		return "", err
	}
	return label, nil
}

// EncodeManifestPath percent-encodes CR, LF, and '%' in path for use on a
// manifest line. A trailing CR, LF, or CRLF is left unescaped since the
// line terminator goes there.
func EncodeManifestPath(path string) string {
	var term string
	switch {
	case strings.HasSuffix(path, "\r\n"):
		term = "\r\n"
	case strings.HasSuffix(path, "\n"), strings.HasSuffix(path, "\r"):
		term = path[len(path)-1:]
	}
	return pathEscaper.Replace(path[:len(path)-len(term)]) + term
}

// EncodeBarePath percent-encodes every CR, LF, and '%' in path, including
// any at the very end.
func EncodeBarePath(path string) string {
	return pathEscaper.Replace(path)
}

// TagLine returns the tag file line "<label>: <value>\n".
func TagLine(label, value string) (string, error) {
	label, err := EncodeTagLabel(label)
	if err != nil {
		return "", err
	}
	return label + ": " + value + "\n", nil
}

// WriteTagLine writes a single tag line to w.
func WriteTagLine(w io.Writer, label, value string) error {
	line, err := TagLine(label, value)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, line)
	return err
}

// ManifestLine returns the manifest line for the given hex checksum and
// path. A single space separates the two.
func ManifestLine(checksum, path string) string {
	return checksum + " " + EncodeManifestPath(path) + "\n"
}

// WriteManifestLine writes a single manifest line to w.
func WriteManifestLine(w io.Writer, checksum, path string) error {
	_, err := io.WriteString(w, ManifestLine(checksum, path))
	return err
}

func isBlank(c byte) bool { return c == ' ' || c == '\t' }
