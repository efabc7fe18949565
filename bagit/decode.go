package bagit

import (
	"strings"
)

// Pair is a single key and value read from a tag file or manifest.
type Pair struct {
	Key   string
	Value string
}

// Pairs is an ordered list of unique keys and their values. The order is
// the order the keys appeared in the file.
type Pairs []Pair

// Get returns the value for key, and whether it was present.
func (p Pairs) Get(key string) (string, bool) {
	for _, pair := range p {
		if pair.Key == key {
			return pair.Value, true
		}
	}
	return "", false
}

// Tag is a label and every value given for it, in the order they appeared.
type Tag struct {
	Label  string
	Values []string
}

// Tags is an ordered list of labels. Each label appears once, in the order
// of its first occurrence.
type Tags []Tag

// Get returns all the values for label, or nil if there are none.
func (t Tags) Get(label string) []string {
	for _, tag := range t {
		if tag.Label == label {
			return tag.Values
		}
	}
	return nil
}

// First returns the first value for label, or "".
func (t Tags) First(label string) string {
	v := t.Get(label)
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

// DecodePath reverses the percent-encoding of a manifest path. The passes
// are done in a fixed order, LF then CR then '%', so an encoded percent
// sign is never read as the start of another escape.
func DecodePath(encoded string) string {
	s := strings.Replace(encoded, "%0A", "\n", -1)
	s = strings.Replace(s, "%0D", "\r", -1)
	return strings.Replace(s, "%25", "%", -1)
}

// ReadDeclaration parses a bag declaration or any tag file whose labels
// must be unique.
func ReadDeclaration(b []byte) (Pairs, error) {
	var result Pairs
	seen := make(map[string]bool)
	for _, line := range splitLines(b) {
		if line == "" {
			continue
		}
		label, value, err := splitTagLine(line)
		if err != nil {
			return nil, err
		}
		if seen[label] {
			return nil, &ValidationError{What: "label", Value: label, Reason: "duplicate"}
		}
		seen[label] = true
		result = append(result, Pair{Key: label, Value: value})
	}
	return result, nil
}

// ReadManifest parses a payload or tag manifest. The keys of the result are
// the decoded paths and the values are the checksums. The checksum is the
// first token of each line, and the path is everything after the run of
// whitespace following it. A path which itself begins with a space or tab
// therefore loses that whitespace; payload paths always begin with "data/"
// and tag file names never begin with whitespace.
func ReadManifest(b []byte) (Pairs, error) {
	var result Pairs
	seen := make(map[string]bool)
	for _, line := range splitLines(b) {
		if line == "" {
			continue
		}
		i := strings.IndexAny(line, " \t")
		if i <= 0 {
			return nil, &ValidationError{What: "manifest line", Value: line, Reason: "missing path"}
		}
		encoded := strings.TrimLeft(line[i:], " \t")
		if encoded == "" {
			return nil, &ValidationError{What: "manifest line", Value: line, Reason: "missing path"}
		}
		path := DecodePath(encoded)
		if seen[path] {
			return nil, &ValidationError{What: "path", Value: path, Reason: "listed twice"}
		}
		seen[path] = true
		result = append(result, Pair{Key: path, Value: line[:i]})
	}
	return result, nil
}

// ReadLabelsAndValues parses a tag file where labels may repeat, such as
// bag-info.txt. A line beginning with a space or tab continues the value on
// the previous line.
func ReadLabelsAndValues(b []byte) (Tags, error) {
	var result Tags
	index := make(map[string]int)
	last := -1 // index of the tag the previous line added to
	for _, line := range splitLines(b) {
		if line == "" {
			continue
		}
		if isBlank(line[0]) {
			if last < 0 {
				return nil, &ValidationError{What: "tag line", Value: line, Reason: "continuation without a label"}
			}
			values := result[last].Values
			values[len(values)-1] += " " + strings.TrimLeft(line, " \t")
			continue
		}
		label, value, err := splitTagLine(line)
		if err != nil {
			return nil, err
		}
		i, ok := index[label]
		if !ok {
			i = len(result)
			index[label] = i
			result = append(result, Tag{Label: label})
		}
		result[i].Values = append(result[i].Values, value)
		last = i
	}
	return result, nil
}

// splitTagLine splits "label: value" on the first colon. Exactly one space
// or tab after the colon is a separator; any further whitespace belongs to
// the value.
func splitTagLine(line string) (label, value string, err error) {
	i := strings.IndexByte(line, ':')
	if i < 0 {
		return "", "", &ValidationError{What: "tag line", Value: line, Reason: "missing colon"}
	}
	label = line[:i]
	if err = ValidateLabel(label); err != nil {
		return "", "", err
	}
	value = line[i+1:]
	if value != "" && isBlank(value[0]) {
		value = value[1:]
	}
	return label, value, nil
}

// splitLines breaks b into lines. Lines may end in LF, CRLF, or CR. The
// terminators are not included.
func splitLines(b []byte) []string {
	var result []string
	s := string(b)
	for len(s) > 0 {
		i := strings.IndexAny(s, "\r\n")
		if i < 0 {
			result = append(result, s)
			break
		}
		result = append(result, s[:i])
		if s[i] == '\r' && i+1 < len(s) && s[i+1] == '\n' {
			i++
		}
		s = s[i+1:]
	}
	return result
}
