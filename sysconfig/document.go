// Package sysconfig reads and rewrites the system-wide spinnaker
// configuration file, a line-oriented key=value format. Comment lines,
// blank lines, and unrecognized keys are preserved verbatim.
package sysconfig

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var keyValueLine = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)=(.*)$`)

// line is one physical line of the document. Only key=value lines carry
// a parsed key; everything else is raw text passed through untouched.
type line struct {
	raw   string
	key   string
	value string
}

// Document is an in-memory representation of a key=value configuration
// file that round-trips unmodified lines byte-exactly.
type Document struct {
	lines []line
}

// Parse builds a Document from file contents.
func Parse(contents string) *Document {
	doc := &Document{}
	raw := strings.Split(contents, "\n")
	for _, r := range raw {
		l := line{raw: r}
		if m := keyValueLine.FindStringSubmatch(r); m != nil {
			l.key = m[1]
			l.value = m[2]
		}
		doc.lines = append(doc.lines, l)
	}
	return doc
}

// Get returns the value of the last line matching key, and whether the
// key exists.
func (d *Document) Get(key string) (string, bool) {
	value, ok := "", false
	for _, l := range d.lines {
		if l.key == key {
			value, ok = l.value, true
		}
	}
	return value, ok
}

// Set rewrites every line matching key to the new value, keeping the
// line's position. It reports whether any line matched.
func (d *Document) Set(key, value string) bool {
	matched := false
	for i := range d.lines {
		if d.lines[i].key == key {
			d.lines[i].value = value
			d.lines[i].raw = key + "=" + value
			matched = true
		}
	}
	return matched
}

// Append adds a new key=value line at the end of the document.
func (d *Document) Append(key, value string) {
	d.lines = append(d.lines, line{raw: key + "=" + value, key: key, value: value})
}

// String serializes the document back to file contents.
func (d *Document) String() string {
	raw := make([]string, len(d.lines))
	for i, l := range d.lines {
		raw[i] = l.raw
	}
	return strings.Join(raw, "\n")
}

// Load parses the document at path.
func Load(path string) (*Document, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sysconfig: read %s: %w", path, err)
	}
	return Parse(string(contents)), nil
}

// Rewrite applies the provider options to the file at path in place,
// keeping a .bak copy of the prior contents.
func Rewrite(path string, opts Options) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("sysconfig: stat %s: %w", path, err)
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("sysconfig: read %s: %w", path, err)
	}

	doc := Parse(string(contents))
	if err := ApplyProviderOptions(doc, opts); err != nil {
		return err
	}

	if err := os.WriteFile(path+".bak", contents, info.Mode()); err != nil {
		return fmt.Errorf("sysconfig: backup %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(doc.String()), info.Mode()); err != nil {
		return fmt.Errorf("sysconfig: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("sysconfig: replace %s: %w", path, err)
	}
	return nil
}
