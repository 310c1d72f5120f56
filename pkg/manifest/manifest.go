// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
)

// Manifest is a dependency manifest as read from a file. It keeps every line
// it read, including comments and blanks, so that a manifest can be written
// back unchanged.
type Manifest struct {
	Name  string
	Lines []Line
}

// Line is one line of a manifest file. Exactly one of the concrete types
// *Requirement, *Comment, *Blank or *Option implements it.
type Line interface {
	line()
	String() string
}

func (r *Requirement) line() {}

// Comment is a full-line comment.
type Comment struct {
	Text string
	Line int
}

func (c *Comment) line() {}

func (c *Comment) String() string {
	return "# " + c.Text
}

// Blank is an empty line.
type Blank struct {
	Line int
}

func (b *Blank) line() {}

func (b *Blank) String() string {
	return ""
}

// Option is a non-specifier directive line such as "-r other.txt" or
// "--extra-index-url". Recognized include and constraint directives expose
// their argument; anything else is kept verbatim.
type Option struct {
	Flag     string
	Argument string
	Line     int
}

func (o *Option) line() {}

func (o *Option) String() string {
	if o.Argument == "" {
		return o.Flag
	}
	return o.Flag + " " + o.Argument
}

// IsInclude reports whether the option pulls in another requirements file.
func (o *Option) IsInclude() bool {
	return o.Flag == "-r" || o.Flag == "--requirement"
}

// IsConstraint reports whether the option references a constraints file.
func (o *Option) IsConstraint() bool {
	return o.Flag == "-c" || o.Flag == "--constraint"
}

// ParseManifest reads a manifest line by line. Parse errors do not stop the
// scan: every invalid line contributes an error and all of them are returned
// joined together, alongside the lines that did parse.
func ParseManifest(r io.Reader) (*Manifest, error) {
	m := &Manifest{}

	var errs error
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line, err := parseLine(scanner.Text(), lineNo)
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		m.Lines = append(m.Lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	return m, errs
}

// ReadManifestFile reads and parses a manifest file from the given filesystem.
func ReadManifestFile(fsys fs.FS, name string) (*Manifest, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening manifest file: %w", err)
	}
	defer f.Close()

	m, err := ParseManifest(f)
	if m != nil {
		m.Name = name
	}
	return m, err
}

func parseLine(text string, lineNo int) (Line, error) {
	trimmed := strings.TrimSpace(text)

	switch {
	case trimmed == "":
		return &Blank{Line: lineNo}, nil
	case strings.HasPrefix(trimmed, "#"):
		return &Comment{Text: strings.TrimSpace(trimmed[1:]), Line: lineNo}, nil
	case strings.HasPrefix(trimmed, "-"):
		return parseOption(trimmed, lineNo), nil
	}

	req, err := ParseRequirement(trimmed)
	if err != nil {
		var specErr InvalidSpecifierError
		if errors.As(err, &specErr) {
			specErr.Line = lineNo
			return nil, specErr
		}
		return nil, fmt.Errorf("line %d: %w", lineNo, err)
	}
	req.Line = lineNo

	return req, nil
}

func parseOption(text string, lineNo int) *Option {
	rest, _ := splitComment(text)
	flag, arg, _ := strings.Cut(strings.TrimSpace(rest), " ")
	return &Option{
		Flag:     flag,
		Argument: strings.TrimSpace(arg),
		Line:     lineNo,
	}
}

// Requirements returns the requirement lines of the manifest, in file order.
func (m *Manifest) Requirements() []*Requirement {
	var reqs []*Requirement
	for _, line := range m.Lines {
		if req, ok := line.(*Requirement); ok {
			reqs = append(reqs, req)
		}
	}
	return reqs
}

// Options returns the directive lines of the manifest, in file order.
func (m *Manifest) Options() []*Option {
	var opts []*Option
	for _, line := range m.Lines {
		if opt, ok := line.(*Option); ok {
			opts = append(opts, opt)
		}
	}
	return opts
}

// Lookup returns the requirement with the given package name, comparing
// normalized names. It returns nil if the manifest has no such requirement.
func (m *Manifest) Lookup(name string) *Requirement {
	normalized := NormalizeName(name)
	for _, req := range m.Requirements() {
		if NormalizeName(req.Name) == normalized {
			return req
		}
	}
	return nil
}

// WriteTo writes the manifest back out. A manifest that parsed without
// errors round-trips except for insignificant whitespace.
func (m *Manifest) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for _, line := range m.Lines {
		n, err := fmt.Fprintln(w, lineText(line))
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

func lineText(line Line) string {
	if req, ok := line.(*Requirement); ok && req.Comment != "" {
		return req.String() + "  # " + req.Comment
	}
	return line.String()
}

// Resolve flattens the manifest and every file it includes through "-r"
// directives into a single requirement list, in file order. Includes are
// resolved relative to the including file and cycles are an error.
func (m *Manifest) Resolve(fsys fs.FS) ([]*Requirement, error) {
	return resolve(fsys, m, []string{m.Name})
}

func resolve(fsys fs.FS, m *Manifest, stack []string) ([]*Requirement, error) {
	var reqs []*Requirement
	for _, line := range m.Lines {
		switch l := line.(type) {
		case *Requirement:
			reqs = append(reqs, l)
		case *Option:
			if !l.IsInclude() {
				continue
			}

			name := includePath(m.Name, l.Argument)
			for _, seen := range stack {
				if seen == name {
					return nil, IncludeCycleError{Path: append(stack, name)}
				}
			}

			included, err := ReadManifestFile(fsys, name)
			if err != nil {
				return nil, fmt.Errorf("resolving include %q: %w", l.Argument, err)
			}

			nested, err := resolve(fsys, included, append(stack, name))
			if err != nil {
				return nil, err
			}
			reqs = append(reqs, nested...)
		}
	}
	return reqs, nil
}

func includePath(from, include string) string {
	if from == "" {
		return path.Clean(include)
	}
	return path.Join(path.Dir(from), include)
}

// Check verifies the syntactic validity property of the manifest: every
// non-comment, non-blank, non-option line parses as a requirement specifier.
// It re-reads the source so that all per-line failures are reported together.
func Check(r io.Reader) error {
	_, err := ParseManifest(r)
	return err
}
