package locator

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html/charset"
)

// ErrRootfileNotFound is returned when container.xml names no package document.
var ErrRootfileNotFound = errors.New("invalid EPUB: could not find rootfile in container.xml")

var errNoRoot = errors.New("no root element")

// Entry is a manifest item as declared in the package document.
type Entry struct {
	ID         string
	Href       string
	MediaType  string
	Properties string
}

// IsImage reports whether the entry has an image media type.
func (e Entry) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(e.MediaType)), "image/")
}

// Meta is a metadata meta element.
type Meta struct {
	Name    string
	Content string
}

// Package is the part of a package document the locator needs.
// Manifest keeps document order; a repeated id replaces the earlier entry in
// place.
type Package struct {
	Manifest []Entry
	Metas    []Meta
}

// Lookup returns the manifest entry with the given id.
func (p *Package) Lookup(id string) (Entry, bool) {
	for _, e := range p.Manifest {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// ParsePackage reads the manifest items (children of manifest) and meta
// elements (children of metadata) of a package document.
func ParsePackage(data []byte) (*Package, error) {
	pkg := &Package{}
	index := make(map[string]int)

	err := walk(data, func(parent string, el xml.StartElement) {
		switch {
		case parent == "manifest" && el.Name.Local == "item":
			e := Entry{
				ID:         attr(el, "id"),
				Href:       attr(el, "href"),
				MediaType:  attr(el, "media-type"),
				Properties: attr(el, "properties"),
			}
			if e.ID == "" || e.Href == "" {
				return
			}
			if i, ok := index[e.ID]; ok {
				pkg.Manifest[i] = e
				return
			}
			index[e.ID] = len(pkg.Manifest)
			pkg.Manifest = append(pkg.Manifest, e)
		case parent == "metadata" && el.Name.Local == "meta":
			pkg.Metas = append(pkg.Metas, Meta{
				Name:    attr(el, "name"),
				Content: attr(el, "content"),
			})
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse package document: %w", err)
	}
	return pkg, nil
}

// RootfilePath returns the package document path named by container.xml.
func RootfilePath(container []byte) (string, error) {
	var fullPath string
	found := false
	err := walk(container, func(_ string, el xml.StartElement) {
		if found || el.Name.Local != "rootfile" {
			return
		}
		if p := attr(el, "full-path"); p != "" {
			fullPath, found = p, true
		}
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse container.xml: %w", err)
	}
	if !found {
		return "", ErrRootfileNotFound
	}
	return strings.TrimPrefix(fullPath, "./"), nil
}

// walk calls fn for every start element with the local name of its parent.
func walk(data []byte, fn func(parent string, el xml.StartElement)) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	var stack []string
	seenRoot := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			if !seenRoot {
				return errNoRoot
			}
			if len(stack) != 0 {
				return io.ErrUnexpectedEOF
			}
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			parent := ""
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			fn(parent, t)
			stack = append(stack, t.Name.Local)
			seenRoot = true
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// Resolve joins href to the package document directory and normalizes the
// result into an archive path. Fragments are dropped and "..", "." segments
// resolved; the result never leaves the archive root.
func Resolve(opfDir, href string) string {
	href, _, _ = strings.Cut(href, "#")
	if decoded, err := url.PathUnescape(href); err == nil {
		href = decoded
	}
	href = strings.ReplaceAll(href, "\\", "/")
	return strings.TrimPrefix(path.Join("/", opfDir, href), "/")
}
