package locator

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrCoverNotFound is returned when the manifest has no usable image entry.
var ErrCoverNotFound = errors.New("cover image not found in EPUB manifest")

// Rule names reported in Candidate.
const (
	RuleMetaCover     = "meta-cover"
	RuleCoverProperty = "cover-image-property"
	RuleCoverName     = "cover-name"
	RuleFirstImage    = "first-image"
)

// Candidate is the manifest entry chosen as the cover.
type Candidate struct {
	// Path is the entry href resolved to an archive path.
	Path  string
	Entry Entry
	Rule  string
}

type rule struct {
	name  string
	match func(*Package) (Entry, bool)
}

// rules are evaluated in order; the first match wins.
var rules = []rule{
	{RuleMetaCover, byMetaCover},
	{RuleCoverProperty, byCoverProperty},
	{RuleCoverName, byCoverName},
	{RuleFirstImage, byFirstImage},
}

// Locate parses a package document and picks its cover image entry.
// opfDir is the archive directory holding the package document.
func Locate(opf []byte, opfDir string) (Candidate, error) {
	pkg, err := ParsePackage(opf)
	if err != nil {
		return Candidate{}, err
	}
	return Choose(pkg, opfDir)
}

// Choose applies the rule chain to a parsed package.
func Choose(pkg *Package, opfDir string) (Candidate, error) {
	for _, r := range rules {
		if e, ok := r.match(pkg); ok {
			return Candidate{
				Path:  Resolve(opfDir, e.Href),
				Entry: e,
				Rule:  r.name,
			}, nil
		}
	}
	return Candidate{}, fmt.Errorf("%w (%d manifest entries)", ErrCoverNotFound, len(pkg.Manifest))
}

// byMetaCover follows <meta name="cover" content="id"/> into the manifest.
func byMetaCover(pkg *Package) (Entry, bool) {
	for _, m := range pkg.Metas {
		if !strings.EqualFold(m.Name, "cover") || m.Content == "" {
			continue
		}
		if e, ok := pkg.Lookup(m.Content); ok {
			return e, true
		}
	}
	return Entry{}, false
}

// byCoverProperty matches the EPUB 3 cover-image manifest property.
func byCoverProperty(pkg *Package) (Entry, bool) {
	for _, e := range pkg.Manifest {
		if slices.Contains(strings.Fields(e.Properties), "cover-image") {
			return e, true
		}
	}
	return Entry{}, false
}

func byCoverName(pkg *Package) (Entry, bool) {
	for _, e := range pkg.Manifest {
		if !e.IsImage() {
			continue
		}
		if strings.Contains(strings.ToLower(e.ID), "cover") || strings.Contains(strings.ToLower(e.Href), "cover") {
			return e, true
		}
	}
	return Entry{}, false
}

func byFirstImage(pkg *Package) (Entry, bool) {
	for _, e := range pkg.Manifest {
		if e.IsImage() {
			return e, true
		}
	}
	return Entry{}, false
}
