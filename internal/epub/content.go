package epub

import (
	"bytes"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Content holds what is read from an XHTML content file.
type Content struct {
	ImageRefs []string // Referenced image paths, resolved inside the archive
}

// LoadContent parses an XHTML content file.
// p: file path within EPUB (used for relative path resolution)
// content: XHTML file content
func LoadContent(p string, content []byte) (*Content, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse XHTML: %w", err)
	}

	c := &Content{ImageRefs: []string{}}

	baseDir := dirOf(p)

	// <img src> and SVG <image xlink:href>, in document order. The HTML parser
	// keeps the namespace of xlink:href separately, so the key is plain "href".
	doc.Find("img, image").Each(func(i int, s *goquery.Selection) {
		var ref string
		if goquery.NodeName(s) == "img" {
			ref, _ = s.Attr("src")
		} else {
			ref, _ = s.Attr("href")
		}
		ref = strings.TrimSpace(ref)
		if ref == "" || strings.HasPrefix(ref, "data:") {
			return
		}
		c.ImageRefs = append(c.ImageRefs, resolvePath(baseDir, ref))
	})

	return c, nil
}

// resolvePath resolves a relative path against a base directory
// baseDir: base directory (e.g., "text" for "text/chapter1.xhtml")
// relPath: relative path (e.g., "../images/photo.jpg")
// returns: resolved path (e.g., "images/photo.jpg")
func resolvePath(baseDir, relPath string) string {
	relPath, _, _ = strings.Cut(relPath, "#")
	if decoded, err := url.PathUnescape(relPath); err == nil {
		relPath = decoded
	}
	relPath = strings.ReplaceAll(relPath, "\\", "/")
	// rooting the join keeps ".." from climbing out of the archive
	return strings.TrimPrefix(path.Join("/", baseDir, relPath), "/")
}
