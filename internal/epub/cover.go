package epub

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoImages is returned when the manifest declares no image items.
var ErrNoImages = errors.New("no image items in manifest")

// Detection methods reported in CoverInfo.
const (
	MethodName       = "name"
	MethodCoverPage  = "cover-page"
	MethodFirstImage = "first-image"
)

// CoverInfo holds information about the selected cover image.
type CoverInfo struct {
	ManifestID      string
	Href            string
	MediaType       string
	DetectionMethod string
}

type fileReader interface {
	ReadFile(path string) ([]byte, error)
}

// SelectCover picks the cover among the manifest's image items.
// Methods are tried in priority order:
//  1. image item whose ID or href, relative to the package document,
//     contains "cover" (case-insensitive)
//  2. first image on the cover page (guide type="cover", or an XHTML item
//     named by meta name="cover"); needs reader, skipped when nil
//  3. first image item in manifest order
//
// Returns nil if the manifest has no image items.
func (opf *OPF) SelectCover(reader fileReader) *CoverInfo {
	images := opf.ImageItems()
	if len(images) == 0 {
		return nil
	}

	for _, item := range images {
		if containsFold(item.ID, "cover") || containsFold(item.Name, "cover") {
			return newCoverInfo(item, MethodName)
		}
	}

	if reader != nil {
		if item, ok := opf.coverFromCoverPage(reader); ok {
			return newCoverInfo(item, MethodCoverPage)
		}
	}

	return newCoverInfo(images[0], MethodFirstImage)
}

// ReadCover selects the cover image and reads its bytes.
func (r *EPUBReader) ReadCover() (*CoverInfo, []byte, error) {
	opf, err := r.ReadOPF()
	if err != nil {
		return nil, nil, err
	}

	info := opf.SelectCover(r)
	if info == nil {
		return nil, nil, ErrNoImages
	}

	data, err := r.ReadFile(info.Href)
	if err != nil {
		return info, nil, fmt.Errorf("failed to read cover image: %w", err)
	}
	return info, data, nil
}

func (opf *OPF) coverFromCoverPage(reader fileReader) (ManifestItem, bool) {
	for _, pagePath := range opf.coverPages() {
		data, err := reader.ReadFile(pagePath)
		if err != nil {
			continue
		}
		content, err := LoadContent(pagePath, data)
		if err != nil {
			continue
		}
		for _, ref := range content.ImageRefs {
			if item, ok := opf.findByHref(ref); ok && isImageMediaType(item.MediaType) {
				return item, true
			}
		}
	}
	return ManifestItem{}, false
}

// coverPages lists candidate XHTML cover pages, guide references first.
func (opf *OPF) coverPages() []string {
	var pages []string
	for _, ref := range opf.Guide {
		if strings.EqualFold(ref.Type, "cover") && looksLikeXHTML(ref.Href) {
			pages = append(pages, ref.Href)
		}
	}
	if item, ok := opf.Manifest[opf.Metadata.CoverID]; ok && isXHTML(item.MediaType) {
		pages = append(pages, item.Href)
	}
	return pages
}

func (opf *OPF) findByHref(href string) (ManifestItem, bool) {
	for _, item := range opf.Items() {
		if strings.EqualFold(item.Href, href) {
			return item, true
		}
	}
	return ManifestItem{}, false
}

func newCoverInfo(item ManifestItem, method string) *CoverInfo {
	return &CoverInfo{
		ManifestID:      item.ID,
		Href:            item.Href,
		MediaType:       item.MediaType,
		DetectionMethod: method,
	}
}

// isImageMediaType checks if a media type is an image type.
func isImageMediaType(mediaType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mediaType)), "image/")
}

func isXHTML(mediaType string) bool {
	return strings.Contains(mediaType, "html")
}

func looksLikeXHTML(p string) bool {
	lower := strings.ToLower(p)
	return strings.HasSuffix(lower, ".xhtml") || strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm")
}

// containsFold reports whether s contains substr, case-insensitively.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
