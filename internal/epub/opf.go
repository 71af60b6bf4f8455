package epub

import (
	"encoding/xml"
	"fmt"
	"path"
	"strings"
)

// opfPackage represents the OPF XML structure
type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	Metadata opfMetadata `xml:"metadata"`
	Manifest opfManifest `xml:"manifest"`
	Guide    opfGuide    `xml:"guide"`
}

// opfMetadata represents the metadata section
type opfMetadata struct {
	Meta []opfMeta `xml:"meta"`
}

// opfMeta represents a meta element (EPUB 2.0 and 3.0)
type opfMeta struct {
	Name    string `xml:"name,attr"`
	Content string `xml:"content,attr"`
}

// opfManifest represents the manifest section
type opfManifest struct {
	Items []opfManifestItem `xml:"item"`
}

// opfManifestItem represents an item in the manifest
type opfManifestItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

type opfGuide struct {
	References []opfGuideReference `xml:"reference"`
}

type opfGuideReference struct {
	Type string `xml:"type,attr"`
	Href string `xml:"href,attr"`
}

// ParseOPF parses an OPF file content and returns the OPF structure.
// opfDir is the directory containing the OPF file (e.g., "OEBPS"); manifest
// and guide hrefs are resolved against it.
func ParseOPF(content []byte, opfDir string) (*OPF, error) {
	var pkg opfPackage
	if err := xml.Unmarshal(content, &pkg); err != nil {
		return nil, fmt.Errorf("failed to parse OPF XML: %w", err)
	}

	opf := &OPF{
		Manifest: make(map[string]ManifestItem),
	}

	for _, m := range pkg.Metadata.Meta {
		if strings.EqualFold(m.Name, "cover") && m.Content != "" {
			opf.Metadata.CoverID = m.Content
			break
		}
	}

	for _, item := range pkg.Manifest.Items {
		if item.ID == "" || item.Href == "" {
			continue
		}
		manifestItem := ManifestItem{
			ID:        item.ID,
			Href:      resolvePath(opfDir, item.Href),
			Name:      resolvePath("", item.Href),
			MediaType: strings.TrimSpace(item.MediaType),
		}
		if item.Properties != "" {
			manifestItem.Properties = strings.Fields(item.Properties)
		}

		if _, dup := opf.Manifest[item.ID]; !dup {
			opf.ManifestOrder = append(opf.ManifestOrder, item.ID)
		}
		opf.Manifest[item.ID] = manifestItem
	}

	for _, ref := range pkg.Guide.References {
		if ref.Href == "" {
			continue
		}
		opf.Guide = append(opf.Guide, GuideReference{
			Type: ref.Type,
			Href: resolvePath(opfDir, ref.Href),
		})
	}

	return opf, nil
}

// dirOf returns the archive directory of p, "" for the archive root.
func dirOf(p string) string {
	dir := path.Dir(p)
	if dir == "." {
		return ""
	}
	return dir
}
