package epub

// OPF represents the parsed Open Package Format document
type OPF struct {
	Metadata      Metadata
	Manifest      map[string]ManifestItem // id -> item
	ManifestOrder []string                // ids in document order
	Guide         []GuideReference
}

// Metadata represents the metadata section of the OPF
type Metadata struct {
	CoverID string // manifest item ID from meta name="cover"
}

// ManifestItem represents an item in the manifest.
// Href is already resolved to a path inside the archive; Name is the href
// relative to the package document.
type ManifestItem struct {
	ID         string
	Href       string
	Name       string
	MediaType  string
	Properties []string
}

// GuideReference represents a reference in the EPUB 2.0 guide
type GuideReference struct {
	Type string
	Href string
}

// Items returns the manifest items in document order.
func (opf *OPF) Items() []ManifestItem {
	items := make([]ManifestItem, 0, len(opf.ManifestOrder))
	for _, id := range opf.ManifestOrder {
		if item, ok := opf.Manifest[id]; ok {
			items = append(items, item)
		}
	}
	return items
}

// ImageItems returns the image manifest items in document order.
func (opf *OPF) ImageItems() []ManifestItem {
	var images []ManifestItem
	for _, item := range opf.Items() {
		if isImageMediaType(item.MediaType) {
			images = append(images, item)
		}
	}
	return images
}
