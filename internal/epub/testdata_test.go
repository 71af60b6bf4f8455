package epub

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

type zipEntry struct {
	Name string
	Data string
}

const testContainerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

// writeTestEPUB writes an EPUB with a stored mimetype entry followed by entries.
func writeTestEPUB(t *testing.T, dir, name string, entries ...zipEntry) string {
	t.Helper()
	epubPath := filepath.Join(dir, name)
	f, err := os.Create(epubPath)
	if err != nil {
		t.Fatalf("failed to create test epub: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	mw, err := w.CreateHeader(&zip.FileHeader{
		Name:   "mimetype",
		Method: zip.Store,
	})
	if err != nil {
		t.Fatalf("failed to create mimetype: %v", err)
	}
	mw.Write([]byte("application/epub+zip"))

	for _, e := range entries {
		ew, err := w.Create(e.Name)
		if err != nil {
			t.Fatalf("failed to create %s: %v", e.Name, err)
		}
		ew.Write([]byte(e.Data))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return epubPath
}

// mapReader serves files from memory.
type mapReader map[string]string

func (m mapReader) ReadFile(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, ErrFileNotFound
	}
	return []byte(data), nil
}
