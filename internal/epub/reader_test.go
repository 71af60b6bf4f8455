package epub

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const minimalOPF = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Test Book</dc:title>
  </metadata>
  <manifest>
    <item id="chapter1" href="chapter1.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="chapter1"/>
  </spine>
</package>`

// createTestEPUB creates a minimal valid EPUB file for testing
func createTestEPUB(t *testing.T, dir string) string {
	t.Helper()
	return writeTestEPUB(t, dir, "test.epub",
		zipEntry{"META-INF/container.xml", testContainerXML},
		zipEntry{"OEBPS/content.opf", minimalOPF},
		zipEntry{"OEBPS/chapter1.xhtml", `<html><body><p>Hello</p></body></html>`},
	)
}

func createRawZip(t *testing.T, dir, name string, method uint16, mimetype string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("failed to create test epub: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	defer w.Close()

	mw, err := w.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: method})
	if err != nil {
		t.Fatalf("failed to create mimetype: %v", err)
	}
	mw.Write([]byte(mimetype))
	return p
}

func TestOpen(t *testing.T) {
	reader, err := Open(createTestEPUB(t, t.TempDir()))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer reader.Close()

	if reader.OPFPath() != "OEBPS/content.opf" {
		t.Errorf("OPFPath() = %q, want %q", reader.OPFPath(), "OEBPS/content.opf")
	}
}

func TestOpen_FileNotFound(t *testing.T) {
	if _, err := Open("/nonexistent/file.epub"); err == nil {
		t.Fatal("Open() should fail for nonexistent file")
	}
}

func TestOpen_InvalidMimetype(t *testing.T) {
	p := createRawZip(t, t.TempDir(), "invalid_mimetype.epub", zip.Store, "text/plain")
	if _, err := Open(p); !errors.Is(err, ErrInvalidMimetype) {
		t.Fatalf("Open() error = %v, want ErrInvalidMimetype", err)
	}
}

func TestOpen_CompressedMimetype(t *testing.T) {
	p := createRawZip(t, t.TempDir(), "compressed_mimetype.epub", zip.Deflate, "application/epub+zip")
	if _, err := Open(p); !errors.Is(err, ErrMimetypeCompressed) {
		t.Fatalf("Open() error = %v, want ErrMimetypeCompressed", err)
	}
}

func TestOpen_NoContainer(t *testing.T) {
	p := createRawZip(t, t.TempDir(), "no_container.epub", zip.Store, "application/epub+zip")
	if _, err := Open(p); !errors.Is(err, ErrContainerNotFound) {
		t.Fatalf("Open() error = %v, want ErrContainerNotFound", err)
	}
}

func TestOpen_NoRootfile(t *testing.T) {
	p := writeTestEPUB(t, t.TempDir(), "no_rootfile.epub",
		zipEntry{"META-INF/container.xml", `<container><rootfiles></rootfiles></container>`},
	)
	if _, err := Open(p); !errors.Is(err, ErrOPFPathNotFound) {
		t.Fatalf("Open() error = %v, want ErrOPFPathNotFound", err)
	}
}

func TestEPUBReader_Files(t *testing.T) {
	reader, err := Open(createTestEPUB(t, t.TempDir()))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer reader.Close()

	for _, name := range []string{"mimetype", "META-INF/container.xml", "OEBPS/content.opf", "OEBPS/chapter1.xhtml"} {
		if _, ok := reader.Files()[name]; !ok {
			t.Errorf("Files() missing %q", name)
		}
	}
}

func TestEPUBReader_ReadFile_NotFound(t *testing.T) {
	reader, err := Open(createTestEPUB(t, t.TempDir()))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer reader.Close()

	if _, err := reader.ReadFile("nonexistent.txt"); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("ReadFile() error = %v, want ErrFileNotFound", err)
	}
}

func TestEPUBReader_ReadOPF(t *testing.T) {
	reader, err := Open(createTestEPUB(t, t.TempDir()))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer reader.Close()

	opf, err := reader.ReadOPF()
	if err != nil {
		t.Fatalf("ReadOPF() failed: %v", err)
	}
	if item := opf.Manifest["chapter1"]; item.Href != "OEBPS/chapter1.xhtml" {
		t.Errorf("chapter1 Href = %q, want %q", item.Href, "OEBPS/chapter1.xhtml")
	}
}

// Test path normalization (handling of ./ prefix)
func TestOpen_PathNormalization(t *testing.T) {
	p := writeTestEPUB(t, t.TempDir(), "normalized.epub",
		zipEntry{"META-INF/container.xml", `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="./OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`},
		zipEntry{"OEBPS/content.opf", minimalOPF},
	)

	reader, err := Open(p)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer reader.Close()

	if reader.OPFPath() != "OEBPS/content.opf" {
		t.Errorf("OPFPath() = %q, want %q (path should be normalized)", reader.OPFPath(), "OEBPS/content.opf")
	}
}
