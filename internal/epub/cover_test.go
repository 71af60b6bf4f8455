package epub

import (
	"errors"
	"testing"
)

func opfWith(items ...ManifestItem) *OPF {
	opf := &OPF{Manifest: make(map[string]ManifestItem)}
	for _, item := range items {
		if item.Name == "" {
			item.Name = item.Href
		}
		opf.Manifest[item.ID] = item
		opf.ManifestOrder = append(opf.ManifestOrder, item.ID)
	}
	return opf
}

func TestSelectCover_NameInID(t *testing.T) {
	opf := opfWith(
		ManifestItem{ID: "img1", Href: "images/a.jpg", MediaType: "image/jpeg"},
		ManifestItem{ID: "MyCover", Href: "images/b.jpg", MediaType: "image/jpeg"},
	)

	info := opf.SelectCover(nil)
	if info == nil {
		t.Fatal("SelectCover() returned nil, want CoverInfo")
	}
	if info.ManifestID != "MyCover" {
		t.Errorf("ManifestID = %q, want %q", info.ManifestID, "MyCover")
	}
	if info.DetectionMethod != MethodName {
		t.Errorf("DetectionMethod = %q, want %q", info.DetectionMethod, MethodName)
	}
}

func TestSelectCover_NameInFilename(t *testing.T) {
	opf := opfWith(
		ManifestItem{ID: "img1", Href: "images/a.jpg", MediaType: "image/jpeg"},
		ManifestItem{ID: "img2", Href: "images/Front_COVER.png", MediaType: "image/png"},
	)

	info := opf.SelectCover(nil)
	if info == nil || info.ManifestID != "img2" {
		t.Fatalf("SelectCover() = %+v, want img2", info)
	}
}

func TestSelectCover_NameInDirectory(t *testing.T) {
	const opfContent = `<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <metadata/>
  <manifest>
    <item id="fig1" href="images/fig1.png" media-type="image/png"/>
    <item id="img9" href="covers/img9.jpg" media-type="image/jpeg"/>
  </manifest>
</package>`
	opf, err := ParseOPF([]byte(opfContent), "OEBPS")
	if err != nil {
		t.Fatalf("ParseOPF() error = %v", err)
	}

	info := opf.SelectCover(nil)
	if info == nil || info.Href != "OEBPS/covers/img9.jpg" {
		t.Fatalf("SelectCover() = %+v, want OEBPS/covers/img9.jpg", info)
	}
	if info.DetectionMethod != MethodName {
		t.Errorf("DetectionMethod = %q, want %q", info.DetectionMethod, MethodName)
	}
}

func TestSelectCover_PackageDirNotMatched(t *testing.T) {
	const opfContent = `<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <metadata/>
  <manifest>
    <item id="a" href="a.png" media-type="image/png"/>
    <item id="b" href="b.png" media-type="image/png"/>
  </manifest>
</package>`
	opf, err := ParseOPF([]byte(opfContent), "Cover")
	if err != nil {
		t.Fatalf("ParseOPF() error = %v", err)
	}

	info := opf.SelectCover(nil)
	if info == nil || info.ManifestID != "a" || info.DetectionMethod != MethodFirstImage {
		t.Fatalf("SelectCover() = %+v, want a via first-image", info)
	}
}

func TestSelectCover_IgnoresNonImages(t *testing.T) {
	opf := opfWith(
		ManifestItem{ID: "cover", Href: "cover.xhtml", MediaType: "application/xhtml+xml"},
		ManifestItem{ID: "pic", Href: "pic.gif", MediaType: "image/gif"},
	)

	info := opf.SelectCover(nil)
	if info == nil || info.ManifestID != "pic" {
		t.Fatalf("SelectCover() = %+v, want pic", info)
	}
	if info.DetectionMethod != MethodFirstImage {
		t.Errorf("DetectionMethod = %q, want %q", info.DetectionMethod, MethodFirstImage)
	}
}

func TestSelectCover_GuideCoverPage(t *testing.T) {
	opf := opfWith(
		ManifestItem{ID: "img1", Href: "OEBPS/images/a.jpg", MediaType: "image/jpeg"},
		ManifestItem{ID: "img2", Href: "OEBPS/images/b.jpg", MediaType: "image/jpeg"},
		ManifestItem{ID: "page", Href: "OEBPS/text/title.xhtml", MediaType: "application/xhtml+xml"},
	)
	opf.Guide = []GuideReference{{Type: "cover", Href: "OEBPS/text/title.xhtml"}}

	reader := mapReader{
		"OEBPS/text/title.xhtml": `<html><body><img src="../images/b.jpg"/></body></html>`,
	}

	info := opf.SelectCover(reader)
	if info == nil || info.ManifestID != "img2" {
		t.Fatalf("SelectCover() = %+v, want img2", info)
	}
	if info.DetectionMethod != MethodCoverPage {
		t.Errorf("DetectionMethod = %q, want %q", info.DetectionMethod, MethodCoverPage)
	}
}

func TestSelectCover_MetaCoverPage(t *testing.T) {
	opf := opfWith(
		ManifestItem{ID: "img1", Href: "a.jpg", MediaType: "image/jpeg"},
		ManifestItem{ID: "img2", Href: "b.jpg", MediaType: "image/jpeg"},
		ManifestItem{ID: "titlepage", Href: "titlepage.xhtml", MediaType: "application/xhtml+xml"},
	)
	opf.Metadata.CoverID = "titlepage"

	reader := mapReader{"titlepage.xhtml": `<html><body><img src="b.jpg"/></body></html>`}

	info := opf.SelectCover(reader)
	if info == nil || info.ManifestID != "img2" {
		t.Fatalf("SelectCover() = %+v, want img2", info)
	}
}

func TestSelectCover_FirstImage(t *testing.T) {
	opf := opfWith(
		ManifestItem{ID: "ch1", Href: "ch1.xhtml", MediaType: "application/xhtml+xml"},
		ManifestItem{ID: "z", Href: "z.jpg", MediaType: "image/jpeg"},
		ManifestItem{ID: "a", Href: "a.jpg", MediaType: "image/jpeg"},
	)

	for i := 0; i < 10; i++ {
		info := opf.SelectCover(mapReader{})
		if info == nil || info.ManifestID != "z" {
			t.Fatalf("SelectCover() = %+v, want z (document order)", info)
		}
	}
}

func TestSelectCover_NoImages(t *testing.T) {
	opf := opfWith(ManifestItem{ID: "ch1", Href: "ch1.xhtml", MediaType: "application/xhtml+xml"})
	if info := opf.SelectCover(nil); info != nil {
		t.Fatalf("SelectCover() = %+v, want nil", info)
	}
}

func TestEPUBReader_ReadCover(t *testing.T) {
	p := writeTestEPUB(t, t.TempDir(), "book.epub",
		zipEntry{"META-INF/container.xml", testContainerXML},
		zipEntry{"OEBPS/content.opf", `<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <manifest>
    <item id="cvr" href="images/cover.jpg" media-type="image/jpeg"/>
  </manifest>
</package>`},
		zipEntry{"OEBPS/images/cover.jpg", "JPEGDATA"},
	)

	reader, err := Open(p)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer reader.Close()

	info, data, err := reader.ReadCover()
	if err != nil {
		t.Fatalf("ReadCover() failed: %v", err)
	}
	if info.Href != "OEBPS/images/cover.jpg" {
		t.Errorf("Href = %q, want %q", info.Href, "OEBPS/images/cover.jpg")
	}
	if string(data) != "JPEGDATA" {
		t.Errorf("data = %q, want %q", data, "JPEGDATA")
	}
}

func TestEPUBReader_ReadCover_NoImages(t *testing.T) {
	reader, err := Open(createTestEPUB(t, t.TempDir()))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer reader.Close()

	if _, _, err := reader.ReadCover(); !errors.Is(err, ErrNoImages) {
		t.Fatalf("ReadCover() error = %v, want ErrNoImages", err)
	}
}
