package locator

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

const (
	containerPath = "META-INF/container.xml"

	// maxEntrySize caps the decompressed size of a single archive entry.
	maxEntrySize int64 = 256 * 1024 * 1024
)

var (
	ErrContainerNotFound = errors.New("invalid EPUB: missing META-INF/container.xml")
	ErrEntryNotFound     = errors.New("entry not found in archive")
)

// Archive is a plain zip view of an EPUB file.
type Archive struct {
	zr *zip.ReadCloser
}

// OpenArchive opens path as a zip archive.
func OpenArchive(path string) (*Archive, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	return &Archive{zr: zr}, nil
}

// Close closes the archive.
func (a *Archive) Close() error {
	return a.zr.Close()
}

// Read returns the entry with exactly the given name.
func (a *Archive) Read(name string) ([]byte, error) {
	for _, f := range a.zr.File {
		if f.Name == name {
			return readEntry(f)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
}

// Lookup reads name, falling back to the first entry whose base name matches
// case-insensitively. It returns the entry name actually read.
func (a *Archive) Lookup(name string) (string, []byte, error) {
	if data, err := a.Read(name); err == nil {
		return name, data, nil
	} else if !errors.Is(err, ErrEntryNotFound) {
		return "", nil, err
	}

	base := strings.ToLower(path.Base(name))
	for _, f := range a.zr.File {
		lower := strings.ToLower(f.Name)
		if lower == base || strings.HasSuffix(lower, "/"+base) {
			data, err := readEntry(f)
			return f.Name, data, err
		}
	}
	return "", nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
}

// RootfilePath returns the package document path declared by container.xml.
func (a *Archive) RootfilePath() (string, error) {
	data, err := a.Read(containerPath)
	if errors.Is(err, ErrEntryNotFound) {
		return "", ErrContainerNotFound
	}
	if err != nil {
		return "", err
	}
	return RootfilePath(data)
}

// Cover is a located and read cover image.
type Cover struct {
	Candidate
	// Name is the archive entry read, which differs from Path when the
	// base-name fallback was used.
	Name string
	Data []byte
}

// FindCover runs the whole manual path: container, package document, rule
// chain, entry read.
func (a *Archive) FindCover() (*Cover, error) {
	opfPath, err := a.RootfilePath()
	if err != nil {
		return nil, err
	}
	opf, err := a.Read(opfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read package document: %w", err)
	}

	opfDir := path.Dir(opfPath)
	if opfDir == "." {
		opfDir = ""
	}
	cand, err := Locate(opf, opfDir)
	if err != nil {
		return nil, err
	}

	name, data, err := a.Lookup(cand.Path)
	if err != nil {
		return &Cover{Candidate: cand}, fmt.Errorf("could not read cover image %s from EPUB: %w", cand.Path, err)
	}
	return &Cover{Candidate: cand, Name: name, Data: data}, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > uint64(maxEntrySize) {
		return nil, fmt.Errorf("entry %s too large: %d bytes", f.Name, f.UncompressedSize64)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read entry %s: %w", f.Name, err)
	}
	if int64(len(data)) > maxEntrySize {
		return nil, fmt.Errorf("entry %s exceeds %d bytes", f.Name, maxEntrySize)
	}
	return data, nil
}
