// Debug program comparing the two EPUB cover lookups.
//
// Usage:
//
//	go run ./cmd/test/cover_locator/main.go <epub-file-path>
//
// This program will:
// - Open the EPUB with the validating reader and show its cover choice
// - List image items in manifest order
// - Run the manual container and package document walk
// - Show the rule that matched and the archive entry read
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/yuanying/coverextract/internal/epub"
	"github.com/yuanying/coverextract/internal/locator"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <epub-file-path>\n", os.Args[0])
		os.Exit(1)
	}

	epubPath := os.Args[1]

	fmt.Println("=== EPUB Cover Locator Test ===")
	fmt.Printf("File: %s\n\n", epubPath)

	readerOK := showReader(epubPath)
	locatorOK := showLocator(epubPath)

	if !readerOK && !locatorOK {
		fmt.Println("\n=== No cover found ===")
		os.Exit(1)
	}
	fmt.Println("\n=== Test Completed Successfully ===")
}

func showReader(epubPath string) bool {
	fmt.Println("--- Reader ---")

	reader, err := epub.Open(epubPath)
	if err != nil {
		fmt.Printf("✗ open failed: %v\n", err)
		return false
	}
	defer reader.Close()
	fmt.Printf("✓ EPUB opened successfully\n")
	fmt.Printf("OPF Path: %s\n", reader.OPFPath())

	opf, err := reader.ReadOPF()
	if err != nil {
		fmt.Printf("✗ OPF parse failed: %v\n", err)
		return false
	}

	images := opf.ImageItems()
	fmt.Printf("Image items: %d\n", len(images))
	for i, item := range images {
		fmt.Printf("  %d. %s (%s, %s)\n", i+1, item.Href, item.ID, item.MediaType)
	}
	if opf.Metadata.CoverID != "" {
		fmt.Printf("meta cover: %s\n", opf.Metadata.CoverID)
	}
	for _, ref := range opf.Guide {
		fmt.Printf("guide %s: %s\n", ref.Type, ref.Href)
	}

	info, data, err := reader.ReadCover()
	if err != nil {
		fmt.Printf("✗ cover failed: %v\n", err)
		return false
	}
	fmt.Printf("✓ Cover: %s (method: %s, %d bytes)\n\n", info.Href, info.DetectionMethod, len(data))
	return true
}

func showLocator(epubPath string) bool {
	fmt.Println("--- Locator ---")

	a, err := locator.OpenArchive(epubPath)
	if err != nil {
		fmt.Printf("✗ open failed: %v\n", err)
		return false
	}
	defer a.Close()

	cover, err := a.FindCover()
	switch {
	case errors.Is(err, locator.ErrCoverNotFound):
		fmt.Println("Cover Image: (not found)")
		return false
	case err != nil && cover != nil:
		fmt.Printf("✗ %s matched by %s but unreadable: %v\n", cover.Path, cover.Rule, err)
		return false
	case err != nil:
		fmt.Printf("✗ %v\n", err)
		return false
	}

	fmt.Printf("✓ Cover: %s (rule: %s)\n", cover.Path, cover.Rule)
	if cover.Name != cover.Path {
		fmt.Printf("  read from %s\n", cover.Name)
	}
	fmt.Printf("  %s, %d bytes\n", cover.Entry.MediaType, len(cover.Data))
	return true
}
