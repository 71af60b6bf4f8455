package extractor

import (
	"errors"

	"github.com/yuanying/coverextract/internal/coverimg"
	"github.com/yuanying/coverextract/internal/epub"
	"github.com/yuanying/coverextract/internal/locator"
)

// extractEPUB tries the validating reader first and falls back to the
// manual container and package document walk.
func (p *Pipeline) extractEPUB(path string) error {
	p.printf("Extracting cover photo from %s...", path)

	res, err := p.readerCover(path)
	if err == nil {
		return p.writeCover(res, path)
	}
	p.Logger.Warn("epub reader failed, falling back to manual parsing", "file", path, "error", err)

	cover, err := p.locatorCover(path)
	switch {
	case errors.Is(err, locator.ErrCoverNotFound):
		p.printf("Cover image not found in EPUB manifest.")
		return nil
	case cover != nil && errors.Is(err, locator.ErrEntryNotFound):
		p.printf("Could not read cover image %s from EPUB.", cover.Path)
		return nil
	case err != nil:
		return err
	}

	p.Logger.Debug("cover located",
		"file", path,
		"rule", cover.Rule,
		"href", cover.Path,
		"entry", cover.Name,
	)
	return p.writeCover(coverimg.Materialize(cover.Data, cover.Name, cover.Entry.MediaType), path)
}

func (p *Pipeline) readerCover(path string) (coverimg.Result, error) {
	r, err := epub.Open(path)
	if err != nil {
		return coverimg.Result{}, err
	}
	defer r.Close()

	info, data, err := r.ReadCover()
	if err != nil {
		return coverimg.Result{}, err
	}
	p.Logger.Debug("cover selected by reader",
		"file", path,
		"method", info.DetectionMethod,
		"id", info.ManifestID,
		"href", info.Href,
	)
	return coverimg.Materialize(data, info.Href, info.MediaType), nil
}

func (p *Pipeline) locatorCover(path string) (*locator.Cover, error) {
	a, err := locator.OpenArchive(path)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	return a.FindCover()
}
