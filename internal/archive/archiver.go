// Package archive places documents into year-partitioned store folders with
// collision-free names, skipping re-upload of content-identical files so
// re-processing the same attachment never creates duplicates.
package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/svwadmin/reservations-tracker/constants"
	"github.com/svwadmin/reservations-tracker/internal/classify"
	"github.com/svwadmin/reservations-tracker/internal/common"
	"github.com/svwadmin/reservations-tracker/internal/document"
	"github.com/svwadmin/reservations-tracker/internal/store"
)

// Archiver uploads booking documents under their record's clean filename.
type Archiver struct {
	store     store.Store
	factory   document.Factory
	basePaths map[constants.ArchiveVariant]string
	log       *slog.Logger
}

func NewArchiver(st store.Store, factory document.Factory, basePath, redactedBasePath string, log *slog.Logger) *Archiver {
	if log == nil {
		log = slog.Default()
	}
	return &Archiver{
		store:   st,
		factory: factory,
		basePaths: map[constants.ArchiveVariant]string{
			constants.VariantOriginal: basePath,
			constants.VariantRedacted: redactedBasePath,
		},
		log: log,
	}
}

// BasePath returns the store path a variant is archived under.
func (a *Archiver) BasePath(variant constants.ArchiveVariant) string {
	return a.basePaths[variant]
}

// YearFolder resolves the year subfolder for a variant, creating it under
// the base path when absent. A missing base path itself is a fatal
// configuration error, never auto-created.
func (a *Archiver) YearFolder(ctx context.Context, variant constants.ArchiveVariant, year int) (store.Folder, error) {
	base := a.basePaths[variant]
	baseFolder, err := a.store.FolderByPath(ctx, base)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, &common.ArchivalError{Fatal: true, Cause: fmt.Errorf("%w: %s", common.ErrBasePathMissing, base)}
		}
		return nil, &common.ArchivalError{Cause: fmt.Errorf("resolve base path %s: %w", base, err)}
	}

	yearName := strconv.Itoa(year)
	folder, err := a.store.FolderByPath(ctx, path.Join(base, yearName))
	if err == nil {
		return folder, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, &common.ArchivalError{Cause: fmt.Errorf("resolve year folder %s: %w", yearName, err)}
	}

	folder, err = baseFolder.CreateChild(ctx, yearName)
	if err != nil {
		return nil, &common.ArchivalError{Cause: fmt.Errorf("create year folder %s: %w", yearName, err)}
	}
	a.log.Info("archive.folder_created", "base", base, "year", yearName)
	return folder, nil
}

// Archive uploads doc into the variant's year folder under the record's
// clean filename. If a file with that name exists, content signatures decide:
// an identical file means the upload is skipped entirely; different content
// gets the next free numeric suffix, and the record's CleanFilename is
// rewritten to the name actually used.
func (a *Archiver) Archive(ctx context.Context, doc document.Document, record *classify.BookingRecord, variant constants.ArchiveVariant) error {
	folder, err := a.YearFolder(ctx, variant, record.Date.Year())
	if err != nil {
		return err
	}

	items, err := folder.Items(ctx)
	if err != nil {
		return &common.ArchivalError{Cause: fmt.Errorf("list folder: %w", err)}
	}

	tmpDir, err := os.MkdirTemp("", "archive-*")
	if err != nil {
		return &common.ArchivalError{Cause: err}
	}
	defer os.RemoveAll(tmpDir)

	data, err := doc.Bytes()
	if err != nil {
		return &common.ArchivalError{Cause: fmt.Errorf("serialize document: %w", err)}
	}
	localPath := filepath.Join(tmpDir, "upload")
	if err := os.WriteFile(localPath, data, 0o600); err != nil {
		return &common.ArchivalError{Cause: err}
	}

	taken := false
	for _, item := range items {
		if item.Name() == record.CleanFilename {
			taken = true
			break
		}
	}

	if taken {
		stem, ext := splitName(record.CleanFilename)
		identical, err := a.findIdentical(ctx, doc, items, stem, ext, tmpDir)
		if err != nil {
			return err
		}
		if identical != "" {
			a.log.Info("archive.skip_identical", "variant", string(variant), "existing", identical)
			return nil
		}
		record.CleanFilename = fmt.Sprintf("%s_%d.%s", stem, nextSuffix(items, stem, ext), ext)
	}

	if err := folder.Upload(ctx, localPath, record.CleanFilename); err != nil {
		return &common.ArchivalError{Cause: fmt.Errorf("upload %s: %w", record.CleanFilename, err)}
	}
	a.log.Info("archive.uploaded", "variant", string(variant), "name", record.CleanFilename, "folder", folder.Name())
	return nil
}

// findIdentical compares doc's content signature against every stored file
// sharing the stem and returns the first identical one's name. Byte-for-byte
// encoding is not compared, only the text signature.
func (a *Archiver) findIdentical(ctx context.Context, doc document.Document, items []store.Item, stem, ext, tmpDir string) (string, error) {
	localSig := document.Signature(doc)
	for _, item := range items {
		if !sharesStem(item.Name(), stem, ext) {
			continue
		}
		downloaded, err := item.Download(ctx, tmpDir)
		if err != nil {
			return "", &common.ArchivalError{Cause: fmt.Errorf("download %s: %w", item.Name(), err)}
		}
		existing, err := a.factory.Open(downloaded)
		if err != nil {
			return "", &common.ArchivalError{Cause: fmt.Errorf("open %s: %w", item.Name(), err)}
		}
		if document.Signature(existing) == localSig {
			return item.Name(), nil
		}
	}
	return "", nil
}

func splitName(name string) (stem, ext string) {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return name, ""
	}
	return name[:i], name[i+1:]
}

func sharesStem(name, stem, ext string) bool {
	if name == stem+"."+ext {
		return true
	}
	return suffixPattern(stem, ext).MatchString(name)
}

// nextSuffix picks max(existing numeric suffixes)+1 for the stem, or 1 when
// none exist. The bare name (no suffix) is excluded from the parse.
func nextSuffix(items []store.Item, stem, ext string) int {
	pattern := suffixPattern(stem, ext)
	max := 0
	for _, item := range items {
		m := pattern.FindStringSubmatch(item.Name())
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > max {
			max = n
		}
	}
	return max + 1
}

func suffixPattern(stem, ext string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(stem) + `_(\d+)\.` + regexp.QuoteMeta(ext) + `$`)
}
