package statuses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/nowstatus/internal/filex"
	"github.com/dmitrijs2005/nowstatus/internal/server/models"
)

const statusFileName = "status.json"

// Files of the pre-JSON layout, one per field. They are read when a segment
// has no status.json yet and are never written.
var legacyFiles = [...]string{"title.txt", "text.txt", "image.txt"}

// FileRepository stores <root>/<segment>/status.json.
type FileRepository struct {
	root string
}

// NewFileRepository creates root and one directory per segment.
func NewFileRepository(root string) (*FileRepository, error) {
	abs, err := filex.EnsureDir(root)
	if err != nil {
		return nil, err
	}
	for _, seg := range models.AllSegments {
		if _, err := filex.EnsureDir(filepath.Join(abs, string(seg))); err != nil {
			return nil, err
		}
	}
	return &FileRepository{root: abs}, nil
}

func (r *FileRepository) dir(seg models.Segment) string {
	return filepath.Join(r.root, string(seg))
}

func (r *FileRepository) Save(ctx context.Context, seg models.Segment, st models.Status) error {
	if err := checkSegment(seg); err != nil {
		return err
	}

	data, err := json.Marshal(st)
	if err != nil {
		return storageError("encode", seg, err)
	}

	if err := filex.WriteFileAtomic(filepath.Join(r.dir(seg), statusFileName), data, 0o640); err != nil {
		return storageError("write", seg, err)
	}
	return nil
}

func (r *FileRepository) Load(ctx context.Context, seg models.Segment) (models.Status, error) {
	if err := checkSegment(seg); err != nil {
		return models.Status{}, err
	}

	data, err := os.ReadFile(filepath.Join(r.dir(seg), statusFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return r.loadLegacy(seg)
	}
	if err != nil {
		return models.Status{}, storageError("read", seg, err)
	}

	var st models.Status
	if err := json.Unmarshal(data, &st); err != nil {
		return models.Status{}, storageError("decode", seg, err)
	}
	return st, nil
}

// loadLegacy reads title.txt, text.txt and image.txt. Missing files count
// as empty fields.
func (r *FileRepository) loadLegacy(seg models.Segment) (models.Status, error) {
	var fields [len(legacyFiles)]string
	for i, name := range legacyFiles {
		b, err := os.ReadFile(filepath.Join(r.dir(seg), name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return models.Status{}, storageError("read legacy", seg, fmt.Errorf("%s: %w", name, err))
		}
		fields[i] = string(b)
	}
	return models.Status{Title: fields[0], Text: fields[1], Image: fields[2]}, nil
}
