package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/zap"
)

// DocumentExt is extension of outline documents inside a bundle.
const DocumentExt = ".org"

// ErrNoDocument is returned for bundles without outline document.
var ErrNoDocument = errors.New("bundle has no outline document")

// Bundle is unpacked deck bundle.
type Bundle struct {
	// Dir holds unpacked content, relative media links resolve against it.
	Dir string
	// Document is the outline to show. When bundle carries several the one
	// closest to the root wins, ties are broken in natural order so
	// "deck2.org" comes before "deck10.org".
	Document string
	// Documents lists every outline in the bundle, relative to Dir.
	Documents []string
}

// IsBundle reports whether path names deck bundle rather than a document.
func IsBundle(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".zip")
}

// Unpack extracts bundle into a new directory under parent. Caller owns the
// directory and has to remove it, including when error is returned.
func Unpack(bundle, parent string, log *zap.Logger) (*Bundle, error) {
	dir, err := os.MkdirTemp(parent, "bundle-")
	if err != nil {
		return nil, fmt.Errorf("unable to create directory for bundle: %w", err)
	}
	b := &Bundle{Dir: dir}

	err = Walk(bundle, "", func(_ string, f *zip.File) error {
		if err := extract(f, dir); err != nil {
			return fmt.Errorf("unable to extract %q: %w", f.Name, err)
		}
		if strings.EqualFold(path.Ext(f.Name), DocumentExt) {
			b.Documents = append(b.Documents, filepath.FromSlash(f.Name))
		}
		return nil
	})
	if err != nil {
		return b, err
	}
	if len(b.Documents) == 0 {
		return b, ErrNoDocument
	}

	slices.SortFunc(b.Documents, func(x, y string) int {
		if dx, dy := depth(x), depth(y); dx != dy {
			return dx - dy
		}
		switch {
		case natural.Less(x, y):
			return -1
		case natural.Less(y, x):
			return 1
		}
		return 0
	})
	b.Document = filepath.Join(dir, b.Documents[0])

	log.Debug("Bundle unpacked", zap.String("bundle", bundle), zap.String("dir", dir), zap.Strings("documents", b.Documents))
	if len(b.Documents) > 1 {
		log.Info("Bundle has several documents, using first", zap.String("document", b.Documents[0]), zap.Int("count", len(b.Documents)))
	}
	return b, nil
}

func depth(name string) int {
	return strings.Count(filepath.ToSlash(name), "/")
}

func extract(f *zip.File, dir string) error {
	dst := filepath.Join(dir, filepath.FromSlash(f.Name))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	r, err := f.Open()
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
