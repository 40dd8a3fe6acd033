package show

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"go.uber.org/multierr"
)

// Artifact is a file created as a side effect of rendering.
type Artifact struct {
	// Source identifies what artifact was made from, so repeated renders
	// reuse it.
	Source string
	Path   string
	// View is set when artifact is open somewhere and has to be persisted and
	// closed before removal.
	View io.Closer
}

// Artifacts tracks generated files for the lifetime of a show.
type Artifacts struct {
	items    []Artifact
	bySource map[string]int
}

func NewArtifacts() *Artifacts {
	return &Artifacts{bySource: make(map[string]int)}
}

// Add registers artifact. Artifacts are drained in reverse order, so a
// directory registered before its content is removed after it.
func (a *Artifacts) Add(art Artifact) {
	if len(art.Source) > 0 {
		a.bySource[art.Source] = len(a.items)
	}
	a.items = append(a.items, art)
}

// Lookup finds artifact previously made from source.
func (a *Artifacts) Lookup(source string) (Artifact, bool) {
	i, ok := a.bySource[source]
	if !ok {
		return Artifact{}, false
	}
	return a.items[i], true
}

func (a *Artifacts) Len() int {
	if a == nil {
		return 0
	}
	return len(a.items)
}

// Paths returns paths of all registered artifacts in registration order.
func (a *Artifacts) Paths() []string {
	paths := make([]string, 0, len(a.items))
	for _, art := range a.items {
		paths = append(paths, art.Path)
	}
	return paths
}

// Drain persists and closes open views and removes every artifact from disk.
// Files which are already gone are skipped. The set is always empty
// afterwards, errors are accumulated.
func (a *Artifacts) Drain() (err error) {
	for i := len(a.items) - 1; i >= 0; i-- {
		art := a.items[i]
		if art.View != nil {
			if s, ok := art.View.(interface{ Sync() error }); ok {
				err = multierr.Append(err, ignoreClosed(s.Sync()))
			}
			err = multierr.Append(err, ignoreClosed(art.View.Close()))
		}
		if rerr := os.Remove(art.Path); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) {
			err = multierr.Append(err, fmt.Errorf("unable to remove artifact: %w", rerr))
		}
	}
	a.items = nil
	clear(a.bySource)
	return err
}

func ignoreClosed(err error) error {
	if errors.Is(err, fs.ErrClosed) {
		return nil
	}
	return err
}
