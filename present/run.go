// Package present implements command line actions around a slide show.
package present

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"slideshow/archive"
	"slideshow/config"
	"slideshow/media"
	"slideshow/outline"
	"slideshow/script"
	"slideshow/show"
	"slideshow/state"
)

// loadDocument reads outline named by the first command argument. Deck
// bundles are unpacked first and removed when program ends.
func loadDocument(ctx context.Context, cmd *cli.Command, log *zap.Logger) (*outline.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env := state.EnvFromContext(ctx)

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return nil, errors.New("no document has been specified")
	}
	src, err := filepath.Abs(src)
	if err != nil {
		return nil, err
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many documents", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	env.Rpt.Store(filepath.Join("document", filepath.Base(src)), src)
	if archive.IsBundle(src) {
		b, err := archive.Unpack(src, env.Cfg.Media.ArtifactsDir, log)
		if b != nil {
			env.AddCleanup(func() error { return os.RemoveAll(b.Dir) })
		}
		if err != nil {
			return nil, fmt.Errorf("unable to open bundle %q: %w", src, err)
		}
		src = b.Document
	}

	doc, err := outline.Load(src, outline.WithLogger(log.Named("outline")))
	if err != nil {
		return nil, err
	}
	log.Debug("Document loaded", zap.String("path", src), zap.Int("sections", len(doc.Sections())))
	return doc, nil
}

// newSession wires evaluator and media preparer into a session for doc.
func newSession(cfg *config.Config, doc *outline.Document, log *zap.Logger) *show.Session {
	return show.NewSession(&cfg.Show, log.Named("show"),
		show.WithEvaluator(script.New(log.Named("script"))),
		show.WithMedia(media.New(&cfg.Media, doc.Dir(), log.Named("media"))),
	)
}

func docTitle(doc *outline.Document) string {
	if t := doc.Title(); len(t) > 0 {
		return t
	}
	return filepath.Base(doc.Name())
}

func slideStatus(s *show.Session) string {
	return fmt.Sprintf("[%d/%d]", s.Current(), s.Total())
}
