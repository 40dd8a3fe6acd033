package present

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"slideshow/config"
	"slideshow/export"
	"slideshow/outline"
	"slideshow/show"
	"slideshow/state"
)

// List prints slide table of contents or, with --outline, complete document
// structure.
func List(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("list")

	doc, err := loadDocument(ctx, cmd, log)
	if err != nil {
		return err
	}
	if cmd.Bool("outline") {
		_, err = io.WriteString(os.Stdout, doc.Dump())
		return err
	}
	return listSlides(os.Stdout, doc, &env.Cfg.Show, log)
}

func listSlides(w io.Writer, doc show.Outline, cfg *config.ShowConfig, log *zap.Logger) error {
	index, err := show.BuildIndex(doc, cfg.SlideTag, log)
	if err != nil {
		return err
	}
	for _, s := range index.Slides() {
		indent := strings.Repeat("  ", max(s.Level-1, 0))
		if _, err := fmt.Fprintf(w, "%3d  %s%s\n", s.Ordinal, indent, s.Title); err != nil {
			return err
		}
	}
	return nil
}

// Export writes slide list as OPML.
func Export(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("export")

	doc, err := loadDocument(ctx, cmd, log)
	if err != nil {
		return err
	}

	fname := cmd.String("output")
	if len(fname) == 0 {
		log.Info("Exporting slide list", zap.String("document", doc.Name()), zap.String("file", "STDOUT"))
		return exportSlides(os.Stdout, doc, &env.Cfg.Show, log, time.Now())
	}
	log.Info("Exporting slide list", zap.String("document", doc.Name()), zap.String("file", fname))
	return exportFile(fname, doc, &env.Cfg.Show, log, time.Now())
}

func exportFile(fname string, doc *outline.Document, cfg *config.ShowConfig, log *zap.Logger, now time.Time) (err error) {
	out, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
	}
	defer func() {
		err = multierr.Append(err, out.Close())
	}()
	return exportSlides(out, doc, cfg, log, now)
}

func exportSlides(w io.Writer, doc *outline.Document, cfg *config.ShowConfig, log *zap.Logger, now time.Time) error {
	index, err := show.BuildIndex(doc, cfg.SlideTag, log)
	if err != nil {
		return err
	}
	return export.OPML(w, docTitle(doc), index.Slides(), now)
}
