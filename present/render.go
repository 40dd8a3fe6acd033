package present

import (
	"context"
	"fmt"
	"io"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"

	"slideshow/show"
	"slideshow/state"
)

// Render prints slides without user interaction.
func Render(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("render")

	doc, err := loadDocument(ctx, cmd, log)
	if err != nil {
		return err
	}

	var slides []int
	if !cmd.Bool("all") {
		slides = []int{int(cmd.Int("slide"))}
	}

	session := newSession(env.Cfg, doc, log)
	return renderSlides(ctx, os.Stdout, session, doc, slides, int(cmd.Int("width")))
}

// renderSlides runs the show over requested slides, all of them when slides
// is empty, writing every rendered view to w. Show is always stopped.
func renderSlides(ctx context.Context, w io.Writer, session *show.Session, doc show.Document, slides []int, width int) (err error) {
	if err := session.Start(doc); err != nil {
		return fmt.Errorf("unable to start show: %w", err)
	}
	defer session.Stop()

	if len(slides) == 0 {
		for i := range session.Total() {
			slides = append(slides, i+1)
		}
	}

	for i, n := range slides {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := session.Goto(n); err != nil {
			return fmt.Errorf("unable to show slide: %w", err)
		}
		if i > 0 {
			if _, err := io.WriteString(w, "\f\n"); err != nil {
				return err
			}
		}
		err = multierr.Append(err, doc.Render(w, width))
	}
	return err
}
