package present

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"slideshow/show"
	"slideshow/state"
	"slideshow/utils/console"
)

type screen interface {
	Size() (int, int)
	Draw(text, status string) error
}

// Show runs interactive slide show on the terminal.
func Show(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("present")

	doc, err := loadDocument(ctx, cmd, log)
	if err != nil {
		return err
	}

	con, err := console.Open(os.Stdin, os.Stdout)
	if err != nil {
		return fmt.Errorf("unable to prepare terminal: %w", err)
	}
	defer func() {
		err = multierr.Append(err, con.Close())
	}()

	session := newSession(env.Cfg, doc, log)
	if err := session.Start(doc); err != nil {
		return fmt.Errorf("unable to start show: %w", err)
	}
	defer session.Stop()

	return loop(ctx, session, con, con.Keys(), log)
}

// loop draws current slide and dispatches key commands until user quits.
// Navigation problems are shown on the status line, the show goes on.
func loop(ctx context.Context, session *show.Session, scr screen, keys *console.KeyReader, log *zap.Logger) error {
	var message string
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		width, _ := scr.Size()
		buf := new(bytes.Buffer)
		if err := session.Document().Render(buf, width); err != nil {
			return fmt.Errorf("unable to draw slide: %w", err)
		}
		status := slideStatus(session)
		if len(message) > 0 {
			status += " " + message
		}
		if err := scr.Draw(buf.String(), status); err != nil {
			return fmt.Errorf("unable to draw slide: %w", err)
		}

		cmd, err := keys.Next()
		if err != nil {
			return fmt.Errorf("unable to read keyboard: %w", err)
		}
		log.Debug("Key command", zap.Stringer("action", cmd.Action), zap.Int("slide", cmd.Slide))

		var notice show.Notice
		switch cmd.Action {
		case console.ActionQuit:
			return nil
		case console.ActionNext:
			notice, err = session.Next()
		case console.ActionPrevious:
			notice, err = session.Previous()
		case console.ActionGoto:
			err = session.Goto(cmd.Slide)
		case console.ActionRebuild:
			err = session.Rebuild()
		default:
			continue
		}

		message = notice.String()
		switch {
		case err == nil:
		case errors.Is(err, show.ErrStaleSlide):
			log.Warn("Slide index is stale, rebuilding", zap.Error(err))
			if err := session.Rebuild(); err != nil {
				return err
			}
			message = "index rebuilt"
		case errors.Is(err, show.ErrOutOfRange):
			message = err.Error()
			log.Warn("Navigation failed", zap.Error(err))
		default:
			return err
		}
	}
}
