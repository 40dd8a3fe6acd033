package show

import (
	"bytes"
	"fmt"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"go.uber.org/zap"

	"slideshow/config"
)

// MediaPreparer turns media links of a slide into files suitable for display.
// It never fails, links it cannot handle are left as they are.
type MediaPreparer interface {
	Prepare(slide Slide, links []string, arts *Artifacts) map[string]string
}

// TitleData is available to frame title template.
type TitleData struct {
	Title    string
	Ordinal  int
	Total    int
	Document string
}

type renderer struct {
	doc   Document
	cfg   *config.ShowConfig
	media MediaPreparer
	arts  *Artifacts
	exec  *executor
	title *template.Template
	log   *zap.Logger
}

func parseTitleTemplate(text string, log *zap.Logger) *template.Template {
	if len(text) == 0 {
		return nil
	}
	tmpl, err := template.New("title").Funcs(sprig.FuncMap()).Parse(text)
	if err != nil {
		log.Warn("Bad title template, using default", zap.String("template", text), zap.Error(err))
		return nil
	}
	return tmpl
}

// render shows slide. Steps are applied in order and each leaves its effect
// in place even if a later one fails.
func (r *renderer) render(slide Slide, total int) ([]FragmentResult, error) {
	sec, err := r.doc.Resolve(slide.Pos)
	if err != nil {
		return nil, &StaleSlideError{Slide: slide, Err: err}
	}

	// folded state must not leak into narrowed view
	r.doc.Unfold()
	if err := r.doc.Narrow(sec); err != nil {
		return nil, fmt.Errorf("unable to scope view to slide %d: %w", slide.Ordinal, err)
	}
	r.doc.SetWrap(true)

	r.doc.RequestTypeset(sec, r.cfg.TypesetScale)

	r.doc.SetTextScale(r.cfg.TextScale)
	r.doc.SetDrawersHidden(true)
	r.displayMedia(slide, sec)

	results := r.exec.execute(r.doc, sec, slide, total)

	r.doc.SetFrameTitle(r.frameTitle(slide, total))

	r.log.Debug("Slide rendered", zap.Int("slide", slide.Ordinal), zap.String("title", slide.Title), zap.Int("fragments", len(results)))
	return results, nil
}

func (r *renderer) displayMedia(slide Slide, sec Section) {
	links := r.doc.MediaLinks(sec)
	if len(links) == 0 {
		r.doc.RequestMediaDisplay(sec, nil)
		return
	}
	var resolved map[string]string
	if r.media != nil {
		resolved = r.media.Prepare(slide, links, r.arts)
	}
	r.doc.RequestMediaDisplay(sec, resolved)
}

// frameTitle is cosmetic - problems are logged, never returned.
func (r *renderer) frameTitle(slide Slide, total int) string {
	def := fmt.Sprintf("%s [%d/%d]", slide.Title, slide.Ordinal, total)
	if r.title == nil {
		return def
	}
	buf := new(bytes.Buffer)
	if err := r.title.Execute(buf, TitleData{
		Title:    slide.Title,
		Ordinal:  slide.Ordinal,
		Total:    total,
		Document: r.doc.Name(),
	}); err != nil {
		r.log.Debug("Unable to expand title template", zap.Error(err))
		return def
	}
	return buf.String()
}
