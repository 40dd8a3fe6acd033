// Package script evaluates presentation fragments written in Starlark. Every
// fragment runs with a set of builtins bound to the document being shown and
// sees globals defined by fragments evaluated before it on the same slide.
package script

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"
	"go.uber.org/zap"

	"slideshow/show"
)

// DefaultMaxSteps bounds a single fragment, runaway loops are cancelled.
const DefaultMaxSteps = 10_000_000

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

// Evaluator runs fragments of a single show.
type Evaluator struct {
	log      *zap.Logger
	maxSteps uint64
}

type Option func(*Evaluator)

// WithMaxSteps changes execution step limit, 0 removes the limit.
func WithMaxSteps(n uint64) Option {
	return func(e *Evaluator) {
		e.maxSteps = n
	}
}

func New(log *zap.Logger, opts ...Option) *Evaluator {
	e := &Evaluator{log: log, maxSteps: DefaultMaxSteps}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type scope struct {
	ev      *Evaluator
	doc     show.Document
	slide   show.Slide
	total   int
	log     *zap.Logger
	globals starlark.StringDict
}

func (e *Evaluator) Begin(doc show.Document, slide show.Slide, total int) show.FragmentScope {
	return &scope{
		ev:      e,
		doc:     doc,
		slide:   slide,
		total:   total,
		log:     e.log.With(zap.Int("slide", slide.Ordinal)),
		globals: make(starlark.StringDict),
	}
}

// Eval runs fragment source. Globals it defines stay mutable and are visible
// to the following fragments of the same render.
func (s *scope) Eval(frag show.Fragment) error {
	thread := &starlark.Thread{
		Name: frag.ID,
		Print: func(_ *starlark.Thread, msg string) {
			s.log.Info(msg, zap.String("fragment", frag.ID))
		},
	}
	if s.ev.maxSteps > 0 {
		thread.SetMaxExecutionSteps(s.ev.maxSteps)
	}

	predeclared := s.builtins(frag)
	maps.Copy(predeclared, s.globals)

	_, prog, err := starlark.SourceProgramOptions(fileOptions, frag.ID, frag.Source, predeclared.Has)
	if err != nil {
		return fmt.Errorf("fragment %s: %w", frag.ID, err)
	}
	globals, err := prog.Init(thread, predeclared)
	if err != nil {
		var evalErr *starlark.EvalError
		if errors.As(err, &evalErr) {
			return fmt.Errorf("fragment %s: %s", frag.ID, evalErr.Backtrace())
		}
		return fmt.Errorf("fragment %s: %w", frag.ID, err)
	}
	maps.Copy(s.globals, globals)
	return nil
}

func (s *scope) builtins(frag show.Fragment) starlark.StringDict {
	return starlark.StringDict{
		"doc_title":      starlark.NewBuiltin("doc_title", s.docTitle),
		"slide":          starlark.NewBuiltin("slide", s.slideInfo),
		"slide_text":     starlark.NewBuiltin("slide_text", s.slideText),
		"set_text_scale": starlark.NewBuiltin("set_text_scale", s.setTextScale),
		"hide_drawers":   starlark.NewBuiltin("hide_drawers", s.hideDrawers),
		"get_display":    starlark.NewBuiltin("get_display", s.getDisplay),
		"set_display":    starlark.NewBuiltin("set_display", s.setDisplay),
		"log": starlark.NewBuiltin("log", func(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
			parts := make([]string, len(args))
			for i, a := range args {
				if str, ok := starlark.AsString(a); ok {
					parts[i] = str
				} else {
					parts[i] = a.String()
				}
			}
			s.log.Info(strings.Join(parts, " "), zap.String("fragment", frag.ID))
			return starlark.None, nil
		}),
	}
}

func (s *scope) docTitle(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	return starlark.String(s.doc.Name()), nil
}

func (s *scope) slideInfo(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	return starlarkstruct.FromStringDict(starlarkstruct.Default, starlark.StringDict{
		"ordinal": starlark.MakeInt(s.slide.Ordinal),
		"title":   starlark.String(s.slide.Title),
		"level":   starlark.MakeInt(s.slide.Level),
		"total":   starlark.MakeInt(s.total),
	}), nil
}

func (s *scope) slideText(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	sec, err := s.doc.Resolve(s.slide.Pos)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return starlark.String(s.doc.SubtreeText(sec)), nil
}

func (s *scope) setTextScale(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var v starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &v); err != nil {
		return nil, err
	}
	scale, ok := starlark.AsFloat(v)
	if !ok || scale <= 0 {
		return nil, fmt.Errorf("%s: scale must be a positive number, got %s", b.Name(), v)
	}
	s.doc.SetTextScale(scale)
	return starlark.None, nil
}

func (s *scope) hideDrawers(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	hidden := true
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "hidden?", &hidden); err != nil {
		return nil, err
	}
	s.doc.SetDrawersHidden(hidden)
	return starlark.None, nil
}

func (s *scope) getDisplay(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		name string
		def  starlark.Value = starlark.None
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name, "default?", &def); err != nil {
		return nil, err
	}
	v, ok := s.doc.GetGlobalDisplay(name)
	if !ok {
		return def, nil
	}
	return toValue(v), nil
}

func (s *scope) setDisplay(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		name  string
		value starlark.Value
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name, "value", &value); err != nil {
		return nil, err
	}
	v, err := fromValue(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	s.doc.SetGlobalDisplay(name, v)
	return starlark.None, nil
}
