package show

import (
	"fmt"

	"go.uber.org/zap"
)

// OnceArg marks fragment which must not be evaluated again when slide is
// revisited during the same show.
const OnceArg = ":once"

// Evaluator runs presentation fragments in the live host environment.
type Evaluator interface {
	// Begin opens evaluation scope shared by all fragments of a single slide
	// render, fragments see what earlier ones left behind.
	Begin(doc Document, slide Slide, total int) FragmentScope
}

// FragmentScope evaluates fragments one at a time.
type FragmentScope interface {
	Eval(frag Fragment) error
}

// FragmentResult describes what happened to a single fragment.
type FragmentResult struct {
	Fragment Fragment
	Skipped  bool
	Err      error
}

type executor struct {
	eval Evaluator
	kind string
	snap *Snapshot
	done map[string]struct{}
	log  *zap.Logger
}

func newExecutor(eval Evaluator, kind string, snap *Snapshot, log *zap.Logger) *executor {
	return &executor{eval: eval, kind: kind, snap: snap, done: make(map[string]struct{}), log: log}
}

// execute evaluates presentation fragments of the section strictly in
// document order. Failure of a fragment is recorded and does not stop the
// rest.
func (e *executor) execute(doc Document, sec Section, slide Slide, total int) []FragmentResult {
	frags := doc.FindFragments(sec, e.kind)
	if len(frags) == 0 {
		return nil
	}
	if e.eval == nil {
		e.log.Debug("No evaluator, presentation fragments ignored", zap.Int("slide", slide.Ordinal), zap.Int("count", len(frags)))
		return nil
	}

	scope := e.eval.Begin(recordingDocument{Document: doc, snap: e.snap}, slide, total)
	results := make([]FragmentResult, 0, len(frags))
	for _, f := range frags {
		res := FragmentResult{Fragment: f}
		once := f.HasArg(OnceArg)
		if _, seen := e.done[f.ID]; once && seen {
			res.Skipped = true
			e.log.Debug("Fragment already evaluated, skipping", zap.String("id", f.ID))
		} else {
			res.Err = evalFragment(scope, f)
			if once {
				e.done[f.ID] = struct{}{}
			}
		}
		doc.FoldFragment(f)
		if res.Err != nil {
			e.log.Warn("Fragment evaluation failed", zap.Int("slide", slide.Ordinal), zap.String("id", f.ID), zap.Error(res.Err))
		}
		results = append(results, res)
	}
	return results
}

func evalFragment(scope FragmentScope, f Fragment) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fragment %s panicked: %v", f.ID, r)
		}
	}()
	return scope.Eval(f)
}
