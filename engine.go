// Package sentree parses sentences against a context-free grammar and renders
// their parse trees. An Engine ties together a loaded grammar, the parse
// engine, the derivation selector, and a tree renderer, and drives them over
// single sentences, whole input files, or an interactive shell. It can also
// generate random sentences from the same grammar.
package sentree

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/dekarrin/sentree/internal/config"
	"github.com/dekarrin/sentree/internal/grammar"
	"github.com/dekarrin/sentree/internal/parse"
	"github.com/dekarrin/sentree/internal/render"
	"github.com/dekarrin/sentree/internal/sterrors"
	"github.com/dekarrin/sentree/internal/tokenize"
	"github.com/tliron/commonlog"
)

// Text written in place of a tree when a sentence does not produce one.
const (
	DiagEmpty        = "()"
	DiagCannotParse  = "(Không thể phân tích câu)"
	DiagTooAmbiguous = "(Câu quá mơ hồ để phân tích)"
	DiagTooDeep      = "(Văn phạm lồng quá sâu để phân tích câu)"
	DiagTimeout      = "(Hết thời gian phân tích câu)"
	DiagCancelled    = "(Đã hủy phân tích câu)"

	diagErrorAtFmt = "(Lỗi phân tích tại: %s)"
)

// Engine parses sentences with one grammar and one set of settings. It is
// safe for concurrent use by multiple goroutines except for GenerateSamples,
// which draws from the Engine's single random source.
type Engine struct {
	cfg       config.Config
	g         grammar.Grammar
	tok       tokenize.Tokenizer
	mode      parse.Mode
	style     render.Style
	renderers map[render.Style]render.Renderer
	rng       *rand.Rand
	log       commonlog.Logger
}

// Option changes how New builds an Engine.
type Option func(eng *Engine)

// WithGrammar makes the Engine use g instead of loading the grammar file named
// in the config. The configured start symbol is still applied to it.
func WithGrammar(g grammar.Grammar) Option {
	return func(eng *Engine) {
		eng.g = g
	}
}

// WithRand makes the Engine generate sentences from rng instead of a source
// seeded from the config.
func WithRand(rng *rand.Rand) Option {
	return func(eng *Engine) {
		eng.rng = rng
	}
}

// WithLogger makes the Engine write its log messages to log.
func WithLogger(log commonlog.Logger) Option {
	return func(eng *Engine) {
		eng.log = log
	}
}

// New creates an Engine from cfg. Unset config values take their defaults.
// Unless WithGrammar is given, the grammar is loaded from the configured file
// and it is an error for it to be missing or to define no rules.
func New(cfg config.Config, opts ...Option) (*Engine, error) {
	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	eng := &Engine{
		cfg:   cfg,
		tok:   tokenize.Tokenizer{NFC: cfg.Parse.NFC},
		mode:  cfg.Mode(),
		style: cfg.Style(),
		renderers: map[render.Style]render.Renderer{
			render.Arrow:   render.ArrowRenderer{ElidePreterminals: cfg.Output.ElidePreterminals},
			render.Outline: render.OutlineRenderer{},
		},
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.log == nil {
		eng.log = commonlog.GetLogger("sentree")
	}

	if eng.g.Len() == 0 {
		g, err := grammar.LoadFile(cfg.Grammar.File)
		if err != nil {
			return nil, fmt.Errorf("load grammar: %w", err)
		}
		eng.g = g
	}
	eng.g = eng.g.WithStart(cfg.Grammar.Start)

	if !eng.g.Has(eng.g.Start()) {
		eng.log.Warningf("grammar has no rules for start symbol %q; every sentence will fail", eng.g.Start())
	}

	if eng.rng == nil {
		seed := cfg.Generate.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		eng.rng = rand.New(rand.NewSource(seed))
	}

	return eng, nil
}

// Grammar returns the grammar the Engine parses with.
func (eng *Engine) Grammar() grammar.Grammar {
	return eng.g
}

// Config returns the Engine's config with defaults filled.
func (eng *Engine) Config() config.Config {
	return eng.cfg
}

// Mode returns the default parse mode of the Engine.
func (eng *Engine) Mode() parse.Mode {
	return eng.mode
}

// Style returns the default render style of the Engine.
func (eng *Engine) Style() render.Style {
	return eng.style
}

// ParseSentence parses sentence with the Engine's configured mode and style.
func (eng *Engine) ParseSentence(ctx context.Context, sentence string) Outcome {
	return eng.ParseSentenceAs(ctx, sentence, eng.mode, eng.style)
}

// ParseSentenceAs parses sentence in its own parse session and renders the
// selected derivation, or a diagnostic if there is none, in the given style.
// Failing to parse is reported in the returned Outcome and is never fatal to
// the Engine.
func (eng *Engine) ParseSentenceAs(ctx context.Context, sentence string, mode parse.Mode, style render.Style) Outcome {
	out := Outcome{Sentence: sentence, Tokens: eng.tok.Tokenize(sentence)}

	if len(out.Tokens) == 0 {
		out.Status = StatusEmpty
		out.Rendered = DiagEmpty
		return out
	}

	if timeout := eng.cfg.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := eng.g.Start()
	sess := parse.NewSession(eng.g, out.Tokens, eng.cfg.ParseOptions())
	results, err := sess.Parse(ctx, start)
	if err != nil {
		return out.failed(err)
	}

	sel, err := parse.Select(results, out.Tokens, mode)
	var partialErr *parse.PartialParseError
	if err == nil || errors.As(err, &partialErr) {
		out.Status = StatusOK
		out.End = sel.End
		out.Tree = parse.Branch(start, sel.Children...)
		out.Rendered = eng.renderers[style].Render(start, sel.Children)
		if partialErr != nil {
			out.Status = StatusPartial
			out.Err = sterrors.Wrapf(err, diagErrorAtFmt, strings.Join(partialErr.Unconsumed, " "))
		}
		return out
	}

	if mode == parse.BestEffort && len(results) > 0 {
		// the start symbol matched, but only without consuming anything
		out.Status = StatusNoParse
		out.Err = sterrors.Wrap(err, DiagCannotParse)
		out.Rendered = sterrors.Diagnostic(out.Err)
		return out
	}

	// nothing usable from the start symbol; find how far anything gets so the
	// diagnostic can point at where parsing broke down.
	furthest, ferr := parse.FurthestPrefix(ctx, sess)
	if ferr != nil {
		return out.failed(ferr)
	}

	out.Status = StatusNoParse
	out.End = furthest
	if furthest == 0 || furthest >= len(out.Tokens) {
		// a non-terminal other than the start symbol covering the whole
		// sentence leaves nothing to point at
		out.Err = sterrors.Wrap(err, DiagCannotParse)
	} else {
		out.Err = sterrors.Wrapf(err, diagErrorAtFmt, strings.Join(out.Tokens[furthest:], " "))
	}
	out.Rendered = sterrors.Diagnostic(out.Err)

	return out
}

// failed fills the Outcome for a parse that was stopped by a limit or by its
// context.
func (out Outcome) failed(err error) Outcome {
	var diag string
	switch {
	case errors.Is(err, parse.ErrTooAmbiguous):
		diag = DiagTooAmbiguous
	case errors.Is(err, parse.ErrTooDeep):
		diag = DiagTooDeep
	case errors.Is(err, context.DeadlineExceeded):
		diag = DiagTimeout
	case errors.Is(err, context.Canceled):
		diag = DiagCancelled
	default:
		diag = DiagCannotParse
	}

	out.Status = StatusError
	out.Err = sterrors.Wrap(err, diag)
	out.Rendered = diag
	return out
}
