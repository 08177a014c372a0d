package sentree

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/dekarrin/sentree/internal/generate"
)

// BatchStats counts the outcomes of a batch run.
type BatchStats struct {
	Sentences int
	OK        int
	Partial   int
	NoParse   int
	Empty     int
	Errors    int
}

func (bs *BatchStats) add(st Status) {
	bs.Sentences++
	switch st {
	case StatusOK:
		bs.OK++
	case StatusPartial:
		bs.Partial++
	case StatusNoParse:
		bs.NoParse++
	case StatusEmpty:
		bs.Empty++
	default:
		bs.Errors++
	}
}

func (bs BatchStats) String() string {
	return fmt.Sprintf("%d sentences: %d ok, %d partial, %d no parse, %d empty, %d errors",
		bs.Sentences, bs.OK, bs.Partial, bs.NoParse, bs.Empty, bs.Errors)
}

// RunBatch parses every line of in as a sentence and writes the rendered
// result of each to out, followed by the configured separator. Blank lines
// give "()". A sentence that fails to parse has its diagnostic written and
// does not stop the batch; only read and write errors, or ctx ending, do.
// Results written before the batch stops are always flushed to out.
func (eng *Engine) RunBatch(ctx context.Context, in io.Reader, out io.Writer) (stats BatchStats, err error) {
	sep := eng.cfg.Separator()

	bufOut := bufio.NewWriter(out)
	defer func() {
		if flushErr := bufOut.Flush(); flushErr != nil && err == nil {
			err = fmt.Errorf("could not flush output: %w", flushErr)
		}
	}()

	rd := bufio.NewReader(in)
	for {
		line, readErr := rd.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return stats, fmt.Errorf("could not read input: %w", readErr)
		}
		if readErr == io.EOF && line == "" {
			break
		}

		if err := ctx.Err(); err != nil {
			return stats, err
		}

		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")

		outcome := eng.ParseSentence(ctx, line)
		stats.add(outcome.Status)
		if outcome.Err != nil {
			eng.log.Debugf("sentence %d: %s: %s", stats.Sentences, outcome.Status, outcome.Err.Error())
		}

		if _, err := bufOut.WriteString(outcome.Rendered + sep); err != nil {
			return stats, fmt.Errorf("could not write output: %w", err)
		}

		if readErr == io.EOF {
			break
		}
	}

	eng.log.Infof("parsed %s", stats)
	return stats, nil
}

// GenerateSamples writes n random sentences from the grammar to w, one per
// line.
func (eng *Engine) GenerateSamples(w io.Writer, n int) error {
	gen := generate.New(eng.g, eng.rng, generate.Options{MaxExpansions: eng.cfg.Generate.MaxExpansions})

	bufOut := bufio.NewWriter(w)
	for i := 0; i < n; i++ {
		sentence, err := gen.Sentence(eng.g.Start())
		if err != nil {
			return fmt.Errorf("sample %d: %w", i+1, err)
		}
		if _, err := bufOut.WriteString(sentence + "\n"); err != nil {
			return fmt.Errorf("could not write output: %w", err)
		}
	}

	if err := bufOut.Flush(); err != nil {
		return fmt.Errorf("could not flush output: %w", err)
	}

	eng.log.Infof("generated %d sentences", n)
	return nil
}

// Samples returns n random sentences from the grammar drawn from a random
// source seeded with seed, or with the current time if seed is 0. Unlike
// GenerateSamples it does not use the Engine's random source and so may be
// called concurrently.
func (eng *Engine) Samples(n int, seed int64) ([]string, error) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	gen := generate.New(eng.g, rng, generate.Options{MaxExpansions: eng.cfg.Generate.MaxExpansions})

	sentences := make([]string, n)
	for i := range sentences {
		s, err := gen.Sentence(eng.g.Start())
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i+1, err)
		}
		sentences[i] = s
	}
	return sentences, nil
}
