package sentree

import (
	"bytes"
	"context"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dekarrin/sentree/internal/config"
	"github.com/dekarrin/sentree/internal/grammar"
	"github.com/dekarrin/sentree/internal/parse"
	"github.com/dekarrin/sentree/internal/sterrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGrammar = `
	CÂU -> NP VP
	NP -> "tôi" | "nó"
	VP -> "ăn" OBJ
	OBJ -> NP | "cơm" | ε
`

func newTestEngine(t *testing.T, cfg config.Config) *Engine {
	eng, err := New(cfg, WithGrammar(grammar.MustParse(testGrammar)), WithRand(rand.New(rand.NewSource(3))))
	require.NoError(t, err)
	return eng
}

func Test_Engine_ParseSentence(t *testing.T) {
	testCases := []struct {
		name         string
		cfg          config.Config
		sentence     string
		expectStatus Status
		expectEnd    int
		expect       string
		expectDiag   string
	}{
		{
			name:         "full parse, arrow",
			cfg:          config.Config{Parse: config.Parse{Mode: "strict"}},
			sentence:     "tôi ăn",
			expectStatus: StatusOK,
			expectEnd:    2,
			expect:       "(CÂU) → (NP → tôi) (VP) → ăn OBJ",
		},
		{
			name:         "full parse, preterminals elided",
			cfg:          config.Config{Parse: config.Parse{Mode: "strict"}, Output: config.Output{ElidePreterminals: true}},
			sentence:     "nó ăn cơm",
			expectStatus: StatusOK,
			expectEnd:    3,
			expect:       "(CÂU) → nó (VP) → ăn cơm",
		},
		{
			name:         "full parse, outline",
			cfg:          config.Config{Output: config.Output{Style: "outline"}},
			sentence:     "tôi ăn cơm",
			expectStatus: StatusOK,
			expectEnd:    3,
			expect: "CÂU\n" +
				"├── NP\n" +
				"│   └── tôi\n" +
				"└── VP\n" +
				"    ├── ăn\n" +
				"    └── OBJ\n" +
				"        └── cơm",
		},
		{
			name:         "strict with trailing token",
			cfg:          config.Config{Parse: config.Parse{Mode: "strict"}},
			sentence:     "tôi ăn cơm nhé",
			expectStatus: StatusNoParse,
			expectEnd:    3,
			expect:       "(Lỗi phân tích tại: nhé)",
			expectDiag:   "(Lỗi phân tích tại: nhé)",
		},
		{
			name:         "best effort with trailing token",
			cfg:          config.Config{Parse: config.Parse{Mode: "best-effort"}, Output: config.Output{ElidePreterminals: true}},
			sentence:     "tôi ăn cơm nhé",
			expectStatus: StatusPartial,
			expectEnd:    3,
			expect:       "(CÂU) → tôi (VP) → ăn cơm",
			expectDiag:   "(Lỗi phân tích tại: nhé)",
		},
		{
			name:         "start fails but a prefix parses",
			cfg:          config.Config{},
			sentence:     "tôi tôi",
			expectStatus: StatusNoParse,
			expectEnd:    1,
			expect:       "(Lỗi phân tích tại: tôi)",
			expectDiag:   "(Lỗi phân tích tại: tôi)",
		},
		{
			name:         "nothing parses",
			cfg:          config.Config{},
			sentence:     "chúng ta",
			expectStatus: StatusNoParse,
			expect:       DiagCannotParse,
			expectDiag:   DiagCannotParse,
		},
		{
			name:         "blank",
			cfg:          config.Config{},
			sentence:     "   ",
			expectStatus: StatusEmpty,
			expect:       DiagEmpty,
		},
		{
			name:         "too ambiguous",
			cfg:          config.Config{Parse: config.Parse{MaxDerivations: 1}},
			sentence:     "tôi ăn",
			expectStatus: StatusError,
			expect:       DiagTooAmbiguous,
			expectDiag:   DiagTooAmbiguous,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			eng := newTestEngine(t, tc.cfg)

			actual := eng.ParseSentence(context.Background(), tc.sentence)

			assert.Equal(tc.expectStatus, actual.Status)
			assert.Equal(tc.expectEnd, actual.End)
			assert.Equal(tc.expect, actual.Rendered)
			if tc.expectDiag == "" {
				assert.NoError(actual.Err)
			} else if assert.Error(actual.Err) {
				assert.Equal(tc.expectDiag, sterrors.Diagnostic(actual.Err))
			}
			if actual.Status == StatusOK || actual.Status == StatusPartial {
				assert.Equal("CÂU", actual.Tree.Label)
				assert.Equal(actual.Tokens[:actual.End], actual.Tree.Leaves())
			} else {
				assert.Nil(actual.Tree)
			}
		})
	}
}

func Test_Engine_ParseSentenceAs(t *testing.T) {
	assert := assert.New(t)
	eng := newTestEngine(t, config.Config{Parse: config.Parse{Mode: "best-effort"}})

	actual := eng.ParseSentenceAs(context.Background(), "tôi ăn cơm nhé", parse.Strict, eng.Style())

	assert.Equal(StatusNoParse, actual.Status)
}

func Test_Engine_ParseSentence_Cancelled(t *testing.T) {
	assert := assert.New(t)
	eng := newTestEngine(t, config.Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	actual := eng.ParseSentence(ctx, "tôi ăn")

	assert.Equal(StatusError, actual.Status)
	assert.Equal(DiagCancelled, actual.Rendered)
	assert.ErrorIs(actual.Err, context.Canceled)
}

func Test_New_GrammarFile(t *testing.T) {
	t.Run("missing file is fatal", func(t *testing.T) {
		cfg := config.Config{Grammar: config.Grammar{File: filepath.Join(t.TempDir(), "grammar.txt")}}

		_, err := New(cfg)

		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("empty file is fatal", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "grammar.txt")
		require.NoError(t, os.WriteFile(path, []byte("# nothing\n"), 0644))

		_, err := New(config.Config{Grammar: config.Grammar{File: path}})

		assert.ErrorIs(t, err, grammar.ErrEmptyGrammar)
	})

	t.Run("loads file and start symbol", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "grammar.txt")
		require.NoError(t, os.WriteFile(path, []byte(testGrammar), 0644))

		eng, err := New(config.Config{Grammar: config.Grammar{File: path, Start: "NP"}})

		require.NoError(t, err)
		assert.Equal(t, "NP", eng.Grammar().Start())
		assert.Equal(t, StatusOK, eng.ParseSentence(context.Background(), "nó").Status)
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := New(config.Config{Parse: config.Parse{Mode: "lenient"}}, WithGrammar(grammar.MustParse(testGrammar)))

		assert.Error(t, err)
	})
}

func Test_Engine_ParseSentence_NullableStart(t *testing.T) {
	nullable := grammar.MustParse(`
		CÂU -> NP | ε
		NP -> "tôi"
		VP -> "ăn"
	`)

	testCases := []struct {
		name      string
		mode      string
		sentence  string
		expect    string
		expectEnd int
	}{
		{
			name:     "best effort with only empty start match",
			mode:     "best-effort",
			sentence: "ăn tôi",
			expect:   DiagCannotParse,
		},
		{
			name:      "strict still points at furthest prefix",
			mode:      "strict",
			sentence:  "ăn tôi",
			expect:    "(Lỗi phân tích tại: tôi)",
			expectEnd: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			eng, err := New(config.Config{Parse: config.Parse{Mode: tc.mode}}, WithGrammar(nullable))
			require.NoError(t, err)

			actual := eng.ParseSentence(context.Background(), tc.sentence)

			assert.Equal(StatusNoParse, actual.Status)
			assert.Equal(tc.expect, actual.Rendered)
			assert.Equal(tc.expectEnd, actual.End)
		})
	}
}

func Test_Engine_RunBatch(t *testing.T) {
	assert := assert.New(t)
	eng := newTestEngine(t, config.Config{Parse: config.Parse{Mode: "strict"}, Output: config.Output{ElidePreterminals: true}})

	in := strings.NewReader("tôi ăn\n\nchúng ta\nnó ăn cơm\ntôi ăn cơm nhé\n")
	var out bytes.Buffer

	stats, err := eng.RunBatch(context.Background(), in, &out)

	assert.NoError(err)
	assert.Equal(BatchStats{Sentences: 5, OK: 2, NoParse: 2, Empty: 1}, stats)
	assert.Equal(""+
		"(CÂU) → tôi (VP) → ăn OBJ\n"+
		"()\n"+
		"(Không thể phân tích câu)\n"+
		"(CÂU) → nó (VP) → ăn cơm\n"+
		"(Lỗi phân tích tại: nhé)\n",
		out.String())
}

// lineReader gives one line per call to Read and calls beforeRead with the
// index of each line just before giving it.
type lineReader struct {
	lines      []string
	next       int
	beforeRead func(i int)
}

func (lr *lineReader) Read(p []byte) (int, error) {
	if lr.next >= len(lr.lines) {
		return 0, io.EOF
	}
	if lr.beforeRead != nil {
		lr.beforeRead(lr.next)
	}
	n := copy(p, lr.lines[lr.next])
	lr.next++
	return n, nil
}

func Test_Engine_RunBatch_Input(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		expectStats BatchStats
		expect      string
	}{
		{
			name:        "very long line does not stop later sentences",
			input:       "tôi ăn\n" + strings.Repeat("x", 2*1024*1024) + "\nnó ăn\n",
			expectStats: BatchStats{Sentences: 3, OK: 2, NoParse: 1},
			expect: "" +
				"(CÂU) → tôi (VP) → ăn OBJ\n" +
				"(Không thể phân tích câu)\n" +
				"(CÂU) → nó (VP) → ăn OBJ\n",
		},
		{
			name:        "windows line endings and no final newline",
			input:       "tôi ăn\r\nnó ăn cơm",
			expectStats: BatchStats{Sentences: 2, OK: 2},
			expect: "" +
				"(CÂU) → tôi (VP) → ăn OBJ\n" +
				"(CÂU) → nó (VP) → ăn cơm\n",
		},
		{
			name:   "empty input",
			input:  "",
			expect: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			eng := newTestEngine(t, config.Config{Parse: config.Parse{Mode: "strict"}, Output: config.Output{ElidePreterminals: true}})

			var out bytes.Buffer
			stats, err := eng.RunBatch(context.Background(), strings.NewReader(tc.input), &out)

			assert.NoError(err)
			assert.Equal(tc.expectStats, stats)
			assert.Equal(tc.expect, out.String())
		})
	}
}

func Test_Engine_RunBatch_CancelKeepsWrittenResults(t *testing.T) {
	assert := assert.New(t)
	eng := newTestEngine(t, config.Config{Parse: config.Parse{Mode: "strict"}, Output: config.Output{ElidePreterminals: true}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := &lineReader{
		lines: []string{"tôi ăn\n", "nó ăn cơm\n", "tôi ăn\n"},
		beforeRead: func(i int) {
			if i == 2 {
				cancel()
			}
		},
	}
	var out bytes.Buffer

	stats, err := eng.RunBatch(ctx, in, &out)

	assert.ErrorIs(err, context.Canceled)
	assert.Equal(BatchStats{Sentences: 2, OK: 2}, stats)
	assert.Equal(""+
		"(CÂU) → tôi (VP) → ăn OBJ\n"+
		"(CÂU) → nó (VP) → ăn cơm\n",
		out.String())
}

func Test_Engine_RunBatch_OutlineSeparator(t *testing.T) {
	assert := assert.New(t)
	eng := newTestEngine(t, config.Config{Output: config.Output{Style: "outline"}})

	var out bytes.Buffer
	_, err := eng.RunBatch(context.Background(), strings.NewReader("nó ăn\n\n"), &out)

	assert.NoError(err)
	assert.Equal("CÂU\n├── NP\n│   └── nó\n└── VP\n    ├── ăn\n    └── OBJ\n\n()\n\n", out.String())
}

func Test_Engine_GenerateSamples(t *testing.T) {
	assert := assert.New(t)
	eng := newTestEngine(t, config.Config{Parse: config.Parse{Mode: "strict"}})

	var out bytes.Buffer
	err := eng.GenerateSamples(&out, 20)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	assert.Len(lines, 20)

	stats, err := eng.RunBatch(context.Background(), strings.NewReader(out.String()), &bytes.Buffer{})
	assert.NoError(err)
	assert.Equal(20, stats.OK, "every generated sentence must parse")
}

func Test_Engine_Samples_Seeded(t *testing.T) {
	assert := assert.New(t)
	eng := newTestEngine(t, config.Config{})

	first, err := eng.Samples(10, 99)
	require.NoError(t, err)
	second, err := eng.Samples(10, 99)
	require.NoError(t, err)

	assert.Equal(first, second)
}

func Test_Engine_RunShell(t *testing.T) {
	assert := assert.New(t)
	eng := newTestEngine(t, config.Config{Output: config.Output{ElidePreterminals: true}})

	in := strings.NewReader("tôi ăn\nchúng ta\nQUIT\nnó ăn\n")
	var out bytes.Buffer

	err := eng.RunShell(in, &out, true)

	assert.NoError(err)
	output := out.String()
	assert.Contains(output, "(direct input mode)")
	assert.Contains(output, "(CÂU) → tôi (VP) → ăn OBJ\n")
	assert.Contains(output, DiagCannotParse+"\n")
	assert.True(strings.HasSuffix(output, "Goodbye\n"))
	assert.NotContains(output, "nó", "input after QUIT must not be read")
}

func Test_Engine_GrammarTable(t *testing.T) {
	assert := assert.New(t)
	eng := newTestEngine(t, config.Config{})

	table := eng.GrammarTable()

	for _, nt := range []string{"CÂU", "NP", "VP", "OBJ"} {
		assert.Contains(table, nt)
	}
	assert.Contains(table, `4 non-terminals, 4 terminals, 7 productions; start symbol "CÂU"`)
}
