package server

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dekarrin/sentree"
	"github.com/dekarrin/sentree/internal/config"
	"github.com/dekarrin/sentree/internal/grammar"
	"github.com/dekarrin/sentree/server/api"
	"github.com/dekarrin/sentree/server/sts"
	"github.com/dekarrin/sentree/server/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testGrammar = `
	CÂU -> NP VP
	NP -> "tôi" | "nó"
	VP -> "ăn" OBJ
	OBJ -> NP | "cơm" | ε
`

func init() {
	sts.PasswordCost = bcrypt.MinCost
}

func newTestServer(t *testing.T) *Server {
	eng, err := sentree.New(config.Config{}, sentree.WithGrammar(grammar.MustParse(testGrammar)), sentree.WithRand(rand.New(rand.NewSource(1))))
	require.NoError(t, err)

	srv, err := New(context.Background(), eng, Config{
		AdminPassword: "hunter2",
		UnauthDelay:   -1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })
	return srv
}

// do sends a request to srv and decodes a JSON response body into respObj if
// it is non-nil.
func do(t *testing.T, srv http.Handler, method, path, tok string, body interface{}, respObj interface{}) *httptest.ResponseRecorder {
	var reqBody bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&reqBody).Encode(body))
	}

	req := httptest.NewRequest(method, path, &reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if respObj != nil && w.Code < 300 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), respObj), "body: %s", w.Body.String())
	}
	return w
}

func login(t *testing.T, srv http.Handler) string {
	var resp api.TokenResponse
	w := do(t, srv, http.MethodPost, "/api/v1/login", "", api.LoginRequest{Username: "admin", Password: "hunter2"}, &resp)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func Test_Server_CreateParse(t *testing.T) {
	testCases := []struct {
		name           string
		req            interface{}
		expectCode     int
		expectStatus   string
		expectRendered string
		expectMode     string
		expectStyle    string
		expectTree     bool
	}{
		{
			name:           "full parse with defaults",
			req:            api.ParseRequest{Sentence: "nó ăn cơm"},
			expectCode:     http.StatusCreated,
			expectStatus:   "ok",
			expectRendered: "(CÂU) → (NP → nó) (VP) → ăn (OBJ → cơm)",
			expectMode:     "best-effort",
			expectStyle:    "arrow",
			expectTree:     true,
		},
		{
			name:           "strict with no full parse",
			req:            api.ParseRequest{Sentence: "nó ăn cơm nhé", Mode: "strict"},
			expectCode:     http.StatusCreated,
			expectStatus:   "no-parse",
			expectRendered: "(Lỗi phân tích tại: nhé)",
			expectMode:     "strict",
			expectStyle:    "arrow",
		},
		{
			name:           "outline style",
			req:            api.ParseRequest{Sentence: "tôi ăn", Style: "outline"},
			expectCode:     http.StatusCreated,
			expectStatus:   "ok",
			expectRendered: "CÂU\n├── NP\n│   └── tôi\n└── VP\n    ├── ăn\n    └── OBJ",
			expectMode:     "best-effort",
			expectStyle:    "outline",
			expectTree:     true,
		},
		{
			name:       "bad mode",
			req:        api.ParseRequest{Sentence: "tôi ăn", Mode: "sloppy"},
			expectCode: http.StatusBadRequest,
		},
		{
			name:       "bad style",
			req:        api.ParseRequest{Sentence: "tôi ăn", Style: "sideways"},
			expectCode: http.StatusBadRequest,
		},
		{
			name:       "malformed body",
			req:        []int{1, 2},
			expectCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			srv := newTestServer(t)

			var resp api.ParseModel
			w := do(t, srv, http.MethodPost, "/api/v1/parses", "", tc.req, &resp)

			require.Equal(t, tc.expectCode, w.Code, w.Body.String())
			if tc.expectCode != http.StatusCreated {
				return
			}

			assert.Equal(tc.expectStatus, resp.Status)
			assert.Equal(tc.expectRendered, resp.Rendered)
			assert.Equal(tc.expectMode, resp.Mode)
			assert.Equal(tc.expectStyle, resp.Style)
			assert.Equal(tc.expectTree, resp.Tree != nil)
			assert.Equal("/api/v1/parses/"+resp.ID, resp.URI)

			var got api.ParseModel
			w = do(t, srv, http.MethodGet, resp.URI, "", nil, &got)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(resp, got)
		})
	}
}

func Test_Server_ParseTree(t *testing.T) {
	srv := newTestServer(t)

	var resp api.ParseModel
	w := do(t, srv, http.MethodPost, "/api/v1/parses", "", api.ParseRequest{Sentence: "tôi ăn"}, &resp)
	require.Equal(t, http.StatusCreated, w.Code)

	expect := &api.TreeModel{
		Label: "CÂU",
		Children: []api.TreeModel{
			{Label: "NP", Children: []api.TreeModel{{Label: "tôi", Terminal: true}}},
			{Label: "VP", Children: []api.TreeModel{{Label: "ăn", Terminal: true}, {Label: "OBJ"}}},
		},
	}
	assert.Equal(t, expect, resp.Tree)
}

func Test_Server_ParsesLifecycle(t *testing.T) {
	assert := assert.New(t)
	srv := newTestServer(t)

	var first, second api.ParseModel
	do(t, srv, http.MethodPost, "/api/v1/parses", "", api.ParseRequest{Sentence: "tôi ăn"}, &first)
	do(t, srv, http.MethodPost, "/api/v1/parses", "", api.ParseRequest{Sentence: "chúng ta"}, &second)

	var all []api.ParseModel
	w := do(t, srv, http.MethodGet, "/api/v1/parses", "", nil, &all)
	require.Equal(t, http.StatusOK, w.Code)
	if assert.Len(all, 2) {
		assert.Equal(first.ID, all[0].ID)
		assert.Equal(second.ID, all[1].ID)
		assert.Equal("(Không thể phân tích câu)", all[1].Rendered)
	}

	// deleting needs a login
	w = do(t, srv, http.MethodDelete, first.URI, "", nil, nil)
	assert.Equal(http.StatusUnauthorized, w.Code)

	tok := login(t, srv)
	w = do(t, srv, http.MethodDelete, first.URI, tok, nil, nil)
	assert.Equal(http.StatusNoContent, w.Code)

	w = do(t, srv, http.MethodGet, first.URI, "", nil, nil)
	assert.Equal(http.StatusNotFound, w.Code)

	w = do(t, srv, http.MethodDelete, first.URI, tok, nil, nil)
	assert.Equal(http.StatusNotFound, w.Code)

	w = do(t, srv, http.MethodGet, "/api/v1/parses/not-a-uuid", "", nil, nil)
	assert.Equal(http.StatusNotFound, w.Code)
}

func Test_Server_Samples(t *testing.T) {
	testCases := []struct {
		name       string
		req        api.SamplesRequest
		expectCode int
	}{
		{name: "some", req: api.SamplesRequest{Count: 5, Seed: 9}, expectCode: http.StatusCreated},
		{name: "zero", req: api.SamplesRequest{Count: 0}, expectCode: http.StatusBadRequest},
		{name: "too many", req: api.SamplesRequest{Count: sts.MaxSamples + 1}, expectCode: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t)

			var resp api.SamplesResponse
			w := do(t, srv, http.MethodPost, "/api/v1/samples", "", tc.req, &resp)
			require.Equal(t, tc.expectCode, w.Code, w.Body.String())
			if tc.expectCode == http.StatusCreated {
				assert.Len(t, resp.Sentences, tc.req.Count)
			}
		})
	}
}

func Test_Server_Grammar(t *testing.T) {
	assert := assert.New(t)
	srv := newTestServer(t)

	var resp api.GrammarModel
	w := do(t, srv, http.MethodGet, "/api/v1/grammar", "", nil, &resp)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal("CÂU", resp.Start)
	assert.Equal(4, resp.NonTerminals)
	assert.Equal(4, resp.Terminals)
	assert.Equal(7, resp.Productions)

	reparsed, err := grammar.ParseString(resp.Source)
	require.NoError(t, err)
	assert.Equal(7, reparsed.ProductionCount())
}

func Test_Server_Auth(t *testing.T) {
	assert := assert.New(t)
	srv := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/v1/login", "", api.LoginRequest{Username: "admin", Password: "wrong"}, nil)
	assert.Equal(http.StatusUnauthorized, w.Code)

	w = do(t, srv, http.MethodPost, "/api/v1/login", "", api.LoginRequest{Username: "admin"}, nil)
	assert.Equal(http.StatusBadRequest, w.Code)

	tok := login(t, srv)

	var refreshed api.TokenResponse
	w = do(t, srv, http.MethodPost, "/api/v1/tokens", tok, nil, &refreshed)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(refreshed.Token)
	expires, err := time.Parse(time.RFC3339, refreshed.Expires)
	require.NoError(t, err)
	assert.WithinDuration(time.Now().Add(token.Lifetime), expires, time.Minute)

	w = do(t, srv, http.MethodPost, "/api/v1/tokens", "", nil, nil)
	assert.Equal(http.StatusUnauthorized, w.Code)

	w = do(t, srv, http.MethodDelete, "/api/v1/login", tok, nil, nil)
	assert.Equal(http.StatusNoContent, w.Code)

	// every token issued before the logout is revoked
	w = do(t, srv, http.MethodPost, "/api/v1/tokens", refreshed.Token, nil, nil)
	assert.Equal(http.StatusUnauthorized, w.Code)
}

func Test_Server_Info(t *testing.T) {
	srv := newTestServer(t)
	tok := login(t, srv)

	testCases := []struct {
		name       string
		tok        string
		expectUser string
	}{
		{name: "unauthed client", tok: ""},
		{name: "logged in", tok: tok, expectUser: "admin"},
		{name: "bad token is ignored", tok: "nope"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			var resp api.InfoModel
			w := do(t, srv, http.MethodGet, "/api/v1/info", tc.tok, nil, &resp)

			require.Equal(t, http.StatusOK, w.Code)
			assert.NotEmpty(resp.Version.Server)
			assert.NotEmpty(resp.Version.Sentree)
			assert.Equal("CÂU", resp.Parser.Start)
			assert.Equal("best-effort", resp.Parser.Mode)
			assert.Equal("arrow", resp.Parser.Style)
			assert.Equal(tc.expectUser, resp.User)
		})
	}
}

func Test_Server_Routing(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodGet, "/api/v1/nothing-here", "", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, srv, http.MethodPut, "/api/v1/grammar", "", nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func Test_Config(t *testing.T) {
	testCases := []struct {
		name      string
		cfg       Config
		expectErr bool
	}{
		{name: "defaults with password", cfg: Config{AdminPassword: "pw"}},
		{name: "no password", cfg: Config{}, expectErr: true},
		{name: "short secret", cfg: Config{AdminPassword: "pw", TokenSecret: []byte("short")}, expectErr: true},
		{name: "sqlite without dir", cfg: Config{AdminPassword: "pw", DB: config.Store{Kind: config.StoreSQLite}}, expectErr: true},
		{name: "sqlite with dir", cfg: Config{AdminPassword: "pw", DB: config.Store{Kind: config.StoreSQLite, Dir: "data"}}},
		{name: "long secret", cfg: Config{AdminPassword: "pw", TokenSecret: []byte(strings.Repeat("k", MaxSecretSize+1))}, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.FillDefaults().Validate()
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func Test_PadSecret(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expectLen int
		expectErr bool
	}{
		{name: "short secret is repeated", input: "abc", expectLen: 48},
		{name: "exact minimum kept", input: strings.Repeat("k", MinSecretSize), expectLen: MinSecretSize},
		{name: "just under minimum", input: strings.Repeat("k", 31), expectLen: 62},
		{name: "exact maximum kept", input: strings.Repeat("k", MaxSecretSize), expectLen: MaxSecretSize},
		{name: "too long", input: strings.Repeat("k", MaxSecretSize+1), expectErr: true},
		{name: "empty", input: "", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			input := []byte(tc.input)

			actual, err := PadSecret(input)
			if tc.expectErr {
				assert.Error(err)
				return
			}
			assert.NoError(err)
			assert.Len(actual, tc.expectLen)
			assert.True(strings.HasPrefix(string(actual), tc.input))
			assert.Equal(tc.input, string(input), "input must not be modified")
		})
	}
}
