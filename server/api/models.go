package api

// note that these are *not* the DAO models; those are distinct and closer to
// the DB format they are in. Rather these are the models that are received from
// and sent to the client.

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse carries a newly issued token. Expires is in RFC 3339 format.
type TokenResponse struct {
	Token   string `json:"token"`
	UserID  string `json:"user_id"`
	Expires string `json:"expires"`
}

// InfoModel describes the running server and the defaults it parses with.
// User is set only for a logged-in client.
type InfoModel struct {
	Version struct {
		Server  string `json:"server"`
		Sentree string `json:"sentree"`
	} `json:"version"`

	Parser struct {
		Start string `json:"start"`
		Mode  string `json:"mode"`
		Style string `json:"style"`
	} `json:"parser"`

	User string `json:"user,omitempty"`
}

// ParseRequest asks for a sentence to be parsed. Mode and Style default to the
// server's configured values when empty.
type ParseRequest struct {
	Sentence string `json:"sentence"`
	Mode     string `json:"mode,omitempty"`
	Style    string `json:"style,omitempty"`
}

type ParseModel struct {
	URI      string     `json:"uri"`
	ID       string     `json:"id"`
	Sentence string     `json:"sentence"`
	Mode     string     `json:"mode"`
	Style    string     `json:"style"`
	Status   string     `json:"status"`
	End      int        `json:"end"`
	Rendered string     `json:"rendered"`
	Tree     *TreeModel `json:"tree,omitempty"`
	Created  string     `json:"created"`
}

type TreeModel struct {
	Label    string      `json:"label"`
	Terminal bool        `json:"terminal,omitempty"`
	Children []TreeModel `json:"children,omitempty"`
}

type SamplesRequest struct {
	Count int   `json:"count"`
	Seed  int64 `json:"seed,omitempty"`
}

type SamplesResponse struct {
	Sentences []string `json:"sentences"`
}

type GrammarModel struct {
	Start        string `json:"start"`
	NonTerminals int    `json:"non_terminals"`
	Terminals    int    `json:"terminals"`
	Productions  int    `json:"productions"`
	Source       string `json:"source"`
}
