package sqlite

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/dekarrin/rezi"
	"github.com/dekarrin/sentree"
	"github.com/dekarrin/sentree/internal/parse"
	"github.com/dekarrin/sentree/internal/render"
	"github.com/dekarrin/sentree/server/dao"
	"github.com/google/uuid"
)

// Conversions between model values and the values stored in columns. Every
// convertFromDB_ function wraps dao.ErrDecodingFailure on bad input.

func convertToDB_UUID(u uuid.UUID) string {
	return u.String()
}

func convertFromDB_UUID(s string, target *uuid.UUID) error {
	u, err := uuid.Parse(s)
	if err != nil {
		return fmt.Errorf("%w: %s", dao.ErrDecodingFailure, err)
	}
	*target = u
	return nil
}

func convertToDB_Time(t time.Time) int64 {
	return t.Unix()
}

func convertFromDB_Time(i int64, target *time.Time) error {
	*target = time.Unix(i, 0)
	return nil
}

func convertToDB_Mode(m parse.Mode) string {
	return m.String()
}

func convertFromDB_Mode(s string, target *parse.Mode) error {
	m, err := parse.ParseMode(s)
	if err != nil {
		return fmt.Errorf("%w: %s", dao.ErrDecodingFailure, err)
	}
	*target = m
	return nil
}

func convertToDB_Style(st render.Style) string {
	return st.String()
}

func convertFromDB_Style(s string, target *render.Style) error {
	st, err := render.ParseStyle(s)
	if err != nil {
		return fmt.Errorf("%w: %s", dao.ErrDecodingFailure, err)
	}
	*target = st
	return nil
}

func convertToDB_Status(st sentree.Status) string {
	return st.String()
}

func convertFromDB_Status(s string, target *sentree.Status) error {
	st, err := sentree.ParseStatus(s)
	if err != nil {
		return fmt.Errorf("%w: %s", dao.ErrDecodingFailure, err)
	}
	*target = st
	return nil
}

// convertToDB_Tree encodes the tree as base64 of its REZI binary form. A nil
// tree is stored as the empty string.
func convertToDB_Tree(n *parse.Node) string {
	if n == nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(rezi.EncBinary(n))
}

func convertFromDB_Tree(s string, target **parse.Node) error {
	if s == "" {
		*target = nil
		return nil
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return fmt.Errorf("%w: %s", dao.ErrDecodingFailure, err)
	}

	n := &parse.Node{}
	if _, err := rezi.DecBinary(data, n); err != nil {
		return fmt.Errorf("%w: %s", dao.ErrDecodingFailure, err)
	}
	*target = n
	return nil
}
