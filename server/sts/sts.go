// Package sts has services for interacting with the sentree server backend
// decoupled from the API that accesses it.
package sts

import (
	"github.com/dekarrin/sentree"
	"github.com/dekarrin/sentree/server/dao"
)

// Service is a service for parsing sentences on the sentree server backend. It
// performs the actions requested and makes calls to server persistence to
// preserve the backend state.
//
// The zero-value of Service is not ready to be used; assign a valid DAO store
// to DB and a loaded Engine to Engine before attempting to use it.
type Service struct {

	// DB is the persistence store of the service.
	DB dao.Store

	// Engine parses and generates sentences. It is shared between requests.
	Engine *sentree.Engine
}
