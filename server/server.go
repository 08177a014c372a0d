// Package server provides an HTTP REST server that parses sentences with a
// sentree Engine and keeps the results.
//
// Routes, all under /api/v1:
//
//	POST   /login         - accepts username and password and returns a JWT.
//	DELETE /login         - logs out the client, revoking its tokens (auth).
//	POST   /tokens        - refreshes the token without credentials (auth).
//	POST   /parses        - parses a sentence and stores the result.
//	GET    /parses        - gets every stored parse.
//	GET    /parses/{id}   - gets one stored parse.
//	DELETE /parses/{id}   - deletes a stored parse (auth).
//	POST   /samples       - generates random sentences from the grammar.
//	GET    /grammar       - gets the grammar in use.
//	GET    /info          - gets versions and parse defaults.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dekarrin/sentree"
	"github.com/dekarrin/sentree/internal/version"
	"github.com/dekarrin/sentree/server/api"
	"github.com/dekarrin/sentree/server/dao"
	"github.com/dekarrin/sentree/server/sts"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("sentree.server")

// Server is an HTTP REST server that parses sentences. The zero-value of a
// Server should not be used directly; call New() to get one ready for use.
type Server struct {
	router http.Handler
	db     dao.Store
	svc    sts.Service
}

// New creates a new Server that parses with eng. The database in cfg is
// connected to and the configured admin account is created or has its
// password reset.
func New(ctx context.Context, eng *sentree.Engine, cfg Config) (*Server, error) {
	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	db, err := openStore(cfg.DB)
	if err != nil {
		return nil, err
	}

	svc := sts.Service{DB: db, Engine: eng}

	admin, err := svc.SetUser(ctx, cfg.AdminUser, cfg.AdminPassword)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("set up admin user: %w", err)
	}
	log.Debugf("admin user %q is %s", admin.Username, admin.ID)

	a := api.API{
		Backend:     svc,
		UnauthDelay: cfg.unauthDelay(),
		Secret:      cfg.TokenSecret,
	}

	return &Server{
		router: newRouter(a),
		db:     db,
		svc:    svc,
	}, nil
}

// ServeHTTP routes the request to the API.
func (s *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	s.router.ServeHTTP(w, req)
}

// ServeForever begins listening on the given address for HTTP REST client
// requests and serves them until ctx is done, at which point it shuts down
// gracefully and closes the database. If address is "", "localhost:8080" is
// used.
func (s *Server) ServeForever(ctx context.Context, address string) error {
	if address == "" {
		address = "localhost:8080"
	}

	httpSrv := &http.Server{
		Addr:              address,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Noticef("sentree server %s listening on %s", version.ServerCurrent, address)
		errCh <- httpSrv.ListenAndServe()
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		log.Noticef("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err = httpSrv.Shutdown(shutdownCtx)
	}

	if closeErr := s.Close(); closeErr != nil {
		log.Errorf("close database: %s", closeErr)
	}

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Close closes the database of the Server.
func (s *Server) Close() error {
	return s.db.Close()
}
