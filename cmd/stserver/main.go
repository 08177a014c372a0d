/*
Stserver starts a sentree parse server and begins listening for new
connections.

Usage:

	stserver [flags]
	stserver [flags] -l [[ADDRESS]:PORT]

Once started, the server will listen for HTTP requests and respond to them
using REST protocol. By default, it will listen on localhost:8080. This can be
changed with the --listen/-l flag (or config via environment var). The flag
argument must be either a full address with port, such as "192.168.0.2:6001",
or just the port preceeded by a colon, such as ":6001".

If a JWT token secret is not given, one will be randomly generated. As a
consequence, in this mode of operation all tokens are rendered invalid as soon
as the server shuts down. This is suitable for testing, but a secret must be
given via either CLI flags or environment variable if running in production.

If no admin password is set in the config file, one is generated and logged at
startup.

The flags are:

	--version
		Give the current version of the sentree server and then exit.

	-c, --config FILE
		Read settings from the given TOML file. Defaults to "sentree.toml" in
		the current working directory if it exists. The [grammar], [parse],
		[output], and [server] tables are used.

	-g, --grammar FILE
		Use the given grammar file instead of the one in the config.

	-l, --listen LISTEN_ADDRESS
		Listen on the given address. Must be in BIND_ADDRESS:PORT or :PORT
		format. If not given, will default to the value of environment variable
		SENTREE_LISTEN_ADDRESS, and if that is not given, to the server.listen
		config value.

	-s, --secret TOKEN_SECRET
		Use the provided secret for signing JWT tokens. If there are less than
		32 bytes in the secret, it will be repeated until it is. The maximum
		size is 64 bytes. If not given, will default to the value of environment
		variable SENTREE_TOKEN_SECRET, and then to server.token_secret in the
		config. If no secret is specified, a random secret is generated.

	--db DRIVER[:PARAMS]
		Use the given DB connection string. DRIVER must be one of the following:
		inmem, sqlite. inmem has no further params. sqlite needs the path to the
		data directory such as sqlite:path/to/db_dir. If not given, will default
		to the value of environment variable SENTREE_DATABASE, and then to the
		server.db config value.

	-v, --verbose
		Log more. Can be given multiple times.
*/
package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/dekarrin/sentree"
	"github.com/dekarrin/sentree/internal/config"
	"github.com/dekarrin/sentree/internal/version"
	"github.com/dekarrin/sentree/server"
	"github.com/spf13/pflag"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

const (
	EnvListen = "SENTREE_LISTEN_ADDRESS"
	EnvSecret = "SENTREE_TOKEN_SECRET"
	EnvDB     = "SENTREE_DATABASE"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitRunError indicates the server stopped because of an error.
	ExitRunError

	// ExitInitError indicates the server could not be started.
	ExitInitError
)

var (
	flagVersion = pflag.Bool("version", false, "Give the current version of the sentree server and then exit.")
	flagConfig  = pflag.StringP("config", "c", config.DefaultFile, "Read settings from the given TOML file.")
	flagGrammar = pflag.StringP("grammar", "g", "", "Use the given grammar file.")
	flagListen  = pflag.StringP("listen", "l", "", "Listen on the given address.")
	flagSecret  = pflag.StringP("secret", "s", "", "Use the given secret for token generation.")
	flagDB      = pflag.String("db", "", "Use the given DB connection string.")
	flagVerbose = pflag.CountP("verbose", "v", "Log more; repeat for even more.")
)

var log = commonlog.GetLogger("sentree.stserver")

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s (sentree v%s)\n", version.ServerCurrent, version.Current)
		return
	}

	if len(pflag.Args()) > 0 {
		fmt.Fprintf(os.Stderr, "Too many arguments\nDo -h for help.\n")
		os.Exit(ExitInitError)
	}

	// notice level and above are shown by default
	commonlog.Configure(*flagVerbose, nil)

	var cfg config.Config
	var err error
	if pflag.Lookup("config").Changed {
		cfg, err = config.Load(*flagConfig)
	} else {
		cfg, err = config.LoadDefault(config.DefaultFile)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %s\n", err.Error())
		os.Exit(ExitInitError)
	}
	if *flagGrammar != "" {
		cfg.Grammar.File = *flagGrammar
	}
	cfg = cfg.FillDefaults()

	listenAddr := settingFromFlagOrEnv("listen", *flagListen, EnvListen, cfg.Server.Listen)
	if !strings.Contains(listenAddr, ":") {
		fmt.Fprintf(os.Stderr, "Listen address is not in ADDRESS:PORT or :PORT format.\nDo -h for help.\n")
		os.Exit(ExitInitError)
	}

	srvCfg, err := serverConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\nDo -h for help.\n", err.Error())
		os.Exit(ExitInitError)
	}

	eng, err := sentree.New(cfg, sentree.WithLogger(commonlog.GetLogger("sentree")))
	if err != nil {
		log.Criticalf("could not start server: %s", err.Error())
		os.Exit(ExitInitError)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	srv, err := server.New(ctx, eng, srvCfg)
	if err != nil {
		log.Criticalf("could not start server: %s", err.Error())
		os.Exit(ExitInitError)
	}
	log.Debugf("server initialized")

	if err := srv.ServeForever(ctx, listenAddr); err != nil {
		log.Criticalf("%s", err.Error())
		os.Exit(ExitRunError)
	}
	os.Exit(ExitSuccess)
}

// settingFromFlagOrEnv gives the flag value if the flag was set, else the
// environment variable if it is set, else fallback.
func settingFromFlagOrEnv(flagName, flagVal, envVar, fallback string) string {
	if pflag.Lookup(flagName).Changed {
		return flagVal
	}
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return fallback
}

// serverConfig assembles the server config from the loaded file config and
// any flags and environment variables that override it.
func serverConfig(cfg config.Config) (server.Config, error) {
	var srvCfg server.Config

	srvCfg.DB = cfg.Server.DB
	if dbSpec := settingFromFlagOrEnv("db", *flagDB, EnvDB, ""); dbSpec != "" {
		st, err := config.ParseStore(dbSpec)
		if err != nil {
			return srvCfg, fmt.Errorf("database: %w", err)
		}
		srvCfg.DB = st
	}

	tokSecStr := settingFromFlagOrEnv("secret", *flagSecret, EnvSecret, cfg.Server.TokenSecret)
	if tokSecStr != "" {
		tokSecret, err := server.PadSecret([]byte(tokSecStr))
		if err != nil {
			return srvCfg, err
		}
		srvCfg.TokenSecret = tokSecret
	} else {
		// use all 64 possible bytes if doing a generated secret
		srvCfg.TokenSecret = make([]byte, server.MaxSecretSize)
		if _, err := rand.Read(srvCfg.TokenSecret); err != nil {
			return srvCfg, fmt.Errorf("could not generate token secret: %w", err)
		}

		log.Warningf("using generated token secret; all tokens issued will become invalid at shutdown")
	}

	srvCfg.AdminUser = cfg.Server.AdminUser
	srvCfg.AdminPassword = cfg.Server.AdminPassword
	if srvCfg.AdminPassword == "" {
		pwBytes := make([]byte, 12)
		if _, err := rand.Read(pwBytes); err != nil {
			return srvCfg, fmt.Errorf("could not generate admin password: %w", err)
		}
		srvCfg.AdminPassword = base64.RawURLEncoding.EncodeToString(pwBytes)
		log.Noticef("admin user %q has generated password %q", srvCfg.AdminUser, srvCfg.AdminPassword)
	}

	return srvCfg, nil
}
