// Command authd runs the Bookwhim credential-lifecycle service: account
// registration, login, activation, and password resets over a JSON API
// backed by SQLite.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	flag "github.com/spf13/pflag"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/bookwhim/auth"
	"github.com/bookwhim/auth/middleware/sessionware"
)

type serverConfig struct {
	Address string            `koanf:"address"`
	DSN     string            `koanf:"dsn"`
	Debug   bool              `koanf:"debug"`
	Auth    auth.StaticConfig `koanf:"auth"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.Auth.SigningKey == "" {
		return fmt.Errorf("auth.signing_key is required")
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer sqldb.Close()

	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	ctx := context.Background()
	if _, err := db.NewCreateTable().
		Model((*auth.Account)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create accounts table: %w", err)
	}

	store := auth.NewAccountsRepository(db)

	mailer := &auth.LogMailer{BaseURL: cfg.Auth.BaseURL}
	dispatcher := auth.NewDispatcher(mailer, nil, 0)
	defer dispatcher.Close()

	service := auth.NewService(store, &cfg.Auth,
		auth.WithMailDispatcher(dispatcher),
		auth.WithActivitySink(auth.LoggerActivitySink{}),
	)

	protect := sessionware.New(sessionware.Config{
		Authenticator: auth.NewSessionTokenAuthenticator(store, service.Sessions()),
		CookieName:    cfg.Auth.GetCookieName(),
	})

	controller := auth.NewController(service,
		auth.WithControllerProtect(protect),
		auth.WithControllerDebug(cfg.Debug),
	)

	app := fiber.New(fiber.Config{
		AppName:               "authd",
		DisableStartupMessage: !cfg.Debug,
	})
	auth.RegisterRoutes(app, controller)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.Address)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Printf("received %s, shutting down", sig)
		return app.Shutdown()
	}
}

func loadConfig(args []string) (*serverConfig, error) {
	f := flag.NewFlagSet("authd", flag.ContinueOnError)
	f.String("config", "", "path to yaml config file")
	f.String("address", ":3001", "listen address")
	f.String("dsn", "file:bookwhim.db?cache=shared&mode=rwc", "database DSN")
	f.Bool("debug", false, "enable debug output")
	if err := f.Parse(args); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if path, _ := f.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return nil, err
	}

	cfg := &serverConfig{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
