package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/zaloga/internal/api"
	"github.com/erazemk/zaloga/internal/archive"
	"github.com/erazemk/zaloga/internal/config"
	"github.com/erazemk/zaloga/internal/db"
	"github.com/erazemk/zaloga/internal/ledger"
	"github.com/erazemk/zaloga/internal/logger"
	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/seed"
	"github.com/erazemk/zaloga/internal/store"
)

func main() {
	fs := flag.NewFlagSet("zaloga", flag.ContinueOnError)

	var configPath string
	fs.StringVar(&configPath, "config", "", "")
	fs.StringVar(&configPath, "c", "", "")

	var envFile string
	fs.StringVar(&envFile, "env-file", ".env", "")
	fs.StringVar(&envFile, "e", ".env", "")

	var driver string
	fs.StringVar(&driver, "driver", "", "")

	var dsn string
	fs.StringVar(&dsn, "db", "", "")
	fs.StringVar(&dsn, "d", "", "")

	var addr string
	fs.StringVar(&addr, "addr", "", "")
	fs.StringVar(&addr, "a", "", "")

	var adminUser string
	fs.StringVar(&adminUser, "user", "", "")
	fs.StringVar(&adminUser, "u", "", "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	var seedData bool
	fs.BoolVar(&seedData, "seed", false, "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: zaloga [flags]

Flags:
  -c, -config <path>      YAML config file (default: none)
  -e, -env-file <path>    .env file loaded into the environment (default: .env)
  -driver <name>          database driver: sqlite or postgres (default: sqlite)
  -d, -db <dsn>           database path or connection string (default: zaloga.sqlite3)
  -a, -addr <host:port>   listen address (default: :8080)
  -u, -user <name>        admin username on first run (default: Admin)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -seed                   load demonstration data into an empty ledger
  -h, -help               show this help and exit

Every setting can also be given as a ZALOGA_* environment variable,
for example ZALOGA_DATABASE_DSN or ZALOGA_ARCHIVE_BUCKET.
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Flags given on the command line win over every other source.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "driver":
			cfg.Database.Driver = driver
		case "db", "d":
			cfg.Database.DSN = dsn
		case "addr", "a":
			cfg.Addr = addr
		case "user", "u":
			cfg.Admin.Username = adminUser
		case "log", "l":
			cfg.Log = logPath
		case "seed":
			cfg.Seed = seedData
		}
	})

	closeLog, err := logger.Setup(cfg.Env, cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(cfg); err != nil {
		slog.Error("fatal", "error", err)
		closeLog()
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx := context.Background()

	database, err := db.Open(db.Dialect(cfg.Database.Driver), cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(ctx, database); err != nil {
		return err
	}
	slog.Info("database ready", "driver", database.Dialect)

	if err := ensureAdmin(ctx, database, cfg.Admin.Username); err != nil {
		return err
	}

	// Load JWT secret from database (auto-generated on first run).
	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return fmt.Errorf("getting JWT secret: %w", err)
	}

	l, err := ledger.Open(ctx, store.NewRecords(database), ledger.Options{Logger: slog.Default()})
	if err != nil {
		return err
	}
	defer l.Close()

	// The ledger logs every sync failure; warn once per table on top.
	go func() {
		seen := make(map[string]bool)
		for e := range l.SyncErrors() {
			if !seen[e.Collection] {
				seen[e.Collection] = true
				slog.Warn("ledger and database have diverged", "table", e.Collection, "error", e.Err)
			}
		}
	}()

	if cfg.Seed {
		added, err := seed.Apply(l)
		if err != nil {
			return fmt.Errorf("seeding ledger: %w", err)
		}
		if added {
			slog.Info("demonstration data loaded")
		}
	}

	routerCfg := api.Config{
		DB:        database,
		Ledger:    l,
		JWTSecret: jwtSecret,
		Metrics:   cfg.Metrics.Enabled,
	}
	if cfg.ArchiveEnabled() {
		objects, err := archive.New(ctx, archive.Config{
			Bucket:          cfg.Archive.Bucket,
			Region:          cfg.Archive.Region,
			Endpoint:        cfg.Archive.Endpoint,
			AccessKeyID:     cfg.Archive.AccessKeyID,
			SecretAccessKey: cfg.Archive.SecretAccessKey,
			PathStyle:       cfg.Archive.PathStyle,
		})
		if err != nil {
			return err
		}
		routerCfg.Archiver = archive.NewArchiver(objects, cfg.Archive.Prefix)
		slog.Info("archive enabled", "bucket", cfg.Archive.Bucket, "prefix", cfg.Archive.Prefix)
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.LoggingMiddleware(api.NewRouter(routerCfg)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}

	slog.Info("server stopped, draining ledger and closing database")
	return nil
}

// ensureAdmin creates the first admin account when there are no users and
// prints its generated password.
func ensureAdmin(ctx context.Context, database *db.DB, username string) error {
	n, err := store.CountUsers(ctx, database)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	password, err := generatePassword(16)
	if err != nil {
		return fmt.Errorf("generating password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if _, err := store.CreateUser(ctx, database, username, string(hash), model.RoleAdmin, ""); err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	printInitResult(username, password)
	return nil
}

// printInitResult prints the generated admin credentials to stdout.
func printInitResult(username, password string) {
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("The admin can change it after logging in.")
	fmt.Println()
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
