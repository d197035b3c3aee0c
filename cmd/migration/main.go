// Command migration applies the roster-engine schema in db/migrations.
//
//	DB_URL=postgres://... migration up
//	DB_URL=postgres://... migration down 1
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/riskibarqy/roster-engine/internal/platform/logging"
	"github.com/riskibarqy/roster-engine/internal/platform/pgdsn"
)

var migrationDirs = []string{"./db/migrations", "/app/db/migrations"}

type command struct {
	name string
	arg  string
}

func main() {
	logger := logging.NewJSON(logging.LevelInfo).With("service", "roster-engine-migration")
	defer func() { _ = logger.Sync() }()

	cmd, err := parseCommand(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		usage()
		os.Exit(2)
	}
	if err := run(cmd, logger); err != nil {
		logger.Error("migration failed", "command", cmd.name, "error", err)
		os.Exit(1)
	}
}

func parseCommand(args []string) (command, error) {
	if len(args) == 0 {
		return command{}, errors.New("missing command")
	}
	cmd := command{name: strings.ToLower(strings.TrimSpace(args[0]))}
	if len(args) > 1 {
		cmd.arg = strings.TrimSpace(args[1])
	}
	switch cmd.name {
	case "up", "version":
	case "down":
		if cmd.arg == "" {
			cmd.arg = "1"
		}
	case "force", "goto":
		if cmd.arg == "" {
			return command{}, errors.Newf("%s needs a version", cmd.name)
		}
	default:
		return command{}, errors.Newf("unknown command %q", cmd.name)
	}
	return cmd, nil
}

func run(cmd command, logger *logging.Logger) error {
	dsn := strings.TrimSpace(os.Getenv("DB_URL"))
	if dsn == "" {
		return errors.New("DB_URL is required")
	}
	disableBinary, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv("DB_DISABLE_PREPARED_BINARY_RESULT")))
	dsn = pgdsn.Normalize(dsn, disableBinary)

	dir, err := migrationsDir(os.Getenv("MIGRATIONS_DIR"))
	if err != nil {
		return err
	}
	source := "file://" + filepath.ToSlash(dir)
	m, err := migrate.New(source, dsn)
	if err != nil {
		return errors.Wrap(err, "open migrator")
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			logger.Warn("close migrator", "source_error", srcErr, "db_error", dbErr)
		}
	}()

	log := logger.With("command", cmd.name, "source", source, "database", pgdsn.DatabaseName(dsn))
	switch cmd.name {
	case "up":
		return settle(m.Up(), log, "schema up to date")
	case "down":
		steps, err := strconv.Atoi(cmd.arg)
		if err != nil || steps <= 0 {
			return errors.Newf("down steps must be a positive integer, got %q", cmd.arg)
		}
		return settle(m.Steps(-steps), log.With("steps", steps), "rolled back")
	case "goto":
		target, err := strconv.ParseUint(cmd.arg, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "target version %q", cmd.arg)
		}
		return settle(m.Migrate(uint(target)), log.With("target", target), "migrated")
	case "force":
		version, err := strconv.Atoi(cmd.arg)
		if err != nil || version < -1 {
			return errors.Newf("force version must be an integer >= -1, got %q", cmd.arg)
		}
		if err := m.Force(version); err != nil {
			return errors.Wrapf(err, "force version %d", version)
		}
		log.Info("forced version", "version", version)
		return nil
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Info("no migrations applied")
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "read version")
		}
		log.Info("current version", "version", version, "dirty", dirty)
		return nil
	}
	return nil
}

// settle treats ErrNoChange as success.
func settle(err error, logger *logging.Logger, done string) error {
	switch {
	case err == nil:
		logger.Info(done)
		return nil
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("no migration changes")
		return nil
	default:
		return err
	}
}

func migrationsDir(override string) (string, error) {
	candidates := migrationDirs
	if override = strings.TrimSpace(override); override != "" {
		candidates = append([]string{override}, candidates...)
	}
	for _, c := range candidates {
		abs, err := filepath.Abs(c)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return abs, nil
		}
	}
	return "", errors.Newf("no migrations directory among %v", candidates)
}

func usage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s <up|down [n]|version|force <v>|goto <v>>\n", name)
}
