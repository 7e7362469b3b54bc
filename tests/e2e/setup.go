//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"affiliate-notify/cmd/bootstrap"
	"affiliate-notify/cmd/bootstrap/components"
	"affiliate-notify/internal/infra/db"
	"affiliate-notify/internal/pkg/config"
	"affiliate-notify/internal/usecase/commands"
	"affiliate-notify/tests/common/dbtest"

	"github.com/docker/go-connections/nat"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
)

const (
	pgUser     = "test"
	pgPassword = "testpass"
	pgPort     = "5432/tcp"
)

var (
	postgresOnce      sync.Once
	postgresContainer testcontainers.Container
	postgresErr       error
)

type containerAddr struct {
	Host string
	Port nat.Port
}

// app is what a suite needs from the running fx graph.
type app struct {
	Router *gin.Engine
	Config config.Config
	Sweep  commands.SweepCommands
}

// setupEnvironment gives each test process its own database on the shared
// container and boots the application against it.
func setupEnvironment(t *testing.T) (*pgxpool.Pool, app) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	addr := startPostgres(t)
	pool, dbCfg := createDatabase(t, addr)

	built, fxApp := buildApp(t, pool, dbCfg)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := fxApp.Stop(ctx); err != nil {
			slog.Warn("failed to stop e2e app", "error", err.Error())
		}
	})
	return pool, built
}

func startPostgres(t *testing.T) containerAddr {
	t.Helper()

	postgresOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()

		postgresContainer, postgresErr = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "postgres:17",
				ExposedPorts: []string{pgPort},
				Env: map[string]string{
					"POSTGRES_USER":     pgUser,
					"POSTGRES_PASSWORD": pgPassword,
					"POSTGRES_DB":       "postgres",
				},
				Tmpfs: map[string]string{"/var/lib/postgresql/data": "rw,size=512m"},
				Cmd: []string{
					"postgres",
					"-c", "fsync=off",
					"-c", "full_page_writes=off",
					"-c", "synchronous_commit=off",
					"-c", "max_connections=200",
				},
				WaitingFor: wait.ForSQL(pgPort, "pgx", func(host string, port nat.Port) string {
					return fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable", pgUser, pgPassword, host, port.Port())
				}).WithStartupTimeout(60 * time.Second),
				Labels: map[string]string{"purpose": "affiliate-notify-e2e"},
			},
			Started: true,
		})
	})
	require.NoError(t, postgresErr, "start postgres container")

	ctx := context.Background()
	port, err := postgresContainer.MappedPort(ctx, pgPort)
	require.NoError(t, err)
	host, err := postgresContainer.Host(ctx)
	require.NoError(t, err)
	return containerAddr{Host: host, Port: port}
}

func createDatabase(t *testing.T, addr containerAddr) (*pgxpool.Pool, config.DBConfig) {
	t.Helper()

	dbName := "e2e_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	adminDSN := fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable", pgUser, pgPassword, addr.Host, addr.Port.Port())

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	admin, err := pgxpool.New(ctx, adminDSN)
	require.NoError(t, err, "connect as admin")
	defer admin.Close()

	// CREATE DATABASE races with template1 locks when suites start together.
	var createErr error
	for attempt := range 5 {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * 500 * time.Millisecond)
		}
		if _, createErr = admin.Exec(ctx, "CREATE DATABASE "+dbName); createErr == nil {
			break
		}
		slog.Warn("retrying database creation", "attempt", attempt+1, "error", createErr.Error())
	}
	require.NoError(t, createErr, "create test database")

	t.Cleanup(func() {
		dropCtx, dropCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer dropCancel()
		dropper, err := pgxpool.New(dropCtx, adminDSN)
		if err != nil {
			slog.Warn("failed to connect for cleanup", "database", dbName, "error", err.Error())
			return
		}
		defer dropper.Close()
		if _, err := dropper.Exec(dropCtx, "DROP DATABASE IF EXISTS "+dbName+" WITH (FORCE)"); err != nil {
			slog.Warn("failed to drop test database", "database", dbName, "error", err.Error())
		}
	})

	dbCfg := config.DBConfig{
		Host:     addr.Host,
		Port:     addr.Port.Port(),
		User:     pgUser,
		Password: pgPassword,
		DBName:   dbName,
		SSLMode:  "disable",
		TimeZone: "UTC",
		MaxConns: 10,
	}
	pool, _, err := db.Connect(dbCfg)
	require.NoError(t, err, "connect to test database")
	t.Cleanup(pool.Close)

	require.NoError(t, applySchema(ctx, pool), "apply schema")
	return pool, dbCfg
}

// applySchema runs the migration files directly; the atlas CLI is not
// available inside test containers.
func applySchema(ctx context.Context, pool *pgxpool.Pool) error {
	files, err := findMigrations()
	if err != nil {
		return err
	}
	for _, f := range files {
		raw, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		if _, err := pool.Exec(ctx, string(raw)); err != nil {
			return fmt.Errorf("apply %s: %w", f, err)
		}
	}
	return nil
}

// findMigrations walks up from the package directory go test runs in.
func findMigrations() ([]string, error) {
	dir := "migrations"
	for range 4 {
		files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
		if err == nil && len(files) > 0 {
			return files, nil
		}
		dir = filepath.Join("..", dir)
	}
	return nil, fmt.Errorf("migrations directory not found")
}

func buildApp(t *testing.T, pool *pgxpool.Pool, dbCfg config.DBConfig) (app, *fx.App) {
	t.Helper()

	var built app
	cfg := config.NewTestConfig()
	cfg.DB = dbCfg

	fxApp := fx.New(
		fx.Supply(cfg, pool),
		fx.Provide(func() *gin.Engine { return gin.New() }),
		bootstrap.LoggerModule,
		bootstrap.JWTModule,
		components.PersistenceModule,
		components.MessagingModule,
		components.UseCaseModule,
		components.HandlerModule,
		fx.Populate(&built.Router, &built.Config, &built.Sweep),
		fx.NopLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, fxApp.Start(ctx), "start fx app")
	require.NotNil(t, built.Router)
	return built, fxApp
}

// SharedSuite boots the application once per suite and truncates every
// table before each subtest.
type SharedSuite struct {
	suite.Suite
	Router *gin.Engine
	DB     *pgxpool.Pool
	Config config.Config
	Sweep  commands.SweepCommands
}

func (s *SharedSuite) SetupSuite() {
	pool, built := setupEnvironment(s.T())
	s.DB = pool
	s.Router = built.Router
	s.Config = built.Config
	s.Sweep = built.Sweep
}

func (s *SharedSuite) SetupSubTest() {
	require.NoError(s.T(), dbtest.ResetDB(s.DB), "reset database")
}
