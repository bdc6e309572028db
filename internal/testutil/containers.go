// Package testutil starts the backing services integration and e2e tests run
// against: Postgres with pgvector, and RustFS as the S3 audio archive.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cloo-solutions/lectern/internal/database"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresImage = "pgvector/pgvector:0.8.1-pg18"
	rustfsImage   = "rustfs/rustfs:latest"

	dbCredential = "lectern"

	// RustFSAccessKey and RustFSSecretKey are the credentials of the RustFS container.
	RustFSAccessKey = "rustfsadmin"
	RustFSSecretKey = "rustfsadmin"
)

// Container is a started test container and the address it is reachable on.
type Container struct {
	Container testcontainers.Container
	Host      string
	Port      string
}

// Terminate stops and removes the container
func (c *Container) Terminate(ctx context.Context) error {
	return testcontainers.TerminateContainer(c.Container)
}

// PostgresContainer is a pgvector-enabled Postgres
type PostgresContainer struct {
	*Container
}

// RustFSContainer is an S3-compatible object store
type RustFSContainer struct {
	*Container
}

func startContainer(ctx context.Context, t *testing.T, req testcontainers.ContainerRequest, port string) *Container {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start %s: %v", req.Image, err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}

	mapped, err := container.MappedPort(ctx, port)
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	return &Container{Container: container, Host: host, Port: mapped.Port()}
}

// NewPostgresContainer starts Postgres with the pgvector extension available
func NewPostgresContainer(ctx context.Context, t *testing.T) *PostgresContainer {
	req := testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     dbCredential,
			"POSTGRES_PASSWORD": dbCredential,
			"POSTGRES_DB":       dbCredential,
		},
		// Postgres logs readiness twice: once for the init run, once for real.
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		).WithStartupTimeout(60 * time.Second),
	}

	return &PostgresContainer{startContainer(ctx, t, req, "5432")}
}

// ConnectionString returns the PostgreSQL connection string
func (pc *PostgresContainer) ConnectionString() string {
	return fmt.Sprintf("postgres://%[1]s:%[1]s@%[2]s:%[3]s/%[1]s?sslmode=disable", dbCredential, pc.Host, pc.Port)
}

// NewRustFSContainer starts RustFS with RustFSAccessKey/RustFSSecretKey
func NewRustFSContainer(ctx context.Context, t *testing.T) *RustFSContainer {
	req := testcontainers.ContainerRequest{
		Image:        rustfsImage,
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"RUSTFS_ACCESS_KEY": RustFSAccessKey,
			"RUSTFS_SECRET_KEY": RustFSSecretKey,
		},
		WaitingFor: wait.ForListeningPort("9000/tcp").WithStartupTimeout(30 * time.Second),
	}

	return &RustFSContainer{startContainer(ctx, t, req, "9000")}
}

// Endpoint returns the RustFS endpoint URL
func (rc *RustFSContainer) Endpoint() string {
	return fmt.Sprintf("http://%s:%s", rc.Host, rc.Port)
}

// NewTestPool migrates the database with the files in migrationsDir and
// returns a pool on it. The pool is closed when the test ends.
func NewTestPool(ctx context.Context, t *testing.T, pc *PostgresContainer, migrationsDir string) *pgxpool.Pool {
	t.Helper()

	if err := RunMigrations(pc.ConnectionString(), migrationsDir); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	var pool *pgxpool.Pool
	var err error
	for i := 0; i < 5; i++ {
		pool, err = database.NewPool(ctx, database.Config{URL: pc.ConnectionString(), MaxConns: 5})
		if err == nil {
			break
		}
		time.Sleep(time.Duration(i+1) * 500 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("failed to create pool after retries: %v", err)
	}
	t.Cleanup(pool.Close)

	return pool
}

// RunMigrations applies every up migration in migrationsDir
func RunMigrations(databaseURL, migrationsDir string) error {
	source, err := database.MigrationsSource(migrationsDir)
	if err != nil {
		return err
	}

	mg, err := database.NewMigrator(databaseURL, source)
	if err != nil {
		return err
	}
	defer mg.Close()

	_, err = mg.Up()
	return err
}

// TruncateAll empties every table, children first
func TruncateAll(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, "TRUNCATE TABLE questions, audio_chunks, rooms CASCADE")
	if err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	return nil
}
