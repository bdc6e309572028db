//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/cloo-solutions/lectern/internal/domain"
	"github.com/cloo-solutions/lectern/internal/server"
	"github.com/cloo-solutions/lectern/internal/storage"
	"github.com/cloo-solutions/lectern/internal/testutil"
	"github.com/cloo-solutions/lectern/internal/vectorstore"
	"github.com/jackc/pgx/v5/pgxpool"
)

const maxAudioBytes = 1 << 20

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	RustFSC      *testutil.RustFSContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	S3Client     *storage.S3Client
	Model        *fakeModel
	BinaryDir    string
	HTTPClient   *http.Client
}

// SetupE2EEnv creates a full E2E test environment with containers and server
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	s3C := testutil.NewRustFSContainer(ctx, t)

	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        s3C.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     testutil.RustFSAccessKey,
		SecretAccessKey: testutil.RustFSSecretKey,
		Bucket:          "test-audio",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}

	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	model := &fakeModel{}
	serverURL, serverCloser := startServer(t, pool, model, s3Client, nil, port)

	return &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		RustFSC:      s3C,
		Pool:         pool,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		S3Client:     s3Client,
		Model:        model,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.RustFSC != nil {
		e.RustFSC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
	if e.BinaryDir != "" {
		os.RemoveAll(e.BinaryDir)
	}
}

// Reset empties every table between scenarios
func (e *E2ETestEnv) Reset() {
	if err := testutil.TruncateAll(e.Ctx, e.Pool); err != nil {
		e.T.Fatalf("failed to truncate tables: %v", err)
	}
	e.Model.SetGeneralFails(false)
}

// UseChromemMirror restarts the API with an in-memory chromem mirror in front
// of Postgres and returns the mirror.
func (e *E2ETestEnv) UseChromemMirror() *vectorstore.ChromemStore {
	mirror, err := vectorstore.NewChromemStore("")
	if err != nil {
		e.T.Fatalf("failed to open chromem store: %v", err)
	}
	port, err := getFreePort()
	if err != nil {
		e.T.Fatalf("failed to get free port: %v", err)
	}

	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	e.ServerURL, e.ServerCloser = startServer(e.T, e.Pool, e.Model, e.S3Client, mirror, port)
	return mirror
}

// BuildBinaries builds the lectern client binary
func (e *E2ETestEnv) BuildBinaries() {
	tmpDir, err := os.MkdirTemp("", "lectern-e2e-*")
	if err != nil {
		e.T.Fatalf("failed to create temp dir: %v", err)
	}
	e.BinaryDir = tmpDir

	cmd := exec.Command("go", "build", "-o", filepath.Join(tmpDir, "lectern"), "./cmd/lectern")
	cmd.Dir = "../.."
	if out, err := cmd.CombinedOutput(); err != nil {
		e.T.Fatalf("failed to build lectern: %v\n%s", err, out)
	}
}

// RunLectern runs the lectern CLI against the test server in roomID
func (e *E2ETestEnv) RunLectern(roomID string, args ...string) (string, error) {
	workDir := e.T.TempDir()
	cmd := exec.Command(filepath.Join(e.BinaryDir, "lectern"), args...)
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(),
		"LECTERN_CONFIG="+filepath.Join(workDir, "config.json"),
		fmt.Sprintf("LECTERN_API_URL=%s", e.ServerURL),
		fmt.Sprintf("LECTERN_ROOM=%s", roomID),
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// Response is a decoded API response
type Response struct {
	StatusCode int
	Body       []byte
}

// Decode unmarshals the body into out
func (r *Response) Decode(t *testing.T, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(r.Body, out); err != nil {
		t.Fatalf("failed to decode %s: %v", r.Body, err)
	}
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path string) (*Response, error) {
	return e.doRequest(http.MethodGet, path, nil)
}

// Post performs a POST request with a JSON body
func (e *E2ETestEnv) Post(path string, body interface{}) (*Response, error) {
	return e.doRequest(http.MethodPost, path, body)
}

// CreateRoom creates a room and returns its id
func (e *E2ETestEnv) CreateRoom(name string) string {
	resp, err := e.Post("/rooms", map[string]string{"name": name})
	if err != nil {
		e.T.Fatalf("failed to create room: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		e.T.Fatalf("create room: HTTP %d: %s", resp.StatusCode, resp.Body)
	}

	var room struct {
		ID string `json:"id"`
	}
	resp.Decode(e.T, &room)
	return room.ID
}

// UploadAudio posts audio as the multipart "file" field of roomID
func (e *E2ETestEnv) UploadAudio(roomID string, audio []byte, contentType string) (*Response, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="aula.webm"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(audio); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, e.ServerURL+"/rooms/"+roomID+"/audio", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return e.send(req)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}) (*Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, e.ServerURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return e.send(req)
}

func (e *E2ETestEnv) send(req *http.Request) (*Response, error) {
	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{StatusCode: resp.StatusCode, Body: respBody}, nil
}

// startServer starts the HTTP server with all handlers
func startServer(t *testing.T, pool *pgxpool.Pool, model *fakeModel, s3Client *storage.S3Client, mirror vectorstore.Index, port int) (string, func()) {
	handler := server.NewHandler(server.Dependencies{
		Pool:                pool,
		Model:               model,
		Store:               mirror,
		Archiver:            s3Client,
		QueryTask:           domain.EmbeddingTaskRetrievalDocument,
		EmbeddingDimensions: testutil.EmbeddingDimensions,
		MaxAudioBytes:       maxAudioBytes,
		GenerationBackoff:   func(ctx context.Context, _ time.Duration) error { return ctx.Err() },
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()

	return l.Addr().(*net.TCPAddr).Port, nil
}
