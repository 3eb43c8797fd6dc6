package e2e_test

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/tourcompanion/internal/devserver"
	"github.com/mcoot/tourcompanion/internal/devserver/accounts"
	"github.com/mcoot/tourcompanion/internal/factory"
	"github.com/mcoot/tourcompanion/internal/testutil"
)

const (
	seedIdentifier = "walker@example.com"
	seedSecret     = "cobblestones"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath      string
	serverURL       string
	credentialsFile string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "tourcompanion-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/tourcompanion")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath:      binaryPath,
		serverURL:       serverURL,
		credentialsFile: filepath.Join(t.TempDir(), "credentials.json"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--storage", "file",
		"--credentials-file", r.credentialsFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	// Keep the developer's own settings out of the run
	cmd.Env = append(os.Environ(), "TOURCOMPANION_CONFIG=", "TOURCOMPANION_SECRET=")
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		return stdout.String() + stderr.String(), err
	}
	return stdout.String(), nil
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer runs the dev backend on a free port
type testServer struct {
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	accountsCfg := accounts.DefaultConfig()
	accountsCfg.BcryptCost = bcrypt.MinCost

	dev, err := factory.NewDevServer(context.Background(), factory.DevServerConfig{
		Logger:   testutil.NopLogger(),
		Accounts: accountsCfg,
		SeedUsers: []factory.SeedUser{
			{Identifier: seedIdentifier, Secret: seedSecret, DisplayName: "Walker", Points: 25},
		},
	})
	require.NoError(t, err)

	serverConfig := devserver.DefaultServerConfig()
	serverConfig.Port = 0
	server := devserver.NewServer(dev.Handler, serverConfig, testutil.NopLogger())
	require.NoError(t, server.Listen())

	go func() {
		if err := server.Start(); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + server.Addr()
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		addr: serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
			_ = dev.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type statusResponse struct {
	Status string `json:"status"`
	User   *struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
		IsGuest     bool   `json:"is_guest"`
	} `json:"user"`
}

type pointsResponse struct {
	Total int `json:"total"`
}

type chatListResponse struct {
	Sessions []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"sessions"`
}

type chatDetailResponse struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

type routeResponse struct {
	Location string `json:"location"`
	Action   string `json:"action"`
	Target   string `json:"target"`
}

type planResponse struct {
	Steps []struct {
		Op     string `json:"op"`
		Result string `json:"result"`
	} `json:"steps"`
	Quests []struct {
		ID int `json:"id"`
	} `json:"quests"`
	Capacity int `json:"capacity"`
}

type scanResponse struct {
	Outcome  string `json:"outcome"`
	Code     string `json:"code"`
	Slot     *int   `json:"slot"`
	Progress struct {
		Collected []int `json:"collected"`
		Complete  bool  `json:"complete"`
	} `json:"progress"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// decodeStream reads a sequence of JSON documents
func decodeStream[T any](t *testing.T, output string) []T {
	t.Helper()

	var values []T
	dec := json.NewDecoder(strings.NewReader(output))
	for dec.More() {
		var v T
		require.NoError(t, dec.Decode(&v), "output: %s", output)
		values = append(values, v)
	}
	return values
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_SessionSurvivesBetweenRuns(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("status")
	require.NoError(t, err, "output: %s", output)
	var status statusResponse
	require.NoError(t, json.Unmarshal([]byte(output), &status))
	assert.Equal(t, "unauthenticated", status.Status)

	output, err = cli.run("login", "--identifier", seedIdentifier, "--secret", seedSecret)
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &status))
	assert.Equal(t, "authenticated", status.Status)
	require.NotNil(t, status.User)
	assert.Equal(t, "Walker", status.User.DisplayName)

	// A fresh process restores the stored session
	output, err = cli.run("status")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &status))
	assert.Equal(t, "authenticated", status.Status)

	output, err = cli.run("logout")
	require.NoError(t, err, "output: %s", output)
	var msg messageResponse
	require.NoError(t, json.Unmarshal([]byte(output), &msg))
	assert.Equal(t, "Logged out", msg.Message)

	output, err = cli.run("status")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &status))
	assert.Equal(t, "unauthenticated", status.Status)
}

func TestCLI_WrongSecretFails(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("login", "--identifier", seedIdentifier, "--secret", "nope")
	require.Error(t, err)
	assert.Contains(t, output, "authentication failed")

	_, statErr := os.Stat(cli.credentialsFile)
	assert.True(t, os.IsNotExist(statErr), "no credentials should be written")
}

func TestCLI_GuestPointsAndChat(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("guest")
	require.NoError(t, err, "output: %s", output)
	var status statusResponse
	require.NoError(t, json.Unmarshal([]byte(output), &status))
	assert.Equal(t, "guest", status.Status)
	require.NotNil(t, status.User)
	assert.True(t, status.User.IsGuest)

	output, err = cli.run("points")
	require.NoError(t, err, "output: %s", output)
	var points pointsResponse
	require.NoError(t, json.Unmarshal([]byte(output), &points))
	assert.Equal(t, 50, points.Total)

	output, err = cli.run("chat", "list")
	require.NoError(t, err, "output: %s", output)
	var list chatListResponse
	require.NoError(t, json.Unmarshal([]byte(output), &list))
	require.Len(t, list.Sessions, 1)

	output, err = cli.run("chat", "show", list.Sessions[0].ID)
	require.NoError(t, err, "output: %s", output)
	var detail chatDetailResponse
	require.NoError(t, json.Unmarshal([]byte(output), &detail))
	assert.Equal(t, list.Sessions[0].Title, detail.Title)
	assert.Len(t, detail.Messages, 2)
}

func TestCLI_SignedOutRemoteCallsFail(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("points")
	require.Error(t, err)
	assert.Contains(t, output, "UNAUTHORIZED")
}

func TestCLI_RouteGuard(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("route", "/tabs/map", "/login")
	require.NoError(t, err, "output: %s", output)
	var routes []routeResponse
	require.NoError(t, json.Unmarshal([]byte(output), &routes))
	require.Len(t, routes, 2)
	assert.Equal(t, "redirect_to_login", routes[0].Action)
	assert.Equal(t, "/login", routes[0].Target)
	assert.Equal(t, "none", routes[1].Action)

	_, err = cli.run("guest")
	require.NoError(t, err)

	output, err = cli.run("route", "/login")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &routes))
	require.Len(t, routes, 1)
	assert.Equal(t, "redirect_to_home", routes[0].Action)
}

func TestCLI_QuestPlan(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("--planner-capacity", "2", "quests", "plan", "--add", "3,7,3,9", "--remove", "7")
	require.NoError(t, err, "output: %s", output)

	var plan planResponse
	require.NoError(t, json.Unmarshal([]byte(output), &plan))
	assert.Equal(t, 2, plan.Capacity)
	require.Len(t, plan.Steps, 5)
	assert.Equal(t, "added", plan.Steps[0].Result)
	assert.Equal(t, "added", plan.Steps[1].Result)
	assert.Equal(t, "already_selected", plan.Steps[2].Result)
	assert.Equal(t, "capacity_exceeded", plan.Steps[3].Result)
	require.Len(t, plan.Quests, 1)
	assert.Equal(t, 3, plan.Quests[0].ID)
}

func TestCLI_StampScan(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("--stamp-cooldown", "0", "stamps", "scan", "--auto-claim",
		"quest-stamp-001", "https://www.QUEST-STAMP-002", "NOT-A-STAMP", "QUEST-STAMP-001", "QUEST-STAMP-003")
	require.NoError(t, err, "output: %s", output)

	scans := decodeStream[scanResponse](t, output)
	outcomes := make([]string, 0, len(scans))
	for _, s := range scans {
		outcomes = append(outcomes, s.Outcome)
	}
	assert.Equal(t, []string{
		"accepted", "claimed",
		"accepted", "claimed",
		"invalid_code",
		"already_scanned",
		"accepted", "claimed",
	}, outcomes)

	last := scans[len(scans)-1]
	assert.True(t, last.Progress.Complete)
	assert.Equal(t, []int{0, 1, 2}, last.Progress.Collected)
}
