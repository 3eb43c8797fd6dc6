package factory

import (
	"context"
	"net/http/httptest"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/tourcompanion/internal/dependencies/mocks"
	"github.com/mcoot/tourcompanion/internal/devserver/accounts"
	"github.com/mcoot/tourcompanion/internal/storage/memory"
)

// Credentials of the account every TestApp backend is seeded with
const (
	TestIdentifier = "tester@example.com"
	TestSecret     = "correct horse"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom

	// Backend is a dev server the app talks to
	Backend *DevServer
	Server  *httptest.Server
	// ClientStorage is the app's credential storage
	ClientStorage *memory.Storage
}

// NewTestApp creates an App against an in-process dev backend, with a mocked
// clock shared by both. Call Close when done.
func NewTestApp() (*TestApp, error) {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	backend, err := newDevServerWithDependencies(context.Background(), memory.New(), mockClock, mockRandom, DevServerConfig{
		Accounts:  accounts.Config{BcryptCost: bcrypt.MinCost},
		SeedUsers: []SeedUser{{Identifier: TestIdentifier, Secret: TestSecret, DisplayName: "Tester", Points: 100}},
	})
	if err != nil {
		return nil, err
	}
	server := httptest.NewServer(backend.Handler)

	clientStorage := memory.New()
	app, err := newWithDependencies(clientStorage, mockClock, Config{ServerURL: server.URL})
	if err != nil {
		server.Close()
		return nil, err
	}

	return &TestApp{
		App:           app,
		MockClock:     mockClock,
		MockRandom:    mockRandom,
		Backend:       backend,
		Server:        server,
		ClientStorage: clientStorage,
	}, nil
}

// Close stops the backend
func (t *TestApp) Close() {
	t.Server.Close()
}
