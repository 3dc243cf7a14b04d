package service

import (
	"testing"
	"time"

	"github.com/cofoundry/gateway/internal/backend"
	"github.com/cofoundry/gateway/internal/store"
	"github.com/cofoundry/gateway/internal/testutil"
	"github.com/rs/zerolog"
)

const (
	alice = "user_alice"
	bob   = "user_bob"
	wsID  = "ws-1"
)

type fixture struct {
	fake     *testutil.FakeBackend
	client   *backend.Client
	registry *store.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fake := testutil.NewFakeBackend(t)
	client := backend.NewClient(fake.URL(), 5*time.Second, zerolog.Nop())
	return &fixture{
		fake:     fake,
		client:   client,
		registry: store.NewRegistry(client, nil, zerolog.Nop(), time.Minute),
	}
}

func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }
