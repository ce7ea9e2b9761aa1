package factory

import (
	"time"

	"github.com/mcoot/banglascrabble/internal/broadcast"
	"github.com/mcoot/banglascrabble/internal/dependencies/mocks"
	"github.com/mcoot/banglascrabble/internal/services/auth"
	"github.com/mcoot/banglascrabble/internal/storage/memory"
	"github.com/mcoot/banglascrabble/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, auth.DefaultConfig(), broadcast.DefaultConfig(), testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
