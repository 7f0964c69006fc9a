//go:build paymentsim

package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulationConfirms(t *testing.T) {
	api := &fakeAPI{}
	f, nav, _ := newTestFlow(t, api)
	require.NoError(t, f.Load(context.Background()))
	require.NoError(t, f.Submit(context.Background()))

	require.NoError(t, f.Simulate(context.Background()))
	assert.Equal(t, 1, api.simulated)
	assert.Equal(t, StateConfirmed, f.State())

	require.Eventually(t, func() bool {
		return len(nav.Pushes()) == 1
	}, time.Second, 5*time.Millisecond)

	calls := api.calls()
	time.Sleep(5 * testPoll)
	assert.Equal(t, calls, api.calls())
}
