//go:build !paymentsim

package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulationUnavailable(t *testing.T) {
	api := &fakeAPI{}
	f, _, _ := newTestFlow(t, api)
	require.NoError(t, f.Load(context.Background()))
	require.NoError(t, f.Submit(context.Background()))

	assert.False(t, SimulationEnabled())
	assert.ErrorIs(t, f.Simulate(context.Background()), ErrSimulationUnavailable)
	assert.Equal(t, 0, api.simulated)
	assert.Equal(t, StateAwaitingPayment, f.State())
}
