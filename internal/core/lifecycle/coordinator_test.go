package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinator_Advance(t *testing.T) {
	c := NewCoordinator("test")
	assert.Equal(t, PhaseCreated, c.Phase())
	assert.True(t, c.IsCompleted(PhaseCreated))
	assert.False(t, c.Accepting())

	changed, err := c.AdvanceTo(PhaseRunning)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, c.Accepting())

	changed, err = c.AdvanceTo(PhaseRunning)
	require.NoError(t, err)
	assert.False(t, changed)

	// 跳过中间阶段时一并完成其信号
	_, err = c.AdvanceTo(PhaseDrained)
	require.NoError(t, err)
	assert.True(t, c.IsCompleted(PhaseClosing))
	assert.True(t, c.IsCompleted(PhaseDrained))

	_, err = c.AdvanceTo(PhaseRunning)
	assert.Error(t, err)
	_, err = c.AdvanceTo(Phase(42))
	assert.Error(t, err)
}

func TestCoordinator_WaitFor(t *testing.T) {
	c := NewCoordinator("test")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.WaitFor(ctx, PhaseClosing), context.DeadlineExceeded)

	go func() {
		time.Sleep(10 * time.Millisecond)
		_, _ = c.AdvanceTo(PhaseClosing)
	}()
	require.NoError(t, c.WaitFor(context.Background(), PhaseClosing))
	assert.False(t, c.IsCompleted(PhaseDrained))

	assert.Error(t, c.WaitFor(context.Background(), Phase(-1)))
	assert.False(t, c.IsCompleted(Phase(9)))
}

func TestCoordinator_OnPhaseChange(t *testing.T) {
	c := NewCoordinator("test")

	var seen [][2]Phase
	c.OnPhaseChange(func(old, new Phase) {
		seen = append(seen, [2]Phase{old, new})
	})

	_, _ = c.AdvanceTo(PhaseRunning)
	_, _ = c.AdvanceTo(PhaseDrained)
	assert.Equal(t, [][2]Phase{{PhaseCreated, PhaseRunning}, {PhaseRunning, PhaseDrained}}, seen)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "closing", PhaseClosing.String())
	assert.Equal(t, "unknown(7)", Phase(7).String())
}
