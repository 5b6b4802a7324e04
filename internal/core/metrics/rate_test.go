package metrics

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
)

// ============================================================================
// RateMeter 测试
// ============================================================================

func TestRateMeter_Window(t *testing.T) {
	clk := clock.NewMock()
	r := NewRateMeter(clk)

	r.Add(60)
	assert.InDelta(t, 1.0, r.Rate(), 1e-9)

	clk.Add(30 * time.Second)
	r.Add(60)
	assert.InDelta(t, 2.0, r.Rate(), 1e-9)
	assert.Equal(t, int64(120), r.Total())

	// 第一批滑出窗口
	clk.Add(31 * time.Second)
	assert.InDelta(t, 1.0, r.Rate(), 1e-9)

	// 整个窗口过期
	clk.Add(2 * time.Minute)
	assert.Zero(t, r.Rate())
	assert.Equal(t, int64(120), r.Total(), "累计值不随窗口滑动")
}

func TestRateMeter_Reset(t *testing.T) {
	clk := clock.NewMock()
	r := NewRateMeter(clk)
	r.Add(10)
	r.Reset()
	assert.Zero(t, r.Rate())
	assert.Zero(t, r.Total())
}

func TestRateMeter_FractionalSeconds(t *testing.T) {
	clk := clock.NewMock()
	r := NewRateMeter(clk)

	// 每 0.6 秒一次，窗口推进不丢失小数部分
	for i := 0; i < 100; i++ {
		r.Add(1)
		clk.Add(600 * time.Millisecond)
	}
	assert.InDelta(t, 100.0/60, r.Rate(), 3.0/60)
}
