// Package timer 实现与引擎无关的计时内核
//
// 时钟由 github.com/benbjohnson/clock 注入，测试使用 clock.NewMock()。
// 引擎通过选项决定两项策略：
//   - 错过节拍策略（跳过 / 补发）
//   - Interval 第一拍是否立即触发
package timer

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-asyncrt/internal/core/suspend"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
	"github.com/dep2p/go-asyncrt/pkg/types"
)

// Option 计时内核选项
type Option func(*Time)

// WithPolicy 设置错过节拍策略
func WithPolicy(p types.MissedTickPolicy) Option {
	return func(t *Time) { t.policy = p }
}

// WithImmediateFirstTick Interval 第一拍立即触发
func WithImmediateFirstTick(on bool) Option {
	return func(t *Time) { t.immediate = on }
}

// WithSuspender 设置挂起策略
func WithSuspender(s suspend.Suspender) Option {
	return func(t *Time) { t.susp = suspend.OrInline(s) }
}

// Time 计时内核
type Time struct {
	clk       clock.Clock
	susp      suspend.Suspender
	policy    types.MissedTickPolicy
	immediate bool
}

var _ interfaces.Time = (*Time)(nil)

// New 创建计时内核，clk 为 nil 时使用真实时钟
func New(clk clock.Clock, opts ...Option) *Time {
	if clk == nil {
		clk = clock.New()
	}
	t := &Time{clk: clk, susp: suspend.Inline{}}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Clock 返回底层时钟
func (t *Time) Clock() clock.Clock {
	return t.clk
}

// Now 实现 interfaces.Time
func (t *Time) Now() time.Time {
	return t.clk.Now()
}

// Sleep 实现 interfaces.Time
func (t *Time) Sleep(ctx context.Context, d time.Duration) (time.Time, error) {
	return t.sleep(ctx, d, nil)
}

// SleepUntil 实现 interfaces.Time
func (t *Time) SleepUntil(ctx context.Context, deadline time.Time) (time.Time, error) {
	return t.sleep(ctx, deadline.Sub(t.clk.Now()), nil)
}

func (t *Time) sleep(ctx context.Context, d time.Duration, stop <-chan struct{}) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	if d <= 0 {
		return t.clk.Now(), nil
	}

	timer := t.clk.Timer(d)
	defer timer.Stop()

	err := t.susp.Suspend(ctx, func() error {
		select {
		case <-timer.C:
			return nil
		case <-stop:
			return types.ErrIntervalStopped
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if err != nil {
		return time.Time{}, err
	}
	return t.clk.Now(), nil
}

// Interval 实现 interfaces.Time
func (t *Time) Interval(period time.Duration) interfaces.Interval {
	start := t.clk.Now()
	if !t.immediate {
		start = start.Add(period)
	}
	return t.IntervalAt(start, period)
}

// IntervalAt 实现 interfaces.Time
func (t *Time) IntervalAt(start time.Time, period time.Duration) interfaces.Interval {
	if period <= 0 {
		panic("timer: non-positive interval period")
	}
	return &Interval{t: t, period: period, next: start, stop: make(chan struct{})}
}

// ============================================================================
//                              Interval
// ============================================================================

// Interval 节拍序列
type Interval struct {
	t      *Time
	period time.Duration

	mu   sync.Mutex
	next time.Time

	stopOnce sync.Once
	stop     chan struct{}
}

var _ interfaces.Interval = (*Interval)(nil)

// Next 实现 interfaces.Interval
func (i *Interval) Next(ctx context.Context) (time.Time, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	select {
	case <-i.stop:
		return time.Time{}, types.ErrIntervalStopped
	default:
	}

	tick := i.next
	if _, err := i.t.sleep(ctx, tick.Sub(i.t.clk.Now()), i.stop); err != nil {
		return time.Time{}, err
	}
	i.next = i.nextAfter(tick, i.t.clk.Now())
	return tick, nil
}

// nextAfter 根据策略计算 tick 之后的下一拍
func (i *Interval) nextAfter(tick, now time.Time) time.Time {
	next := tick.Add(i.period)
	if i.t.policy == types.MissedTickBurst || !now.After(next) {
		return next
	}
	// 跳过：对齐到原始网格上晚于 now 的第一拍
	missed := now.Sub(tick) / i.period
	return tick.Add((missed + 1) * i.period)
}

// Period 实现 interfaces.Interval
func (i *Interval) Period() time.Duration {
	return i.period
}

// Policy 实现 interfaces.Interval
func (i *Interval) Policy() types.MissedTickPolicy {
	return i.t.policy
}

// Stop 实现 interfaces.Interval
func (i *Interval) Stop() {
	i.stopOnce.Do(func() { close(i.stop) })
}
