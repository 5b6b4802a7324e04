// Package lifecycle 提供执行器生命周期协调器
//
// 执行器按阶段单向推进：
//   - Created: 已构造
//   - Running: 接受新任务
//   - Closing: 拒绝新任务，存量任务已被取消
//   - Drained: 所有任务已结束
//
// 每个阶段完成时关闭对应信号，Shutdown 等待 Drained 信号。
package lifecycle

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dep2p/go-asyncrt/internal/util/logger"
)

var log = logger.Logger("core/lifecycle")

// ============================================================================
//                              阶段定义
// ============================================================================

// Phase 生命周期阶段
type Phase int

const (
	// PhaseCreated 已构造，未启动
	PhaseCreated Phase = iota

	// PhaseRunning 接受新任务
	PhaseRunning

	// PhaseClosing 拒绝新任务，存量任务已取消但可能仍在运行
	PhaseClosing

	// PhaseDrained 所有任务已结束
	PhaseDrained
)

// String 返回阶段字符串表示
func (p Phase) String() string {
	switch p {
	case PhaseCreated:
		return "created"
	case PhaseRunning:
		return "running"
	case PhaseClosing:
		return "closing"
	case PhaseDrained:
		return "drained"
	default:
		return fmt.Sprintf("unknown(%d)", p)
	}
}

// ============================================================================
//                              生命周期协调器
// ============================================================================

// Coordinator 生命周期协调器
type Coordinator struct {
	name string

	mu           sync.RWMutex
	phase        Phase
	phaseSignals [PhaseDrained + 1]chan struct{}

	onPhaseChange []func(old, new Phase)
}

// NewCoordinator 创建协调器，name 只用于日志
func NewCoordinator(name string) *Coordinator {
	c := &Coordinator{name: name, phase: PhaseCreated}
	for p := range c.phaseSignals {
		c.phaseSignals[p] = make(chan struct{})
	}
	close(c.phaseSignals[PhaseCreated])
	return c
}

// Phase 返回当前阶段
func (c *Coordinator) Phase() Phase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.phase
}

// AdvanceTo 推进到指定阶段
//
// 只能向前推进，中间阶段的信号一并完成。目标等于当前阶段时返回 false。
func (c *Coordinator) AdvanceTo(target Phase) (bool, error) {
	if target < PhaseCreated || target > PhaseDrained {
		return false, fmt.Errorf("invalid phase: %d", target)
	}

	c.mu.Lock()
	if target < c.phase {
		cur := c.phase
		c.mu.Unlock()
		return false, fmt.Errorf("cannot advance backwards: current=%s target=%s", cur, target)
	}
	if target == c.phase {
		c.mu.Unlock()
		return false, nil
	}

	old := c.phase
	for p := c.phase + 1; p <= target; p++ {
		close(c.phaseSignals[p])
	}
	c.phase = target
	callbacks := slices.Clone(c.onPhaseChange)
	c.mu.Unlock()

	log.Debug("executor phase advanced", "executor", c.name, "from", old, "to", target)

	for _, cb := range callbacks {
		cb(old, target)
	}
	return true, nil
}

// OnPhaseChange 注册阶段变更回调，回调在推进者的 goroutine 上同步执行
func (c *Coordinator) OnPhaseChange(cb func(old, new Phase)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onPhaseChange = append(c.onPhaseChange, cb)
}

// Done 返回阶段完成信号
func (c *Coordinator) Done(phase Phase) <-chan struct{} {
	if phase < PhaseCreated || phase > PhaseDrained {
		return nil
	}
	return c.phaseSignals[phase]
}

// WaitFor 等待指定阶段完成
func (c *Coordinator) WaitFor(ctx context.Context, phase Phase) error {
	ch := c.Done(phase)
	if ch == nil {
		return fmt.Errorf("invalid phase: %d", phase)
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsCompleted 检查指定阶段是否已完成
func (c *Coordinator) IsCompleted(phase Phase) bool {
	ch := c.Done(phase)
	if ch == nil {
		return false
	}
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

// Accepting 是否接受新任务
func (c *Coordinator) Accepting() bool {
	return c.Phase() == PhaseRunning
}
