package task

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/multierr"

	"github.com/dep2p/go-asyncrt/internal/core/lifecycle"
	"github.com/dep2p/go-asyncrt/internal/core/metrics"
	"github.com/dep2p/go-asyncrt/internal/core/suspend"
	"github.com/dep2p/go-asyncrt/internal/util/logger"
	"github.com/dep2p/go-asyncrt/pkg/types"
)

var log = logger.Logger("core/task")

// Group 执行器的任务组
//
// 登记运行中的任务，Close 时全部取消（包括已分离的任务）。
type Group struct {
	engine   string
	wrap     types.WrapMode
	susp     suspend.Suspender
	reporter metrics.Reporter
	lc       *lifecycle.Coordinator

	// mu 保证 Close 之后不再有任务登记
	mu    sync.RWMutex
	tasks *xsync.MapOf[types.TaskID, *Task]
	live  atomic.Int64
}

// NewGroup 创建任务组并进入 Running 阶段
func NewGroup(engine string, wrap types.WrapMode, s suspend.Suspender, r metrics.Reporter) *Group {
	g := &Group{
		engine:   engine,
		wrap:     wrap,
		susp:     suspend.OrInline(s),
		reporter: metrics.OrNop(r),
		lc:       lifecycle.NewCoordinator(engine),
		tasks:    xsync.NewMapOf[types.TaskID, *Task](),
	}
	_, _ = g.lc.AdvanceTo(lifecycle.PhaseRunning)
	return g
}

// Lifecycle 返回生命周期协调器
func (g *Group) Lifecycle() *lifecycle.Coordinator {
	return g.lc
}

// New 创建并登记任务
//
// decorate 用于给任务 ctx 附加引擎标记，可为 nil。
// 任务组已关闭时返回已结束的任务，Await 得到 types.ErrExecutorClosed。
func (g *Group) New(decorate func(context.Context) context.Context) *Task {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.lc.Accepting() {
		return Rejected(g.wrap, g.susp, types.ErrExecutorClosed)
	}

	ctx := context.Background()
	if decorate != nil {
		ctx = decorate(ctx)
	}
	t := newTask(ctx, g.wrap, g.susp)
	t.onFinish = g.finished
	g.tasks.Store(t.id, t)
	g.live.Add(1)
	g.reporter.TaskSpawned(g.engine)
	log.Debug("task spawned", "engine", g.engine, "task", t.id.ShortString())
	return t
}

func (g *Group) finished(t *Task) {
	outcome := metrics.OutcomeCompleted
	switch {
	case t.panicked:
		outcome = metrics.OutcomePanicked
		log.Debug("task panicked", "engine", g.engine, "task", t.id.ShortString(), "panic", t.panicVal)
	case t.aborted:
		outcome = metrics.OutcomeCancelled
		log.Debug("task cancelled", "engine", g.engine, "task", t.id.ShortString())
	}
	g.reporter.TaskFinished(g.engine, outcome)

	g.tasks.Delete(t.id)
	if g.live.Add(-1) == 0 && g.lc.Phase() >= lifecycle.PhaseClosing {
		_, _ = g.lc.AdvanceTo(lifecycle.PhaseDrained)
	}
}

// Len 运行中（含排队）的任务数
func (g *Group) Len() int {
	return int(g.live.Load())
}

// Close 拒绝新任务并取消所有任务，不等待；重复调用无效
func (g *Group) Close() {
	g.mu.Lock()
	changed, _ := g.lc.AdvanceTo(lifecycle.PhaseClosing)
	g.mu.Unlock()
	if !changed {
		return
	}

	n := 0
	g.tasks.Range(func(_ types.TaskID, t *Task) bool {
		t.forceCancel()
		n++
		return true
	})
	log.Debug("executor closing", "engine", g.engine, "cancelled", n)

	if g.live.Load() == 0 {
		_, _ = g.lc.AdvanceTo(lifecycle.PhaseDrained)
	}
}

// Shutdown 关闭并等待所有任务退出
//
// ctx 先结束时返回 ctx.Err() 与每个仍在运行的任务组合成的错误。
func (g *Group) Shutdown(ctx context.Context) error {
	g.Close()
	if err := g.lc.WaitFor(ctx, lifecycle.PhaseDrained); err != nil {
		g.tasks.Range(func(id types.TaskID, _ *Task) bool {
			err = multierr.Append(err, fmt.Errorf("task %s still running", id.ShortString()))
			return true
		})
		return err
	}
	return nil
}

// Closed 是否已关闭
func (g *Group) Closed() bool {
	return !g.lc.Accepting()
}
