package metrics

import (
	"errors"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/puzpuzpuz/xsync/v3"
)

// TaskCounter 任务计数器
//
// 并发安全；每个引擎的累计值使用原子操作。
type TaskCounter struct {
	clk     clock.Clock
	engines *xsync.MapOf[string, *engineStats]

	gatherer prometheus.Gatherer
	spawned  *prometheus.CounterVec
	finished *prometheus.CounterVec
	running  *prometheus.GaugeVec
}

type engineStats struct {
	spawned   atomic.Int64
	completed atomic.Int64
	panicked  atomic.Int64
	cancelled atomic.Int64
	running   atomic.Int64
	rate      *RateMeter
}

// NewTaskCounter 创建任务计数器
//
// clk 为 nil 时使用真实时钟。cfg.Registerer 为空时注册到私有注册表。
// 同名指标已注册时复用已有的收集器。
func NewTaskCounter(cfg Config, clk clock.Clock) (*TaskCounter, error) {
	if clk == nil {
		clk = clock.New()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultConfig().Namespace
	}

	reg := cfg.Registerer
	var gatherer prometheus.Gatherer
	if reg == nil {
		r := prometheus.NewRegistry()
		reg, gatherer = r, r
	} else if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &TaskCounter{
		clk:      clk,
		engines:  xsync.NewMapOf[string, *engineStats](),
		gatherer: gatherer,
	}

	var err error
	if c.spawned, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: "tasks",
		Name:      "spawned_total",
		Help:      "Number of tasks spawned.",
	}, []string{"engine"})); err != nil {
		return nil, err
	}
	if c.finished, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: "tasks",
		Name:      "finished_total",
		Help:      "Number of tasks that finished, by outcome.",
	}, []string{"engine", "outcome"})); err != nil {
		return nil, err
	}
	if c.running, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: cfg.Namespace,
		Subsystem: "tasks",
		Name:      "running",
		Help:      "Number of tasks currently running.",
	}, []string{"engine"})); err != nil {
		return nil, err
	}
	return c, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Gatherer 返回指标所在的注册表，外部注册表不可收集时为 nil
func (c *TaskCounter) Gatherer() prometheus.Gatherer {
	return c.gatherer
}

func (c *TaskCounter) stats(engine string) *engineStats {
	s, _ := c.engines.LoadOrCompute(engine, func() *engineStats {
		return &engineStats{rate: NewRateMeter(c.clk)}
	})
	return s
}

// TaskSpawned 实现 Reporter
func (c *TaskCounter) TaskSpawned(engine string) {
	s := c.stats(engine)
	s.spawned.Add(1)
	s.running.Add(1)
	s.rate.Add(1)
	c.spawned.WithLabelValues(engine).Inc()
	c.running.WithLabelValues(engine).Inc()
}

// TaskFinished 实现 Reporter
func (c *TaskCounter) TaskFinished(engine string, outcome Outcome) {
	s := c.stats(engine)
	switch outcome {
	case OutcomePanicked:
		s.panicked.Add(1)
	case OutcomeCancelled:
		s.cancelled.Add(1)
	default:
		outcome = OutcomeCompleted
		s.completed.Add(1)
	}
	s.running.Add(-1)
	c.finished.WithLabelValues(engine, string(outcome)).Inc()
	c.running.WithLabelValues(engine).Dec()
}

// Snapshot 实现 Reporter
func (c *TaskCounter) Snapshot(engine string) Stats {
	s, ok := c.engines.Load(engine)
	if !ok {
		return Stats{}
	}
	return Stats{
		Spawned:   s.spawned.Load(),
		Completed: s.completed.Load(),
		Panicked:  s.panicked.Load(),
		Cancelled: s.cancelled.Load(),
		Running:   s.running.Load(),
		SpawnRate: s.rate.Rate(),
	}
}

// Engines 返回已上报过的引擎名
func (c *TaskCounter) Engines() []string {
	var out []string
	c.engines.Range(func(name string, _ *engineStats) bool {
		out = append(out, name)
		return true
	})
	return out
}

// Reset 实现 Reporter
func (c *TaskCounter) Reset() {
	c.engines.Clear()
	c.spawned.Reset()
	c.finished.Reset()
	c.running.Reset()
}
