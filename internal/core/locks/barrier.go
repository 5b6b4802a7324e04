package locks

import (
	"context"
	"sync"

	"github.com/dep2p/go-asyncrt/internal/core/suspend"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
	"github.com/dep2p/go-asyncrt/pkg/types"
)

// Barrier 分代屏障
type Barrier struct {
	mu    sync.Mutex
	n     int
	count int
	gen   uint64
	ch    chan struct{}
	susp  suspend.Suspender
}

var _ interfaces.Barrier = (*Barrier)(nil)

// NewBarrier 创建 n 方屏障，n 小于 1 时按 1 处理
func NewBarrier(n int, s suspend.Suspender) *Barrier {
	if n < 1 {
		n = 1
	}
	return &Barrier{n: n, ch: make(chan struct{}), susp: suspend.OrInline(s)}
}

// Wait 实现 interfaces.Barrier
func (b *Barrier) Wait(ctx context.Context) (types.BarrierWaitResult, error) {
	b.mu.Lock()
	b.count++
	if b.count == b.n {
		close(b.ch)
		b.ch = make(chan struct{})
		b.count = 0
		b.gen++
		b.mu.Unlock()
		return types.NewBarrierWaitResult(true), nil
	}
	ch, gen := b.ch, b.gen
	b.mu.Unlock()

	if err := suspend.Wait(ctx, b.susp, ch); err != nil {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.gen == gen {
			b.count--
			return types.NewBarrierWaitResult(false), err
		}
		// 本代已在取消前完成
	}
	return types.NewBarrierWaitResult(false), nil
}

// Generation 已完成的代数
func (b *Barrier) Generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gen
}
