package asyncrt

import (
	"context"
	"sync/atomic"

	"github.com/dep2p/go-asyncrt/pkg/interfaces"
	"github.com/dep2p/go-asyncrt/pkg/types"
)

// ============================================================================
//                              Mutex
// ============================================================================

// Mutex 持有一个 T 的互斥锁
type Mutex[T any] struct {
	raw interfaces.RawMutex
	v   T
}

var _ interfaces.Mutex[int] = (*Mutex[int])(nil)

// NewMutex 在 rt 上创建互斥锁
func NewMutex[T any](rt interfaces.RuntimeLock, v T) *Mutex[T] {
	return &Mutex[T]{raw: rt.NewRawMutex(), v: v}
}

// Lock 挂起直到获得锁
func (m *Mutex[T]) Lock(ctx context.Context) (interfaces.MutexGuard[T], error) {
	if err := m.raw.Lock(ctx); err != nil {
		return nil, err
	}
	return &mutexGuard[T]{m: m}, nil
}

// TryLock 立即尝试获得锁
func (m *Mutex[T]) TryLock() (interfaces.MutexGuard[T], bool) {
	if !m.raw.TryLock() {
		return nil, false
	}
	return &mutexGuard[T]{m: m}, true
}

// GetMut 返回内部值的指针，仍有守卫存活时 panic types.ErrLockHeld
//
// 调用方必须保证之后不再并发加锁。
func (m *Mutex[T]) GetMut() *T {
	m.exclusive()
	return &m.v
}

// IntoInner 取出内部值，仍有守卫存活时 panic types.ErrLockHeld
func (m *Mutex[T]) IntoInner() T {
	m.exclusive()
	return m.v
}

func (m *Mutex[T]) exclusive() {
	if !m.raw.TryLock() {
		panic(types.ErrLockHeld)
	}
	m.raw.Unlock()
}

// mutexGuard 互斥锁守卫，Unlock 幂等
type mutexGuard[T any] struct {
	m        *Mutex[T]
	released atomic.Bool
}

func (g *mutexGuard[T]) Value() *T {
	return &g.m.v
}

func (g *mutexGuard[T]) Get() T {
	return g.m.v
}

func (g *mutexGuard[T]) Set(v T) {
	g.m.v = v
}

func (g *mutexGuard[T]) Unlock() {
	if g.released.CompareAndSwap(false, true) {
		g.m.raw.Unlock()
	}
}

func (g *mutexGuard[T]) Source() interfaces.Mutex[T] {
	return g.m
}

// BlockingMutex 可在执行器之外阻塞获取的互斥锁
type BlockingMutex[T any] struct {
	*Mutex[T]
	raw interfaces.RawBlockingMutex
}

var _ interfaces.BlockingMutex[int] = (*BlockingMutex[int])(nil)

// NewBlockingMutex 创建阻塞互斥锁，只有支持阻塞锁的引擎可用
func NewBlockingMutex[T any](rt interfaces.RuntimeBlockingLock, v T) *BlockingMutex[T] {
	raw := rt.NewRawBlockingMutex()
	return &BlockingMutex[T]{Mutex: &Mutex[T]{raw: raw, v: v}, raw: raw}
}

// BlockingLock 阻塞当前 goroutine 直到获得锁
func (m *BlockingMutex[T]) BlockingLock() interfaces.MutexGuard[T] {
	m.raw.LockBlocking()
	return &mutexGuard[T]{m: m.Mutex}
}

// ============================================================================
//                              RwLock
// ============================================================================

// RwLock 持有一个 T 的读写锁
type RwLock[T any] struct {
	raw interfaces.RawRwLock
	v   T
}

var _ interfaces.RwLock[int] = (*RwLock[int])(nil)

// NewRwLock 在 rt 上创建读写锁
func NewRwLock[T any](rt interfaces.RuntimeLockExt, v T) *RwLock[T] {
	return &RwLock[T]{raw: rt.NewRawRwLock(), v: v}
}

// Read 挂起直到获得读锁
func (l *RwLock[T]) Read(ctx context.Context) (interfaces.RwLockReadGuard[T], error) {
	if err := l.raw.RLock(ctx); err != nil {
		return nil, err
	}
	return &readGuard[T]{l: l}, nil
}

// TryRead 立即尝试获得读锁
func (l *RwLock[T]) TryRead() (interfaces.RwLockReadGuard[T], bool) {
	if !l.raw.TryRLock() {
		return nil, false
	}
	return &readGuard[T]{l: l}, true
}

// Write 挂起直到获得写锁
func (l *RwLock[T]) Write(ctx context.Context) (interfaces.RwLockWriteGuard[T], error) {
	if err := l.raw.Lock(ctx); err != nil {
		return nil, err
	}
	return &writeGuard[T]{l: l}, nil
}

// TryWrite 立即尝试获得写锁
func (l *RwLock[T]) TryWrite() (interfaces.RwLockWriteGuard[T], bool) {
	if !l.raw.TryLock() {
		return nil, false
	}
	return &writeGuard[T]{l: l}, true
}

// GetMut 返回内部值的指针，仍有守卫存活时 panic types.ErrLockHeld
func (l *RwLock[T]) GetMut() *T {
	l.exclusive()
	return &l.v
}

// IntoInner 取出内部值，仍有守卫存活时 panic types.ErrLockHeld
func (l *RwLock[T]) IntoInner() T {
	l.exclusive()
	return l.v
}

func (l *RwLock[T]) exclusive() {
	if !l.raw.TryLock() {
		panic(types.ErrLockHeld)
	}
	l.raw.Unlock()
}

type readGuard[T any] struct {
	l        *RwLock[T]
	released atomic.Bool
}

func (g *readGuard[T]) Get() T {
	return g.l.v
}

func (g *readGuard[T]) Unlock() {
	if g.released.CompareAndSwap(false, true) {
		g.l.raw.RUnlock()
	}
}

type writeGuard[T any] struct {
	l        *RwLock[T]
	released atomic.Bool
}

func (g *writeGuard[T]) Value() *T {
	return &g.l.v
}

func (g *writeGuard[T]) Get() T {
	return g.l.v
}

func (g *writeGuard[T]) Set(v T) {
	g.l.v = v
}

func (g *writeGuard[T]) Unlock() {
	if g.released.CompareAndSwap(false, true) {
		g.l.raw.Unlock()
	}
}

// Downgrade 原子地降级为读守卫，本守卫随之失效
func (g *writeGuard[T]) Downgrade() interfaces.RwLockReadGuard[T] {
	if !g.released.CompareAndSwap(false, true) {
		panic("asyncrt: downgrade of a released write guard")
	}
	g.l.raw.Downgrade()
	return &readGuard[T]{l: g.l}
}

// BlockingRwLock 可在执行器之外阻塞获取的读写锁
type BlockingRwLock[T any] struct {
	*RwLock[T]
	raw interfaces.RawBlockingRwLock
}

var _ interfaces.BlockingRwLock[int] = (*BlockingRwLock[int])(nil)

// NewBlockingRwLock 创建阻塞读写锁，只有支持阻塞锁的引擎可用
func NewBlockingRwLock[T any](rt interfaces.RuntimeBlockingLock, v T) *BlockingRwLock[T] {
	raw := rt.NewRawBlockingRwLock()
	return &BlockingRwLock[T]{RwLock: &RwLock[T]{raw: raw, v: v}, raw: raw}
}

// BlockingRead 阻塞当前 goroutine 直到获得读锁
func (l *BlockingRwLock[T]) BlockingRead() interfaces.RwLockReadGuard[T] {
	l.raw.RLockBlocking()
	return &readGuard[T]{l: l.RwLock}
}

// BlockingWrite 阻塞当前 goroutine 直到获得写锁
func (l *BlockingRwLock[T]) BlockingWrite() interfaces.RwLockWriteGuard[T] {
	l.raw.LockBlocking()
	return &writeGuard[T]{l: l.RwLock}
}
