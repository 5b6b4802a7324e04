// Package interfaces 定义 go-asyncrt 能力契约
//
// 本文件定义计时能力。
package interfaces

import (
	"context"
	"time"

	"github.com/dep2p/go-asyncrt/pkg/types"
)

// Time 计时能力
type Time interface {
	// Now 当前时间（引擎时钟）
	Now() time.Time

	// Sleep 挂起至少 d，返回实际唤醒时刻
	Sleep(ctx context.Context, d time.Duration) (time.Time, error)

	// SleepUntil 挂起直到 deadline，已过期则立即返回
	SleepUntil(ctx context.Context, deadline time.Time) (time.Time, error)

	// Interval 从 now + period 开始（或立即，取决于引擎）的周期序列
	//
	// period 非正时 panic。
	Interval(period time.Duration) Interval

	// IntervalAt 从 start 开始的周期序列
	IntervalAt(start time.Time, period time.Duration) Interval
}

// Interval 惰性节拍序列
type Interval interface {
	// Next 挂起直到下一拍，返回该拍的计划时刻
	//
	// Stop 之后返回 types.ErrIntervalStopped。
	Next(ctx context.Context) (time.Time, error)

	Period() time.Duration

	// Policy 错过节拍时的处理策略
	Policy() types.MissedTickPolicy

	Stop()
}
