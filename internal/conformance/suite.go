// Package conformance 与引擎无关的契约一致性用例
//
// 每个用例声明所需的能力，引擎缺少该能力时跳过。
// 用例只通过 asyncrt 的类型化接口访问引擎，同一组用例在所有引擎上应得到相同结果。
package conformance

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-asyncrt/pkg/interfaces"
)

// DefaultTimeout 单个用例的超时
const DefaultTimeout = 10 * time.Second

// Case 一致性用例
type Case struct {
	// Name 用例名
	Name string

	// Supports 引擎是否具备用例所需的能力
	Supports func(rt interfaces.Runtime) bool

	// Run 执行用例，失败通过 t 报告
	Run func(ctx context.Context, t require.TestingT, rt interfaces.Runtime)
}

// Cases 返回全部用例
func Cases() []Case {
	var all []Case
	all = append(all, lockCases()...)
	all = append(all, channelCases()...)
	all = append(all, executorCases()...)
	all = append(all, ioCases()...)
	return all
}

// RunAll 以子测试运行全部用例，rt 由 newRuntime 为每个用例单独创建
func RunAll(t *testing.T, newRuntime func(t *testing.T) interfaces.Runtime) {
	for _, c := range Cases() {
		c := c
		t.Run(c.Name, func(t *testing.T) {
			rt := newRuntime(t)
			if !c.Supports(rt) {
				t.Skipf("%s engine lacks the required capability", rt.Name())
			}
			ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
			defer cancel()
			c.Run(ctx, t, rt)
		})
	}
}

// has 引擎是否实现能力接口 C
func has[C any](rt interfaces.Runtime) bool {
	_, ok := rt.(C)
	return ok
}

// all 组合多个能力判断
func all(checks ...func(interfaces.Runtime) bool) func(interfaces.Runtime) bool {
	return func(rt interfaces.Runtime) bool {
		for _, ok := range checks {
			if !ok(rt) {
				return false
			}
		}
		return true
	}
}

func executor(rt interfaces.Runtime) interfaces.Executor {
	return rt.(interfaces.RuntimeExecutor).Executor()
}

// raise 把 peak 提升到至少 n
func raise(peak *atomic.Int32, n int32) {
	for {
		p := peak.Load()
		if n <= p || peak.CompareAndSwap(p, n) {
			return
		}
	}
}
