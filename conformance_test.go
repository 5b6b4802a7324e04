package asyncrt_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-asyncrt"
	"github.com/dep2p/go-asyncrt/internal/conformance"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
)

// TestConformance_Native 多线程引擎通过全部一致性用例
func TestConformance_Native(t *testing.T) {
	conformance.RunAll(t, func(t *testing.T) interfaces.Runtime {
		rt, err := asyncrt.NewNative(asyncrt.WithWorkers(4))
		require.NoError(t, err)
		t.Cleanup(func() { _ = rt.Close() })
		return rt
	})
}

// TestConformance_Local 单线程引擎通过其具备能力的用例
func TestConformance_Local(t *testing.T) {
	conformance.RunAll(t, func(t *testing.T) interfaces.Runtime {
		rt, err := asyncrt.NewLocal()
		require.NoError(t, err)
		t.Cleanup(func() { _ = rt.Close() })
		return rt
	})
}

// TestConformance_Pool 协程池引擎通过其具备能力的用例
func TestConformance_Pool(t *testing.T) {
	conformance.RunAll(t, func(t *testing.T) interfaces.Runtime {
		rt, err := asyncrt.NewPool(asyncrt.WithWorkers(2))
		require.NoError(t, err)
		t.Cleanup(func() { _ = rt.Close() })
		return rt
	})
}

// TestConformance_CapabilityCoverage 每个用例至少有一个引擎能运行
func TestConformance_CapabilityCoverage(t *testing.T) {
	native, err := asyncrt.NewNative()
	require.NoError(t, err)
	defer native.Close()

	for _, c := range conformance.Cases() {
		require.True(t, c.Supports(native), "native engine skips %s", c.Name)
	}
}
