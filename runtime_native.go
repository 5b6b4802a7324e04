//go:build !asyncrt_local && !asyncrt_pool

package asyncrt

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-asyncrt/internal/engine/native"
)

// DefaultEngine 构建时选定的引擎名称
const DefaultEngine = native.Name

// Default 构建时选定的引擎
type Default = native.Runtime

// NewDefault 创建构建时选定的引擎
func NewDefault(opts ...Option) (*Default, error) {
	return NewNative(opts...)
}

func engineModule() fx.Option {
	return native.Module()
}
