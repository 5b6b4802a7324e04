//go:build asyncrt_pool

package asyncrt

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-asyncrt/internal/engine/pool"
)

// DefaultEngine 构建时选定的引擎名称
const DefaultEngine = pool.Name

// Default 构建时选定的引擎
type Default = pool.Runtime

// NewDefault 创建构建时选定的引擎
func NewDefault(opts ...Option) (*Default, error) {
	return NewPool(opts...)
}

func engineModule() fx.Option {
	return pool.Module()
}
