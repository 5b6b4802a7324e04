package task

import "context"

// insideKey 标记 ctx 处于某个执行器内部（任务或 BlockOn）
type insideKey struct {
	owner any
}

// Enter 返回标记为处于 owner 内部的 ctx，owner 必须可比较
func Enter(ctx context.Context, owner any) context.Context {
	return context.WithValue(ctx, insideKey{owner}, true)
}

// Inside ctx 是否处于 owner 内部
func Inside(ctx context.Context, owner any) bool {
	v, _ := ctx.Value(insideKey{owner}).(bool)
	return v
}
