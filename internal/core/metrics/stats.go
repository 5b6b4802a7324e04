package metrics

// Outcome 任务结束方式
type Outcome string

const (
	// OutcomeCompleted 正常返回
	OutcomeCompleted Outcome = "completed"
	// OutcomePanicked 任务体 panic
	OutcomePanicked Outcome = "panicked"
	// OutcomeCancelled 被取消
	OutcomeCancelled Outcome = "cancelled"
)

// Stats 单个引擎的任务统计快照
type Stats struct {
	Spawned   int64   `json:"spawned"`    // 累计派生
	Completed int64   `json:"completed"`  // 正常结束
	Panicked  int64   `json:"panicked"`   // panic 结束
	Cancelled int64   `json:"cancelled"`  // 取消结束
	Running   int64   `json:"running"`    // 当前运行中
	SpawnRate float64 `json:"spawn_rate"` // 最近 60 秒派生速率（次/秒）
}
