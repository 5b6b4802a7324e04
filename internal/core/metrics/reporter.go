package metrics

// Reporter 执行器用来上报任务生命周期
type Reporter interface {
	// TaskSpawned 记录一次派生
	TaskSpawned(engine string)

	// TaskFinished 记录一次结束
	TaskFinished(engine string, outcome Outcome)

	// Snapshot 返回引擎的统计快照
	Snapshot(engine string) Stats

	// Reset 清零所有累计值
	Reset()
}

// Nop 不记录任何内容的 Reporter
type Nop struct{}

var _ Reporter = Nop{}

func (Nop) TaskSpawned(string)           {}
func (Nop) TaskFinished(string, Outcome) {}
func (Nop) Snapshot(string) Stats        { return Stats{} }
func (Nop) Reset()                       {}

// OrNop r 为 nil 时返回 Nop
func OrNop(r Reporter) Reporter {
	if r == nil {
		return Nop{}
	}
	return r
}

// 确保 TaskCounter 实现 Reporter 接口
var _ Reporter = (*TaskCounter)(nil)
