package types

// MissedTickPolicy 定时器错过节拍时的处理策略
//
// 消费方处理慢于周期时，不同引擎的行为不同，调用方通过
// Interval.Policy() 查询。
type MissedTickPolicy int

const (
	// MissedTickSkip 跳过错过的节拍，下一拍对齐到原始网格
	MissedTickSkip MissedTickPolicy = iota
	// MissedTickBurst 逐个补发错过的节拍，直到追上当前时间
	MissedTickBurst
)

// String 返回策略的字符串表示
func (p MissedTickPolicy) String() string {
	switch p {
	case MissedTickSkip:
		return "skip"
	case MissedTickBurst:
		return "burst"
	default:
		return "unknown"
	}
}
