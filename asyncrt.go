package asyncrt

// ============================================================================
//                              版本信息
// ============================================================================

// Version 当前版本
const Version = "v0.1.0"

// BuildInfo 构建信息（通过 ldflags 注入）
var (
	// GitCommit Git 提交哈希
	GitCommit string

	// BuildDate 构建日期
	BuildDate string
)

// VersionInfo 返回完整版本信息字符串
func VersionInfo() string {
	info := "asyncrt " + Version + " (" + DefaultEngine + ")"
	if GitCommit != "" {
		info += " " + GitCommit[:min(8, len(GitCommit))]
	}
	if BuildDate != "" {
		info += " built " + BuildDate
	}
	return info
}
