package constants

const (
	CHANNEL_SIZE          = 256              // 每个连接的发送缓冲大小
	DEFAULT_ROOM          = "general"        // 默认房间
	DEFAULT_HISTORY_LIMIT = 200              // 每个房间保留的历史消息条数
	DEFAULT_PAGE_SIZE     = 25               // 默认分页大小
	MAX_PAGE_SIZE         = 500              // 单页上限
	MAX_ROOM_NAME_LENGTH  = 64               // 房间名最大长度（rune）
	FILE_MAX_SIZE         = 10 * 1024 * 1024 // 内联文件最大字节数
	ANONYMOUS_SENDER      = "Anonymous"      // 未加入房间时的发送者名称
	PRIVATE_ROOM          = "private"        // 私聊消息的房间标记
	SLOW_REQUEST_SECONDS  = 1                // 慢请求阈值（秒）
)
