package request

// GetMessageListRequest 分页查询房间历史
// Before 为游标（ISO-8601 或毫秒时间戳），只返回严格更早的消息
type GetMessageListRequest struct {
	Room   string `form:"room" json:"room" binding:"omitempty,max=64"`
	Before string `form:"before" json:"before"`
	Limit  int    `form:"limit" json:"limit" binding:"omitempty,min=1,max=500"`
}
