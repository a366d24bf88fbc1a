package model

// Session 一个在线连接与用户名、当前房间的绑定
// 房间成员关系由 Session 过滤得出，不单独存储
type Session struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Room     string `json:"room"`
}
