package respond

import "time"

// HealthRespond GET /health
type HealthRespond struct {
	Status      string        `json:"status"`
	Timestamp   time.Time     `json:"timestamp"`
	Uptime      float64       `json:"uptime"` // 秒
	Database    string        `json:"database"`
	Environment string        `json:"environment"`
	Metrics     HealthMetrics `json:"metrics"`
}

// HealthMetrics 请求计数与内存占用
type HealthMetrics struct {
	Requests  uint64       `json:"requests"`
	Errors    uint64       `json:"errors"`
	ErrorRate string       `json:"errorRate"`
	Memory    MemoryMetric `json:"memory"`
}

// MemoryMetric 内存占用（MB）
type MemoryMetric struct {
	HeapAlloc string `json:"heapAlloc"`
	HeapSys   string `json:"heapSys"`
	Sys       string `json:"sys"`
}
