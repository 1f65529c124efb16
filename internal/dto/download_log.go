package dto

// ── 审计日志模块 DTO ──

// DownloadLogListRequest 审计日志查询条件，均可选，按 AND 组合
type DownloadLogListRequest struct {
	StudentNum   string `form:"student_num"   binding:"omitempty,max=20"`
	FunctionName string `form:"function_name" binding:"omitempty,max=100"`
	Success      string `form:"success"       binding:"omitempty,oneof=成功 失敗"`
	PaginationRequest
}

// DownloadLogResponse 审计日志响应
type DownloadLogResponse struct {
	ID           uint   `json:"log_id"`
	StudentNum   string `json:"student_num"`
	Timestamp    string `json:"timestamp"`
	FunctionName string `json:"function_name"`
	Success      string `json:"success"`
	Count        *int   `json:"count,omitempty"`
}

// DownloadStatsResponse 审计统计
type DownloadStatsResponse struct {
	UniqueStudents       int64 `json:"unique_students"`
	SuccessCount         int64 `json:"success_count"`
	FailureCount         int64 `json:"failure_count"`
	EntryFetchedStudents int64 `json:"entry_fetched_students"`
}
