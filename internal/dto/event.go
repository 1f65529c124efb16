package dto

// ── イベント・出場模块 DTO ──

// CreateEventRequest 创建イベント请求
type CreateEventRequest struct {
	Name        string `json:"name"        binding:"required,max=100"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	Place       string `json:"place"       binding:"omitempty,max=100"`
	StartTime   int    `json:"start_time"  binding:"min=0,max=2359"`
	EndTime     int    `json:"end_time"    binding:"min=0,max=2359"`
}

// UpdateEventRequest 更新イベント请求
type UpdateEventRequest struct {
	Name        *string `json:"name"        binding:"omitempty,max=100"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Place       *string `json:"place"       binding:"omitempty,max=100"`
	StartTime   *int    `json:"start_time"  binding:"omitempty,min=0,max=2359"`
	EndTime     *int    `json:"end_time"    binding:"omitempty,min=0,max=2359"`
}

// EventResponse イベント信息响应
type EventResponse struct {
	ID          uint   `json:"event_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Place       string `json:"place"`
	StartTime   int    `json:"start_time"`
	EndTime     int    `json:"end_time"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// CreateEntryRequest 出場登録请求
type CreateEntryRequest struct {
	StudentID uint   `json:"student_id" binding:"required"`
	EventID   uint   `json:"event_id"   binding:"required"`
	Role      string `json:"role"       binding:"omitempty,max=50"`
}

// EntryResponse 出場登録响应
type EntryResponse struct {
	ID        uint           `json:"entry_id"`
	StudentID uint           `json:"student_id"`
	EventID   uint           `json:"event_id"`
	Role      string         `json:"role"`
	Event     *EventResponse `json:"event,omitempty"`
	CreatedAt string         `json:"created_at"`
}

// EventListRequest イベント一覧查询参数；student_num 仅用于审计记录
type EventListRequest struct {
	StudentNum string `form:"student_num" binding:"omitempty,max=20"`
}
