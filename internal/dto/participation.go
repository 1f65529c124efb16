package dto

// ── 参加模块 DTO ──

// CreateParticipationRequest 参加登録请求
type CreateParticipationRequest struct {
	StudentID    uint `json:"student_id"    binding:"required"`
	RecreationID uint `json:"recreation_id" binding:"required"`
}

// ParticipationListRequest 生徒参加列表过滤条件
// From/To 接受 "HH:MM"、"HHMM" 或 RFC3339 时间，按开始时刻的分钟数比较
type ParticipationListRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=registered cancelled confirmed"`
	From   string `form:"from"   binding:"omitempty,max=40"`
	To     string `form:"to"     binding:"omitempty,max=40"`
}

// ParticipationResponse 参加记录响应
type ParticipationResponse struct {
	ID              uint             `json:"participation_id"`
	StudentID       uint             `json:"student_id"`
	RecreationID    uint             `json:"recreation_id"`
	Status          string           `json:"status"`
	IsParticipating bool             `json:"is_participating"`
	RegisteredAt    string           `json:"registered_at"`
	Student         *StudentBrief    `json:"student,omitempty"`
	Recreation      *RecreationBrief `json:"recreation,omitempty"`
	CreatedAt       string           `json:"created_at"`
	UpdatedAt       string           `json:"updated_at"`
}
