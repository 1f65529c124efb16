package dto

// ── レクリエーション模块 DTO ──

// CreateRecreationRequest 创建レクリエーション请求（时间为 HHMM 整数）
type CreateRecreationRequest struct {
	Title           string  `json:"title"            binding:"required,max=100"`
	Description     *string `json:"description"      binding:"omitempty,max=2000"`
	Location        string  `json:"location"         binding:"omitempty,max=100"`
	StartTime       int     `json:"start_time"       binding:"min=0,max=2359"`
	EndTime         int     `json:"end_time"         binding:"min=0,max=2359"`
	MaxParticipants int     `json:"max_participants" binding:"min=0"`
	Status          string  `json:"status"           binding:"omitempty,max=20"`
}

// UpdateRecreationRequest 更新レクリエーション请求（字段均可选）
type UpdateRecreationRequest struct {
	Title           *string `json:"title"            binding:"omitempty,max=100"`
	Description     *string `json:"description"      binding:"omitempty,max=2000"`
	Location        *string `json:"location"         binding:"omitempty,max=100"`
	StartTime       *int    `json:"start_time"       binding:"omitempty,min=0,max=2359"`
	EndTime         *int    `json:"end_time"         binding:"omitempty,min=0,max=2359"`
	MaxParticipants *int    `json:"max_participants" binding:"omitempty,min=0"`
	Status          *string `json:"status"           binding:"omitempty,max=20"`
}

// RecreationListRequest レクリエーション列表查询参数
type RecreationListRequest struct {
	Status string `form:"status" binding:"omitempty,max=20"`
}

// RecreationResponse レクリエーション信息响应
type RecreationResponse struct {
	ID              uint    `json:"recreation_id"`
	Title           string  `json:"title"`
	Description     *string `json:"description,omitempty"`
	Location        string  `json:"location"`
	StartTime       int     `json:"start_time"`
	EndTime         int     `json:"end_time"`
	StartLabel      string  `json:"start_label"` // "09:10"
	EndLabel        string  `json:"end_label"`
	MaxParticipants int     `json:"max_participants"`
	ActiveCount     int64   `json:"active_count"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// RecreationBrief 参加记录中附带的レクリエーション摘要
type RecreationBrief struct {
	ID        uint   `json:"recreation_id"`
	Title     string `json:"title"`
	Location  string `json:"location"`
	StartTime int    `json:"start_time"`
	EndTime   int    `json:"end_time"`
	Status    string `json:"status"`
}
