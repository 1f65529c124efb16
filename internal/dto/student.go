package dto

// ── 生徒模块 DTO ──

// StudentListRequest 生徒列表查询参数
type StudentListRequest struct {
	ClassCode string `form:"class_code" binding:"omitempty,max=20"`
	PaginationRequest
}

// StudentResponse 生徒信息响应
type StudentResponse struct {
	ID            uint   `json:"student_id"`
	StudentNum    string `json:"student_num"`
	ClassCode     string `json:"class_code"`
	AttendanceNum int    `json:"attendance_num"`
	Name          string `json:"name"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// StudentBrief 参加记录中附带的生徒摘要
type StudentBrief struct {
	ID         uint   `json:"student_id"`
	StudentNum string `json:"student_num"`
	ClassCode  string `json:"class_code"`
	Name       string `json:"name"`
}

// ImportRowError 导入时单行的校验错误
type ImportRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportStudentsResponse 批量导入结果
type ImportStudentsResponse struct {
	Imported int              `json:"imported"`
	Errors   []ImportRowError `json:"errors,omitempty"`
}
