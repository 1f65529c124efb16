package dto

// ── 分页请求 ──

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// PaginationRequest limit/offset 分页参数
type PaginationRequest struct {
	Limit  int `form:"limit"  binding:"omitempty,min=1"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// GetLimit 获取每页数量（默认 50，上限 200）
func (p *PaginationRequest) GetLimit() int {
	if p.Limit <= 0 {
		return DefaultLimit
	}
	if p.Limit > MaxLimit {
		return MaxLimit
	}
	return p.Limit
}

// GetOffset 获取偏移量（默认 0）
func (p *PaginationRequest) GetOffset() int {
	if p.Offset < 0 {
		return 0
	}
	return p.Offset
}
