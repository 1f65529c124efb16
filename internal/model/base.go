package model

import "time"

// BaseModel 通用时间戳字段（业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// All 返回需要建表的全部模型（SQLite AutoMigrate 与测试使用）
func All() []interface{} {
	return []interface{}{
		&Student{},
		&Event{},
		&Entry{},
		&Recreation{},
		&Participation{},
		&DownloadLog{},
	}
}
