package model

// RecreationStatusScheduled 新建レクリエーション的默认状态
const RecreationStatusScheduled = "scheduled"

// Recreation レクリエーション枠表 — 对应 recreations
// StartTime/EndTime 为 HHMM 编码（910 = 09:10），MaxParticipants >= 0
type Recreation struct {
	RecreationID    uint    `gorm:"primaryKey;autoIncrement"                     json:"recreation_id"`
	Title           string  `gorm:"type:varchar(100);not null"                   json:"title"`
	Description     *string `gorm:"type:text"                                    json:"description,omitempty"`
	Location        string  `gorm:"type:varchar(100)"                            json:"location"`
	StartTime       int     `gorm:"not null"                                     json:"start_time"`
	EndTime         int     `gorm:"not null"                                     json:"end_time"`
	MaxParticipants int     `gorm:"not null;default:0"                           json:"max_participants"`
	Status          string  `gorm:"type:varchar(20);not null;default:'scheduled'" json:"status"`
	BaseModel
}

// TableName 指定表名
func (Recreation) TableName() string { return "recreations" }
