package model

// Event 校内イベント表 — 对应 events
// StartTime/EndTime 为 HHMM 编码
type Event struct {
	EventID     uint   `gorm:"primaryKey;autoIncrement"   json:"event_id"`
	Name        string `gorm:"type:varchar(100);not null" json:"name"`
	Description string `gorm:"type:text"                  json:"description,omitempty"`
	Place       string `gorm:"type:varchar(100)"          json:"place"`
	StartTime   int    `gorm:"not null"                   json:"start_time"`
	EndTime     int    `gorm:"not null"                   json:"end_time"`
	BaseModel
}

// TableName 指定表名
func (Event) TableName() string { return "events" }

// Entry 出場登録表 — 对应 entries，(student_id, event_id) 唯一
type Entry struct {
	EntryID   uint   `gorm:"primaryKey;autoIncrement"                  json:"entry_id"`
	StudentID uint   `gorm:"not null;uniqueIndex:idx_entry_pair"       json:"student_id"`
	EventID   uint   `gorm:"not null;uniqueIndex:idx_entry_pair;index" json:"event_id"`
	Role      string `gorm:"type:varchar(50)"                          json:"role"`
	BaseModel

	// 关联
	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
	Event   *Event   `gorm:"foreignKey:EventID;references:EventID"     json:"event,omitempty"`
}

// TableName 指定表名
func (Entry) TableName() string { return "entries" }
