package model

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// ParticipationStatus 参加状态（封闭集合）
type ParticipationStatus string

const (
	StatusRegistered ParticipationStatus = "registered"
	StatusCancelled  ParticipationStatus = "cancelled"
	StatusConfirmed  ParticipationStatus = "confirmed"
)

// ActiveStatuses 占用名额的状态
var ActiveStatuses = []ParticipationStatus{StatusRegistered, StatusConfirmed}

// ParseParticipationStatus 将外部字符串转换为 ParticipationStatus
func ParseParticipationStatus(s string) (ParticipationStatus, error) {
	st := ParticipationStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("未知的参加状态: %q", s)
	}
	return st, nil
}

// Valid 是否属于封闭集合
func (s ParticipationStatus) Valid() bool {
	switch s {
	case StatusRegistered, StatusCancelled, StatusConfirmed:
		return true
	}
	return false
}

// IsActive registered 与 confirmed 计入定员
func (s ParticipationStatus) IsActive() bool {
	return s == StatusRegistered || s == StatusConfirmed
}

// Value 写库时校验取值
func (s ParticipationStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("非法的参加状态: %q", string(s))
	}
	return string(s), nil
}

// Scan 读库时拒绝集合外的值
func (s *ParticipationStatus) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("ParticipationStatus.Scan: unsupported type %T", src)
	}
	st, err := ParseParticipationStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// Participation 参加表 — 对应 participations，(student_id, recreation_id) 唯一
type Participation struct {
	ParticipationID uint                `gorm:"primaryKey;autoIncrement"                          json:"participation_id"`
	StudentID       uint                `gorm:"not null;uniqueIndex:idx_participation_pair"       json:"student_id"`
	RecreationID    uint                `gorm:"not null;uniqueIndex:idx_participation_pair;index" json:"recreation_id"`
	Status          ParticipationStatus `gorm:"type:varchar(20);not null;default:'registered'"    json:"status"`
	RegisteredAt    time.Time           `gorm:"not null"                                          json:"registered_at"`
	BaseModel

	// 关联
	Student    *Student    `gorm:"foreignKey:StudentID;references:StudentID"       json:"student,omitempty"`
	Recreation *Recreation `gorm:"foreignKey:RecreationID;references:RecreationID" json:"recreation,omitempty"`
}

// TableName 指定表名
func (Participation) TableName() string { return "participations" }
