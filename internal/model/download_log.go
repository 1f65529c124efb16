package model

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// SuccessFlag 操作结果标记，库中以「成功」「失敗」存储
type SuccessFlag string

const (
	Success SuccessFlag = "成功"
	Failure SuccessFlag = "失敗"
)

// FlagOf 将布尔结果映射为 SuccessFlag
func FlagOf(ok bool) SuccessFlag {
	if ok {
		return Success
	}
	return Failure
}

// ParseSuccessFlag 将外部字符串转换为 SuccessFlag
func ParseSuccessFlag(s string) (SuccessFlag, error) {
	f := SuccessFlag(s)
	if f != Success && f != Failure {
		return "", fmt.Errorf("未知的结果标记: %q", s)
	}
	return f, nil
}

// Value 写库时校验取值
func (f SuccessFlag) Value() (driver.Value, error) {
	if f != Success && f != Failure {
		return nil, fmt.Errorf("非法的结果标记: %q", string(f))
	}
	return string(f), nil
}

// Scan 读库时拒绝集合外的值
func (f *SuccessFlag) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("SuccessFlag.Scan: unsupported type %T", src)
	}
	parsed, err := ParseSuccessFlag(raw)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// 审计日志中的功能名
const (
	FuncStudentInfo         = "学生情報取得"
	FuncEntryInfo           = "出場情報取得"
	FuncEventList           = "イベント一覧取得"
	FuncParticipationList   = "参加状況取得"
	FuncParticipationCreate = "参加登録"
	FuncParticipationCancel = "参加取消"
)

// LogStudentNumMaxLen download_logs.student_num 的列宽（字符数）
const LogStudentNumMaxLen = 20

// DownloadLog 敏感数据访问审计表 — 对应 download_logs
// 只追加不修改；冗余存储学籍番号字符串，不与 students 建立外键
type DownloadLog struct {
	LogID        uint        `gorm:"primaryKey;autoIncrement"        json:"log_id"`
	StudentNum   string      `gorm:"type:varchar(20);not null;index" json:"student_num"`
	Timestamp    time.Time   `gorm:"not null"                        json:"timestamp"`
	FunctionName string      `gorm:"type:varchar(100);not null"      json:"function_name"`
	Success      SuccessFlag `gorm:"type:varchar(10);not null"       json:"success"`
	Count        *int        `json:"count,omitempty"`
}

// TableName 指定表名
func (DownloadLog) TableName() string { return "download_logs" }
