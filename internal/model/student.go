package model

// Student 生徒表 — 对应 students
// StudentID 创建后不可变；StudentNum 为对外使用的学籍番号
type Student struct {
	StudentID     uint   `gorm:"primaryKey;autoIncrement"            json:"student_id"`
	StudentNum    string `gorm:"type:varchar(20);not null;uniqueIndex" json:"student_num"`
	ClassCode     string `gorm:"type:varchar(20);not null;index"       json:"class_code"`
	AttendanceNum int    `gorm:"not null;default:0"                    json:"attendance_num"`
	Name          string `gorm:"type:varchar(100);not null"            json:"name"`
	BaseModel
}

// TableName 指定表名
func (Student) TableName() string { return "students" }
