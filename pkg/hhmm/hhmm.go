// Package hhmm 处理以整数 HHMM 编码的一天内时刻（如 910 = 09:10）。
//
// 编码值不是线性的：跨整点加减分钟必须先换算为当天分钟数再换算回来，
// 例如 1005 减 30 分钟得到 935，而不是 975。
package hhmm

import (
	"fmt"
	"strconv"
	"time"
)

const minutesPerDay = 24 * 60

// Valid 判断 t 是否为合法的 HHMM 值（0000-2359）
func Valid(t int) bool {
	return t >= 0 && t/100 < 24 && t%100 < 60
}

// ToMinutes 将 HHMM 转为当天分钟数
func ToMinutes(t int) int {
	return (t/100)*60 + t%100
}

// FromMinutes 将分钟数转回 HHMM，超出一天的部分按 24 小时回绕
func FromMinutes(m int) int {
	m %= minutesPerDay
	if m < 0 {
		m += minutesPerDay
	}
	return (m/60)*100 + m%60
}

// Add 在 t 上增加 minutes 分钟
func Add(t, minutes int) int {
	return FromMinutes(ToMinutes(t) + minutes)
}

// Sub 在 t 上减去 minutes 分钟
func Sub(t, minutes int) int {
	return FromMinutes(ToMinutes(t) - minutes)
}

// FromTime 取 tm 在其所在时区的时刻
func FromTime(tm time.Time) int {
	return tm.Hour()*100 + tm.Minute()
}

// Format 输出 "HH:MM"
func Format(t int) string {
	return fmt.Sprintf("%02d:%02d", t/100, t%100)
}

// Parse 解析 "HH:MM" 或 "HHMM"
func Parse(s string) (int, error) {
	digits := s
	if len(s) == 5 && s[2] == ':' {
		digits = s[:2] + s[3:]
	}
	if len(digits) != 4 {
		return 0, fmt.Errorf("hhmm: 无法解析 %q", s)
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("hhmm: 无法解析 %q", s)
		}
	}
	t, _ := strconv.Atoi(digits)
	if !Valid(t) {
		return 0, fmt.Errorf("hhmm: 时刻越界 %q", s)
	}
	return t, nil
}
