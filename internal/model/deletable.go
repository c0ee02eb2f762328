package model

import "time"

// Deletable 支持回收站语义的实体（软删除 / 恢复 / 永久删除）
type Deletable interface {
	Restore()
	Deleted() bool
}

// SoftDelete 软删除字段，嵌入到需要回收站的实体中
type SoftDelete struct {
	IsDeleted bool       `gorm:"default:false;index" json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (s *SoftDelete) Restore() {
	s.IsDeleted = false
	s.DeletedAt = nil
}

func (s *SoftDelete) Deleted() bool {
	return s.IsDeleted
}
