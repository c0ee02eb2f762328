package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/workshop_server/internal/model"
)

// Trash 统一的回收站操作，T 需嵌入 model.SoftDelete
type Trash[T any, PT interface {
	*T
	model.Deletable
}] struct {
	db *gorm.DB
}

func NewTrash[T any, PT interface {
	*T
	model.Deletable
}](db *gorm.DB) Trash[T, PT] {
	return Trash[T, PT]{db: db}
}

// SoftDelete 移入回收站
func (t Trash[T, PT]) SoftDelete(id int64, at time.Time) error {
	res := t.db.Model(new(T)).Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{"is_deleted": true, "deleted_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Restore 从回收站恢复
func (t Trash[T, PT]) Restore(id int64) error {
	res := t.db.Model(new(T)).Where("id = ? AND is_deleted = ?", id, true).
		Updates(map[string]interface{}{"is_deleted": false, "deleted_at": nil})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Purge 永久删除，只作用于回收站中的记录
func (t Trash[T, PT]) Purge(id int64) error {
	res := t.db.Where("id = ? AND is_deleted = ?", id, true).Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListDeletedBefore 回收站中早于 cutoff 的记录
func (t Trash[T, PT]) ListDeletedBefore(cutoff time.Time) ([]PT, error) {
	var items []PT
	err := t.db.Where("is_deleted = ? AND deleted_at < ?", true, cutoff).Find(&items).Error
	return items, err
}
