package repository

import (
	"gorm.io/gorm"
)

// deleteOwnedChild removes one child row scoped to its parent. A child that
// exists under a different parent is indistinguishable from a missing one.
func deleteOwnedChild(db *gorm.DB, model interface{}, parentColumn string, parentID, childID uint) error {
	result := db.Where("id = ? AND "+parentColumn+" = ?", childID, parentID).Delete(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
