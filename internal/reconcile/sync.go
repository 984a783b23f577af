package reconcile

import (
	"fmt"

	"gorm.io/gorm"
)

// Policy dictates how a child collection is synchronized when a
// reconciliation request supplies it.
type Policy int

const (
	// PolicyReplace deletes every existing child of the collection and
	// inserts the incoming set in order.
	PolicyReplace Policy = iota
	// PolicyAppend inserts the incoming set without touching existing rows;
	// removal goes through the explicit per-item delete endpoints.
	PolicyAppend
)

func (p Policy) String() string {
	switch p {
	case PolicyReplace:
		return "replace"
	case PolicyAppend:
		return "append"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// Sync applies the policy for one child collection inside the caller's
// transaction. fkColumn is the child table's parent foreign key; rows must
// already carry the server-assigned parent ID.
func Sync[T any](tx *gorm.DB, policy Policy, fkColumn string, parentID uint, rows []T) error {
	if policy == PolicyReplace {
		if err := tx.Where(fkColumn+" = ?", parentID).Delete(new(T)).Error; err != nil {
			return err
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}
