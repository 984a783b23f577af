package reconcile

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"atelier/internal/models"

	"gorm.io/gorm"
)

// ResolveTags resolves a parsed skills collection against the SkillReference
// catalog inside the caller's transaction. All inputs are validated before
// any catalog row is created, so a late rejection never leaves an orphan
// entry. Unknown IDs reject the batch listing every missing ID; duplicate
// names (case-insensitive) reject the batch; names matching an existing row
// case-insensitively resolve to that row. Validation failures come back as
// models.FieldErrors keyed by field.
func ResolveTags(tx *gorm.DB, field string, inputs []TagInput) ([]models.SkillReference, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	var ids []uint
	var names []string
	seenNames := make(map[string]struct{})
	for _, in := range inputs {
		switch in.Kind {
		case TagByID:
			ids = append(ids, in.ID)
		case TagByName:
			folded := strings.ToLower(in.Name)
			if _, dup := seenNames[folded]; dup {
				return nil, models.NewFieldError(field, "Duplicate skill names are not allowed")
			}
			seenNames[folded] = struct{}{}
			names = append(names, in.Name)
		}
	}

	byID := make(map[uint]models.SkillReference)
	if len(ids) > 0 {
		var existing []models.SkillReference
		if err := tx.Where("id IN ?", ids).Find(&existing).Error; err != nil {
			return nil, err
		}
		for _, ref := range existing {
			byID[ref.ID] = ref
		}

		var missing []uint
		seenMissing := make(map[uint]struct{})
		for _, id := range ids {
			if _, ok := byID[id]; ok {
				continue
			}
			if _, dup := seenMissing[id]; dup {
				continue
			}
			seenMissing[id] = struct{}{}
			missing = append(missing, id)
		}
		if len(missing) > 0 {
			sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
			parts := make([]string, len(missing))
			for i, id := range missing {
				parts[i] = fmt.Sprintf("%d", id)
			}
			return nil, models.NewFieldError(field,
				fmt.Sprintf("The following skill IDs do not exist: %s", strings.Join(parts, ", ")))
		}
	}

	byName := make(map[string]models.SkillReference)
	if len(names) > 0 {
		lowered := make([]string, len(names))
		for i, name := range names {
			lowered[i] = strings.ToLower(name)
		}
		var existing []models.SkillReference
		if err := tx.Where("LOWER(name) IN ?", lowered).Find(&existing).Error; err != nil {
			return nil, err
		}
		for _, ref := range existing {
			byName[strings.ToLower(ref.Name)] = ref
		}
	}

	// Validation is complete; catalog rows may now be created.
	resolved := make([]models.SkillReference, 0, len(inputs))
	for _, in := range inputs {
		switch in.Kind {
		case TagByID:
			resolved = append(resolved, byID[in.ID])
		case TagByName:
			folded := strings.ToLower(in.Name)
			if ref, ok := byName[folded]; ok {
				resolved = append(resolved, ref)
				continue
			}
			ref := models.SkillReference{Name: in.Name, Icon: ""}
			if err := tx.Create(&ref).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					// A concurrent request won the insert; the name now
					// resolves, so a retry succeeds.
					return nil, models.NewFieldError(field,
						fmt.Sprintf("Skill %q was just created by another request, please retry", in.Name))
				}
				return nil, err
			}
			byName[folded] = ref
			resolved = append(resolved, ref)
		}
	}
	return resolved, nil
}
