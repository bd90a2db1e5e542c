package workorder

import (
	"fmt"
	"log"

	"github.com/zulandar/shopline/internal/event"
	"github.com/zulandar/shopline/internal/job"
	"github.com/zulandar/shopline/internal/models"
	"gorm.io/gorm"
)

// ReconcileSplits repairs partial orders whose remainder is missing.
// With transactional stores the split commits as a unit and this pass
// finds nothing; it exists so a detected inconsistency is repaired
// rather than silently dropped. Remainder creation is keyed by the
// originating order's ID, so running the pass twice never creates two
// remainders. Returns the number of repairs made.
func ReconcileSplits(db *gorm.DB) (int, error) {
	var partials []models.WorkOrder
	err := db.Where("status = ?", models.StatusPartial).
		Where("id NOT IN (?)", db.Model(&models.WorkOrder{}).
			Select("origin_id").Where("origin_id IS NOT NULL")).
		Find(&partials).Error
	if err != nil {
		return 0, fmt.Errorf("workorder: find orphaned partials: %w", err)
	}

	repaired := 0
	for _, p := range partials {
		p := p
		err := db.Transaction(func(tx *gorm.DB) error {
			// Re-check inside the transaction; another pass may have won.
			var count int64
			if err := tx.Model(&models.WorkOrder{}).
				Where("origin_id = ?", p.ID).Count(&count).Error; err != nil {
				return fmt.Errorf("workorder: recheck remainder for %s: %w", p.ID, err)
			}
			if count > 0 {
				return nil
			}

			correlationID, err := event.NewCorrelationID()
			if err != nil {
				return err
			}
			if _, err := createRemainder(tx, &p, "reconciler", correlationID); err != nil {
				return fmt.Errorf("repair %s: %w", p.ID, ErrPartialSplitInconsistency)
			}
			if _, err := job.Refresh(tx, p.JobID); err != nil {
				return err
			}
			repaired++
			return nil
		})
		if err != nil {
			log.Printf("reconcile: %v", err)
			continue
		}
	}
	return repaired, nil
}
