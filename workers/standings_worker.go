package workers

import (
	"context"
	"log"
	"time"

	"volley-predict-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PollStandings periodically recomputes the denormalized per-group standings
// from scored predictions. Soft-deleted predictions still count — their
// points were earned on finished matches.
func PollStandings(ctx context.Context, db *gorm.DB, pollInterval time.Duration) {
	log.Println("Starting standings recompute worker...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Standings worker stopped.")
			return
		case <-ticker.C:
			if err := recomputeStandings(db); err != nil {
				log.Printf("❌ Standings recompute failed: %v", err)
			}
		}
	}
}

type standingTotal struct {
	GroupID           string
	UserID            string
	TotalPoints       int64
	PredictionsScored int64
}

func recomputeStandings(db *gorm.DB) error {
	var totals []standingTotal
	err := db.Raw(`
        SELECT
            group_id,
            user_id,
            COALESCE(SUM(points), 0) as total_points,
            COUNT(points) as predictions_scored
        FROM predictions
        WHERE points IS NOT NULL
        GROUP BY group_id, user_id
        ORDER BY group_id, total_points DESC
    `).Scan(&totals).Error
	if err != nil {
		return err
	}
	if len(totals) == 0 {
		return nil
	}

	now := time.Now().UTC()
	standings := make([]models.GroupStanding, 0, len(totals))
	rank, lastGroup := 0, ""
	for _, t := range totals {
		if t.GroupID != lastGroup {
			rank, lastGroup = 0, t.GroupID
		}
		rank++
		standings = append(standings, models.GroupStanding{
			ID:                uuid.NewString(),
			GroupID:           t.GroupID,
			UserID:            t.UserID,
			TotalPoints:       t.TotalPoints,
			PredictionsScored: t.PredictionsScored,
			Rank:              rank,
			ComputedAt:        now,
		})
	}

	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "group_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_points", "predictions_scored", "rank", "computed_at",
		}),
	}).Create(&standings).Error; err != nil {
		return err
	}

	log.Printf("✅ Recomputed standings for %d (group,user) pair(s)", len(standings))
	return nil
}
