package historysink

import "gorm.io/gorm/clause"

// onConflictUpdateStatus implements "duplicate start-call for the same
// id upserts": a second call-start for an existing
// call-id just refreshes status/purpose rather than erroring.
func onConflictUpdateStatus() clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "call_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "to_number", "from_number", "purpose"}),
	}
}
