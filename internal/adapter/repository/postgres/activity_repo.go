package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/infrastructure/postgres/generated"
)

// ActivityRepository persists the activity log.
type ActivityRepository struct {
	queries *generated.Queries
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return newActivityRepository(pool)
}

func newActivityRepository(db generated.DBTX) *ActivityRepository {
	return &ActivityRepository{queries: generated.New(db)}
}

// Create inserts a new activity entry
func (r *ActivityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}

	var details []byte
	if activity.Details != nil {
		var err error
		details, err = json.Marshal(activity.Details)
		if err != nil {
			return err
		}
	}

	return r.queries.CreateActivity(ctx, generated.CreateActivityParams{
		ID:         activity.ID,
		ActorID:    activity.ActorID,
		Action:     string(activity.Action),
		DebtID:     activity.DebtID,
		ResourceID: activity.ResourceID,
		Amount:     optionalNumeric(activity.Amount),
		Details:    details,
		RequestID:  activity.RequestID,
		CreatedAt:  timeToPgTimestamptz(activity.CreatedAt),
	})
}

// List retrieves activity entries with filtering, newest first
func (r *ActivityRepository) List(ctx context.Context, filter domain.ActivityFilter) ([]*domain.Activity, error) {
	rows, err := r.queries.ListActivity(ctx, generated.ListActivityParams{
		ActorID:   filter.ActorID,
		DebtID:    filter.DebtID,
		Action:    string(filter.Action),
		RowLimit:  pageLimit(filter.Limit),
		RowOffset: int32(filter.Offset),
	})
	if err != nil {
		return nil, err
	}

	activities := make([]*domain.Activity, 0, len(rows))
	for _, row := range rows {
		var details domain.JSON
		if len(row.Details) > 0 {
			_ = json.Unmarshal(row.Details, &details)
		}

		activities = append(activities, &domain.Activity{
			ID:         row.ID,
			ActorID:    row.ActorID,
			Action:     domain.ActivityAction(row.Action),
			DebtID:     row.DebtID,
			ResourceID: row.ResourceID,
			Amount:     numericPtr(row.Amount),
			Details:    details,
			RequestID:  row.RequestID,
			CreatedAt:  row.CreatedAt.Time,
		})
	}

	return activities, nil
}
