package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createActivity = `-- name: CreateActivity :exec
INSERT INTO activity_log (id, actor_id, action, debt_id, resource_id, amount, details, request_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

type CreateActivityParams struct {
	ID         string             `json:"id"`
	ActorID    string             `json:"actor_id"`
	Action     string             `json:"action"`
	DebtID     string             `json:"debt_id"`
	ResourceID string             `json:"resource_id"`
	Amount     pgtype.Numeric     `json:"amount"`
	Details    []byte             `json:"details"`
	RequestID  string             `json:"request_id"`
	CreatedAt  pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateActivity(ctx context.Context, arg CreateActivityParams) error {
	_, err := q.db.Exec(ctx, createActivity,
		arg.ID,
		arg.ActorID,
		arg.Action,
		arg.DebtID,
		arg.ResourceID,
		arg.Amount,
		arg.Details,
		arg.RequestID,
		arg.CreatedAt,
	)
	return err
}

const listActivity = `-- name: ListActivity :many
SELECT id, actor_id, action, debt_id, resource_id, amount, details, request_id, created_at FROM activity_log
WHERE ($1::text = '' OR actor_id = $1::text)
  AND ($2::text = '' OR debt_id = $2::text)
  AND ($3::text = '' OR action = $3::text)
ORDER BY created_at DESC, id DESC
LIMIT $4 OFFSET $5
`

type ListActivityParams struct {
	ActorID   string `json:"actor_id"`
	DebtID    string `json:"debt_id"`
	Action    string `json:"action"`
	RowLimit  int32  `json:"row_limit"`
	RowOffset int32  `json:"row_offset"`
}

func (q *Queries) ListActivity(ctx context.Context, arg ListActivityParams) ([]ActivityLog, error) {
	rows, err := q.db.Query(ctx, listActivity,
		arg.ActorID,
		arg.DebtID,
		arg.Action,
		arg.RowLimit,
		arg.RowOffset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ActivityLog{}
	for rows.Next() {
		var i ActivityLog
		if err := rows.Scan(
			&i.ID,
			&i.ActorID,
			&i.Action,
			&i.DebtID,
			&i.ResourceID,
			&i.Amount,
			&i.Details,
			&i.RequestID,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
