package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createDispute = `-- name: CreateDispute :exec
INSERT INTO disputes (id, debt_id, raised_by, reason, message, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`

type CreateDisputeParams struct {
	ID        string             `json:"id"`
	DebtID    string             `json:"debt_id"`
	RaisedBy  string             `json:"raised_by"`
	Reason    string             `json:"reason"`
	Message   string             `json:"message"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateDispute(ctx context.Context, arg CreateDisputeParams) error {
	_, err := q.db.Exec(ctx, createDispute,
		arg.ID,
		arg.DebtID,
		arg.RaisedBy,
		arg.Reason,
		arg.Message,
		arg.CreatedAt,
	)
	return err
}

const getDisputeByIDForUpdate = `-- name: GetDisputeByIDForUpdate :one
SELECT id, debt_id, raised_by, reason, message, created_at, resolved_at, resolved_by, resolution_note FROM disputes WHERE id = $1 FOR UPDATE
`

func (q *Queries) GetDisputeByIDForUpdate(ctx context.Context, id string) (Dispute, error) {
	row := q.db.QueryRow(ctx, getDisputeByIDForUpdate, id)
	var i Dispute
	err := row.Scan(
		&i.ID,
		&i.DebtID,
		&i.RaisedBy,
		&i.Reason,
		&i.Message,
		&i.CreatedAt,
		&i.ResolvedAt,
		&i.ResolvedBy,
		&i.ResolutionNote,
	)
	return i, err
}

const getOpenDisputeByDebt = `-- name: GetOpenDisputeByDebt :one
SELECT id, debt_id, raised_by, reason, message, created_at, resolved_at, resolved_by, resolution_note FROM disputes WHERE debt_id = $1 AND resolved_at IS NULL
`

func (q *Queries) GetOpenDisputeByDebt(ctx context.Context, debtID string) (Dispute, error) {
	row := q.db.QueryRow(ctx, getOpenDisputeByDebt, debtID)
	var i Dispute
	err := row.Scan(
		&i.ID,
		&i.DebtID,
		&i.RaisedBy,
		&i.Reason,
		&i.Message,
		&i.CreatedAt,
		&i.ResolvedAt,
		&i.ResolvedBy,
		&i.ResolutionNote,
	)
	return i, err
}

const listDisputesByDebt = `-- name: ListDisputesByDebt :many
SELECT id, debt_id, raised_by, reason, message, created_at, resolved_at, resolved_by, resolution_note FROM disputes WHERE debt_id = $1 ORDER BY created_at, id
`

func (q *Queries) ListDisputesByDebt(ctx context.Context, debtID string) ([]Dispute, error) {
	rows, err := q.db.Query(ctx, listDisputesByDebt, debtID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Dispute{}
	for rows.Next() {
		var i Dispute
		if err := rows.Scan(
			&i.ID,
			&i.DebtID,
			&i.RaisedBy,
			&i.Reason,
			&i.Message,
			&i.CreatedAt,
			&i.ResolvedAt,
			&i.ResolvedBy,
			&i.ResolutionNote,
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

const resolveDispute = `-- name: ResolveDispute :execrows
UPDATE disputes
SET resolved_at = $2,
    resolved_by = $3,
    resolution_note = $4
WHERE id = $1
`

type ResolveDisputeParams struct {
	ID             string             `json:"id"`
	ResolvedAt     pgtype.Timestamptz `json:"resolved_at"`
	ResolvedBy     string             `json:"resolved_by"`
	ResolutionNote string             `json:"resolution_note"`
}

func (q *Queries) ResolveDispute(ctx context.Context, arg ResolveDisputeParams) (int64, error) {
	result, err := q.db.Exec(ctx, resolveDispute,
		arg.ID,
		arg.ResolvedAt,
		arg.ResolvedBy,
		arg.ResolutionNote,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
