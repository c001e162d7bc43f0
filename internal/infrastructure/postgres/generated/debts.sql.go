package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createDebt = `-- name: CreateDebt :one
INSERT INTO debts (id, creditor_id, counterparty_id, counterparty_owner_id, direction, base_amount, original_amount, paid, paid_at, due_date, notes, disputed, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING id, creditor_id, counterparty_id, counterparty_owner_id, direction, base_amount, original_amount, paid, paid_at, due_date, notes, disputed, created_at, updated_at
`

type CreateDebtParams struct {
	ID                  string             `json:"id"`
	CreditorID          string             `json:"creditor_id"`
	CounterpartyID      string             `json:"counterparty_id"`
	CounterpartyOwnerID string             `json:"counterparty_owner_id"`
	Direction           string             `json:"direction"`
	BaseAmount          pgtype.Numeric     `json:"base_amount"`
	OriginalAmount      pgtype.Numeric     `json:"original_amount"`
	Paid                bool               `json:"paid"`
	PaidAt              pgtype.Timestamptz `json:"paid_at"`
	DueDate             pgtype.Timestamptz `json:"due_date"`
	Notes               string             `json:"notes"`
	Disputed            bool               `json:"disputed"`
	CreatedAt           pgtype.Timestamptz `json:"created_at"`
	UpdatedAt           pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateDebt(ctx context.Context, arg CreateDebtParams) (Debt, error) {
	row := q.db.QueryRow(ctx, createDebt,
		arg.ID,
		arg.CreditorID,
		arg.CounterpartyID,
		arg.CounterpartyOwnerID,
		arg.Direction,
		arg.BaseAmount,
		arg.OriginalAmount,
		arg.Paid,
		arg.PaidAt,
		arg.DueDate,
		arg.Notes,
		arg.Disputed,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	var i Debt
	err := row.Scan(
		&i.ID,
		&i.CreditorID,
		&i.CounterpartyID,
		&i.CounterpartyOwnerID,
		&i.Direction,
		&i.BaseAmount,
		&i.OriginalAmount,
		&i.Paid,
		&i.PaidAt,
		&i.DueDate,
		&i.Notes,
		&i.Disputed,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const deleteDebt = `-- name: DeleteDebt :execrows
DELETE FROM debts WHERE id = $1
`

func (q *Queries) DeleteDebt(ctx context.Context, id string) (int64, error) {
	result, err := q.db.Exec(ctx, deleteDebt, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const findOpenDebtForUpdate = `-- name: FindOpenDebtForUpdate :one
SELECT id, creditor_id, counterparty_id, counterparty_owner_id, direction, base_amount, original_amount, paid, paid_at, due_date, notes, disputed, created_at, updated_at FROM debts
WHERE creditor_id = $1
  AND counterparty_id = $2
  AND direction = $3
  AND NOT paid
  AND ($4::boolean OR NOT disputed)
ORDER BY created_at DESC, id DESC
LIMIT 1
FOR UPDATE
`

type FindOpenDebtForUpdateParams struct {
	CreditorID     string `json:"creditor_id"`
	CounterpartyID string `json:"counterparty_id"`
	Direction      string `json:"direction"`
	Column4        bool   `json:"column_4"`
}

func (q *Queries) FindOpenDebtForUpdate(ctx context.Context, arg FindOpenDebtForUpdateParams) (Debt, error) {
	row := q.db.QueryRow(ctx, findOpenDebtForUpdate,
		arg.CreditorID,
		arg.CounterpartyID,
		arg.Direction,
		arg.Column4,
	)
	var i Debt
	err := row.Scan(
		&i.ID,
		&i.CreditorID,
		&i.CounterpartyID,
		&i.CounterpartyOwnerID,
		&i.Direction,
		&i.BaseAmount,
		&i.OriginalAmount,
		&i.Paid,
		&i.PaidAt,
		&i.DueDate,
		&i.Notes,
		&i.Disputed,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getDebtByID = `-- name: GetDebtByID :one
SELECT id, creditor_id, counterparty_id, counterparty_owner_id, direction, base_amount, original_amount, paid, paid_at, due_date, notes, disputed, created_at, updated_at FROM debts WHERE id = $1
`

func (q *Queries) GetDebtByID(ctx context.Context, id string) (Debt, error) {
	row := q.db.QueryRow(ctx, getDebtByID, id)
	var i Debt
	err := row.Scan(
		&i.ID,
		&i.CreditorID,
		&i.CounterpartyID,
		&i.CounterpartyOwnerID,
		&i.Direction,
		&i.BaseAmount,
		&i.OriginalAmount,
		&i.Paid,
		&i.PaidAt,
		&i.DueDate,
		&i.Notes,
		&i.Disputed,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getDebtByIDForUpdate = `-- name: GetDebtByIDForUpdate :one
SELECT id, creditor_id, counterparty_id, counterparty_owner_id, direction, base_amount, original_amount, paid, paid_at, due_date, notes, disputed, created_at, updated_at FROM debts WHERE id = $1 FOR UPDATE
`

func (q *Queries) GetDebtByIDForUpdate(ctx context.Context, id string) (Debt, error) {
	row := q.db.QueryRow(ctx, getDebtByIDForUpdate, id)
	var i Debt
	err := row.Scan(
		&i.ID,
		&i.CreditorID,
		&i.CounterpartyID,
		&i.CounterpartyOwnerID,
		&i.Direction,
		&i.BaseAmount,
		&i.OriginalAmount,
		&i.Paid,
		&i.PaidAt,
		&i.DueDate,
		&i.Notes,
		&i.Disputed,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listAllDebts = `-- name: ListAllDebts :many
SELECT id, creditor_id, counterparty_id, counterparty_owner_id, direction, base_amount, original_amount, paid, paid_at, due_date, notes, disputed, created_at, updated_at FROM debts
ORDER BY created_at DESC, id DESC
LIMIT $1 OFFSET $2
`

type ListAllDebtsParams struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

func (q *Queries) ListAllDebts(ctx context.Context, arg ListAllDebtsParams) ([]Debt, error) {
	rows, err := q.db.Query(ctx, listAllDebts, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Debt{}
	for rows.Next() {
		var i Debt
		if err := rows.Scan(
			&i.ID,
			&i.CreditorID,
			&i.CounterpartyID,
			&i.CounterpartyOwnerID,
			&i.Direction,
			&i.BaseAmount,
			&i.OriginalAmount,
			&i.Paid,
			&i.PaidAt,
			&i.DueDate,
			&i.Notes,
			&i.Disputed,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const listDebtsForActor = `-- name: ListDebtsForActor :many
SELECT id, creditor_id, counterparty_id, counterparty_owner_id, direction, base_amount, original_amount, paid, paid_at, due_date, notes, disputed, created_at, updated_at FROM debts
WHERE (creditor_id = $1::text OR counterparty_owner_id = $1::text)
  AND ($2::text = '' OR counterparty_id = $2::text)
  AND (
    $3::text = ''
    OR (creditor_id = $1::text AND direction = $3::text)
    OR (creditor_id <> $1::text AND direction <> $3::text)
  )
  AND (
    $4::text IN ('', 'all')
    OR ($4::text = 'open' AND NOT paid)
    OR ($4::text = 'settled' AND paid)
  )
ORDER BY created_at DESC, id DESC
LIMIT $5 OFFSET $6
`

type ListDebtsForActorParams struct {
	ActorID        string `json:"actor_id"`
	CounterpartyID string `json:"counterparty_id"`
	Direction      string `json:"direction"`
	Status         string `json:"status"`
	RowLimit       int32  `json:"row_limit"`
	RowOffset      int32  `json:"row_offset"`
}

func (q *Queries) ListDebtsForActor(ctx context.Context, arg ListDebtsForActorParams) ([]Debt, error) {
	rows, err := q.db.Query(ctx, listDebtsForActor,
		arg.ActorID,
		arg.CounterpartyID,
		arg.Direction,
		arg.Status,
		arg.RowLimit,
		arg.RowOffset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Debt{}
	for rows.Next() {
		var i Debt
		if err := rows.Scan(
			&i.ID,
			&i.CreditorID,
			&i.CounterpartyID,
			&i.CounterpartyOwnerID,
			&i.Direction,
			&i.BaseAmount,
			&i.OriginalAmount,
			&i.Paid,
			&i.PaidAt,
			&i.DueDate,
			&i.Notes,
			&i.Disputed,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const lockRelationship = `-- name: LockRelationship :exec
SELECT pg_advisory_xact_lock(hashtext($1::text))
`

func (q *Queries) LockRelationship(ctx context.Context, dollar_1 string) error {
	_, err := q.db.Exec(ctx, lockRelationship, dollar_1)
	return err
}

const updateDebt = `-- name: UpdateDebt :execrows
UPDATE debts
SET counterparty_owner_id = $2,
    original_amount = $3,
    paid = $4,
    paid_at = $5,
    due_date = $6,
    notes = $7,
    disputed = $8,
    updated_at = $9
WHERE id = $1
`

type UpdateDebtParams struct {
	ID                  string             `json:"id"`
	CounterpartyOwnerID string             `json:"counterparty_owner_id"`
	OriginalAmount      pgtype.Numeric     `json:"original_amount"`
	Paid                bool               `json:"paid"`
	PaidAt              pgtype.Timestamptz `json:"paid_at"`
	DueDate             pgtype.Timestamptz `json:"due_date"`
	Notes               string             `json:"notes"`
	Disputed            bool               `json:"disputed"`
	UpdatedAt           pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateDebt(ctx context.Context, arg UpdateDebtParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateDebt,
		arg.ID,
		arg.CounterpartyOwnerID,
		arg.OriginalAmount,
		arg.Paid,
		arg.PaidAt,
		arg.DueDate,
		arg.Notes,
		arg.Disputed,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
