package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createAddition = `-- name: CreateAddition :exec
INSERT INTO debt_additions (id, debt_id, amount, notes, created_at)
VALUES ($1, $2, $3, $4, $5)
`

type CreateAdditionParams struct {
	ID        string             `json:"id"`
	DebtID    string             `json:"debt_id"`
	Amount    pgtype.Numeric     `json:"amount"`
	Notes     string             `json:"notes"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateAddition(ctx context.Context, arg CreateAdditionParams) error {
	_, err := q.db.Exec(ctx, createAddition,
		arg.ID,
		arg.DebtID,
		arg.Amount,
		arg.Notes,
		arg.CreatedAt,
	)
	return err
}

const createPayment = `-- name: CreatePayment :exec
INSERT INTO payments (id, debt_id, amount, notes, created_at)
VALUES ($1, $2, $3, $4, $5)
`

type CreatePaymentParams struct {
	ID        string             `json:"id"`
	DebtID    string             `json:"debt_id"`
	Amount    pgtype.Numeric     `json:"amount"`
	Notes     string             `json:"notes"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreatePayment(ctx context.Context, arg CreatePaymentParams) error {
	_, err := q.db.Exec(ctx, createPayment,
		arg.ID,
		arg.DebtID,
		arg.Amount,
		arg.Notes,
		arg.CreatedAt,
	)
	return err
}

const deleteAddition = `-- name: DeleteAddition :one
DELETE FROM debt_additions WHERE id = $1 AND debt_id = $2
RETURNING id, debt_id, amount, notes, created_at
`

type DeleteAdditionParams struct {
	ID     string `json:"id"`
	DebtID string `json:"debt_id"`
}

func (q *Queries) DeleteAddition(ctx context.Context, arg DeleteAdditionParams) (DebtAddition, error) {
	row := q.db.QueryRow(ctx, deleteAddition, arg.ID, arg.DebtID)
	var i DebtAddition
	err := row.Scan(
		&i.ID,
		&i.DebtID,
		&i.Amount,
		&i.Notes,
		&i.CreatedAt,
	)
	return i, err
}

const listAdditionsByDebt = `-- name: ListAdditionsByDebt :many
SELECT id, debt_id, amount, notes, created_at FROM debt_additions WHERE debt_id = $1 ORDER BY created_at, id
`

func (q *Queries) ListAdditionsByDebt(ctx context.Context, debtID string) ([]DebtAddition, error) {
	rows, err := q.db.Query(ctx, listAdditionsByDebt, debtID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []DebtAddition{}
	for rows.Next() {
		var i DebtAddition
		if err := rows.Scan(
			&i.ID,
			&i.DebtID,
			&i.Amount,
			&i.Notes,
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

const listPaymentsByDebt = `-- name: ListPaymentsByDebt :many
SELECT id, debt_id, amount, notes, created_at FROM payments WHERE debt_id = $1 ORDER BY created_at, id
`

func (q *Queries) ListPaymentsByDebt(ctx context.Context, debtID string) ([]Payment, error) {
	rows, err := q.db.Query(ctx, listPaymentsByDebt, debtID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Payment{}
	for rows.Next() {
		var i Payment
		if err := rows.Scan(
			&i.ID,
			&i.DebtID,
			&i.Amount,
			&i.Notes,
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

const sumAdditionsByDebts = `-- name: SumAdditionsByDebts :many
SELECT debt_id, SUM(amount)::numeric AS total
FROM debt_additions
WHERE debt_id = ANY($1::text[])
GROUP BY debt_id
`

type SumAdditionsByDebtsRow struct {
	DebtID string         `json:"debt_id"`
	Total  pgtype.Numeric `json:"total"`
}

func (q *Queries) SumAdditionsByDebts(ctx context.Context, dollar_1 []string) ([]SumAdditionsByDebtsRow, error) {
	rows, err := q.db.Query(ctx, sumAdditionsByDebts, dollar_1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []SumAdditionsByDebtsRow{}
	for rows.Next() {
		var i SumAdditionsByDebtsRow
		if err := rows.Scan(&i.DebtID, &i.Total); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const sumPaymentsByDebts = `-- name: SumPaymentsByDebts :many
SELECT debt_id, SUM(amount)::numeric AS total
FROM payments
WHERE debt_id = ANY($1::text[])
GROUP BY debt_id
`

type SumPaymentsByDebtsRow struct {
	DebtID string         `json:"debt_id"`
	Total  pgtype.Numeric `json:"total"`
}

func (q *Queries) SumPaymentsByDebts(ctx context.Context, dollar_1 []string) ([]SumPaymentsByDebtsRow, error) {
	rows, err := q.db.Query(ctx, sumPaymentsByDebts, dollar_1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []SumPaymentsByDebtsRow{}
	for rows.Next() {
		var i SumPaymentsByDebtsRow
		if err := rows.Scan(&i.DebtID, &i.Total); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
