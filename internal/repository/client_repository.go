package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ai-shubham-mishra/Automated-Invoicing/internal/entity"
)

func (r *Repository) CreateClient(ctx context.Context, client entity.Client) error {
	query := `
		INSERT INTO clients (name, price_sheet_link, customer_number)
		VALUES ($1, $2, $3)`

	_, err := r.db.Exec(ctx, query,
		client.Name,
		client.PriceSheetLink,
		client.CustomerNumber,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: client %q", entity.ErrAlreadyExists, client.Name)
		}

		return fmt.Errorf("insert client: %w", err)
	}

	return nil
}

func (r *Repository) Clients(ctx context.Context) ([]entity.Client, error) {
	stmt := sq.Select("name", "price_sheet_link", "customer_number", "created_at").
		From("clients").
		OrderBy("name ASC").
		PlaceholderFormat(sq.Dollar)

	sqlQuery, args, err := stmt.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("select clients: %w", err)
	}
	defer rows.Close()

	var clients []entity.Client

	for rows.Next() {
		var client entity.Client

		err = rows.Scan(
			&client.Name,
			&client.PriceSheetLink,
			&client.CustomerNumber,
			&client.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}

		clients = append(clients, client)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return clients, nil
}

func (r *Repository) ClientByName(ctx context.Context, name string) (entity.Client, error) {
	query := `
		SELECT name, price_sheet_link, customer_number, created_at
		FROM clients
		WHERE name = $1`

	var client entity.Client

	err := r.db.QueryRow(ctx, query, name).Scan(
		&client.Name,
		&client.PriceSheetLink,
		&client.CustomerNumber,
		&client.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.Client{}, fmt.Errorf("%w: client %q", entity.ErrNotFound, name)
		}

		return entity.Client{}, err
	}

	return client, nil
}

func (r *Repository) DeleteClient(ctx context.Context, name string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM clients WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: client %q", entity.ErrNotFound, name)
	}

	return nil
}
