package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dreamspace-builders/site-backend/internal/enquiries/domain"
)

// PostgresRepo stores enquiries in the contact_messages table.
type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Create(ctx context.Context, in domain.NewEnquiry) (string, error) {
	const q = `
insert into contact_messages (name, email, phone, subject, message, created_at)
values ($1, $2, $3, $4, $5, now())
returning id::text;
`
	var id string
	if err := r.db.QueryRow(ctx, q, in.Name, in.Email, in.Phone, in.Subject, in.Message).Scan(&id); err != nil {
		return "", mapErr("create enquiry", err)
	}
	return id, nil
}

// List returns every enquiry, newest first. Rows without created_at sort
// last.
func (r *PostgresRepo) List(ctx context.Context) ([]domain.Enquiry, error) {
	const q = `
select id::text, name, email, phone, subject, message, created_at, read
from contact_messages
order by created_at desc nulls last, id;
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, mapErr("list enquiries", err)
	}
	defer rows.Close()

	out := make([]domain.Enquiry, 0, 32)
	for rows.Next() {
		var e domain.Enquiry
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.Phone, &e.Subject, &e.Message, &e.CreatedAt, &e.Read); err != nil {
			return nil, mapErr("scan enquiry", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("scan enquiry", err)
	}
	return out, nil
}

// MarkReadBatch flags the given unread enquiries as read in one statement.
func (r *PostgresRepo) MarkReadBatch(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx,
		`update contact_messages set read = true where id::text = any($1) and not read;`, ids)
	if err != nil {
		return 0, mapErr("mark enquiries read", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `delete from contact_messages where id::text = $1;`, id)
	if err != nil {
		return mapErr("delete enquiry", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete enquiry %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
