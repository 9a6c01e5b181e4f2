package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dreamspace-builders/site-backend/internal/projects/domain"
	"github.com/dreamspace-builders/site-backend/internal/storage/docstore"
)

// flagColumns whitelists the columns QueryByFlag may compare against.
var flagColumns = map[domain.Flag]string{
	domain.FlagFeatured: "featured",
	domain.FlagCategory: "category",
}

// PostgresRepo stores projects in the projects table. Arrival order is the
// seq column.
type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{db: db}
}

const projectColumns = `id::text, title, description, category, tags, featured, image_urls, author_uid, created_at`

// Create inserts p and sets p.ID to the generated id.
func (r *PostgresRepo) Create(ctx context.Context, p *domain.Project) (string, error) {
	const q = `
insert into projects (title, description, category, tags, featured, image_urls, author_uid, created_at)
values ($1, $2, $3, $4, $5, $6, $7, $8)
returning id::text;
`
	var id string
	err := r.db.QueryRow(ctx, q,
		p.Title, p.Description, string(p.Category), nonNil(p.Tags), p.Featured, nonNil(p.ImageURLs), p.AuthorUID, p.CreatedAt,
	).Scan(&id)
	if err != nil {
		return "", mapErr("create project", err)
	}
	p.ID = id
	return id, nil
}

func (r *PostgresRepo) QueryByFlag(ctx context.Context, flag domain.Flag, value any) ([]domain.Project, error) {
	v, err := domain.CheckFlagValue(flag, value)
	if err != nil {
		return nil, err
	}
	col, ok := flagColumns[flag]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidFlag, string(flag))
	}

	q := `select ` + projectColumns + ` from projects where ` + col + ` = $1;`
	rows, err := r.db.Query(ctx, q, v)
	if err != nil {
		return nil, mapErr("query projects", err)
	}
	return scanProjects(rows)
}

func (r *PostgresRepo) ListAll(ctx context.Context) ([]domain.Project, error) {
	q := `select ` + projectColumns + ` from projects order by seq asc;`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, mapErr("list projects", err)
	}
	return scanProjects(rows)
}

// ImageURLs returns every image URL referenced by any project.
func (r *PostgresRepo) ImageURLs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `select unnest(image_urls) from projects;`)
	if err != nil {
		return nil, mapErr("list image urls", err)
	}
	urls, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, mapErr("list image urls", err)
	}
	return urls, nil
}

func scanProjects(rows pgx.Rows) ([]domain.Project, error) {
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		var (
			p        domain.Project
			category string
		)
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &category, &p.Tags, &p.Featured, &p.ImageURLs, &p.AuthorUID, &p.CreatedAt); err != nil {
			return nil, mapErr("scan project", err)
		}
		p.Category = domain.Category(category)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("scan project", err)
	}
	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func mapErr(op string, err error) error {
	switch {
	case docstore.IsNotFound(err):
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case docstore.IsUnavailable(err):
		return fmt.Errorf("%s: %w: %v", op, domain.ErrUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
