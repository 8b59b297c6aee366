package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/category/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/jmoiron/sqlx"
)

// Schema creates the categories table. It is portable between Postgres and SQLite.
const Schema = `
CREATE TABLE IF NOT EXISTS categories (
	id TEXT PRIMARY KEY,
	parent_id TEXT REFERENCES categories(id) ON DELETE SET NULL,
	name TEXT NOT NULL,
	description TEXT,
	image_url TEXT,
	level INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_categories_parent ON categories(parent_id);
`

// Parent name is denormalized onto every row by the self join.
const selectCategories = `
SELECT c.id, c.name, c.description, c.image_url, c.level, c.created_at,
       p.id AS parent_id, p.name AS parent_name
FROM categories c
LEFT JOIN categories p ON p.id = c.parent_id`

type categoryRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	ImageURL    *string        `db:"image_url"`
	Level       int            `db:"level"`
	CreatedAt   timestamp      `db:"created_at"`
	ParentID    *string        `db:"parent_id"`
	ParentName  *string        `db:"parent_name"`
}

func (r *categoryRow) toModel() model.Category {
	c := model.Category{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description.String,
		Image:       r.ImageURL,
		Level:       r.Level,
		CreatedAt:   r.CreatedAt.Time,
	}
	if r.ParentID != nil {
		c.Parent = &model.ParentRef{ID: *r.ParentID}
		if r.ParentName != nil {
			c.Parent.Name = *r.ParentName
		}
	}
	return c
}

// timestamp scans both native time values (pgx) and the text form SQLite drivers may return.
type timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func (t *timestamp) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	}
	return fmt.Errorf("cannot scan %T into timestamp", src)
}

func (t *timestamp) parse(s string) error {
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("cannot parse timestamp %q", s)
}

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(Schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := r.DB.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	var row categoryRow
	query := r.DB.Rebind(selectCategories + ` WHERE c.id = ? LIMIT 1`)
	err := r.DB.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	c := row.toModel()
	return &c, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.CategoryFilters) ([]model.Category, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f != nil {
		// ParentID filtering logic
		if f.ParentID != nil {
			if *f.ParentID == "" {
				conditions = append(conditions, "c.parent_id IS NULL")
			} else {
				conditions = append(conditions, "c.parent_id = :parent_id")
				args["parent_id"] = *f.ParentID
			}
		}
		if f.Level != nil {
			conditions = append(conditions, "c.level = :level")
			args["level"] = *f.Level
		}
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := selectCategories + whereClause + " ORDER BY c.level ASC, c.name ASC"

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer nstmt.Close()

	var rows []categoryRow
	if err := nstmt.SelectContext(ctx, &rows, args); err != nil {
		return nil, err
	}

	categories := make([]model.Category, len(rows))
	for i := range rows {
		categories[i] = rows[i].toModel()
	}
	return categories, nil
}

// Insert is used by seeding and tests; the origin API itself is read-only.
func (r *PGRepository) Insert(ctx context.Context, c *model.Category) error {
	var parentID, image interface{}
	if c.Parent != nil {
		parentID = c.Parent.ID
	}
	if c.Image != nil {
		image = *c.Image
	}
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	query := `
        INSERT INTO categories (id, parent_id, name, description, image_url, level, created_at)
        VALUES (:id, :parent_id, :name, :description, :image_url, :level, :created_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, map[string]interface{}{
		"id":          c.ID,
		"parent_id":   parentID,
		"name":        c.Name,
		"description": c.Description,
		"image_url":   image,
		"level":       c.Level,
		"created_at":  createdAt,
	})
	return err
}
