package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/domain"
)

const placeColumns = `id, title, description, address, lat, lon, url, date,
	security, interior, age, rating, floors, images`

// PlaceRepo implements ports.PlaceRepository on SQLite.
type PlaceRepo struct {
	db *DB
}

// NewPlaceRepo creates a new PlaceRepo.
func NewPlaceRepo(db *DB) *PlaceRepo {
	return &PlaceRepo{db: db}
}

// UpsertBatch writes every place in one transaction. The slice index is
// stored as the place position so List returns dataset order.
func (r *PlaceRepo) UpsertBatch(ctx context.Context, places []domain.Place) error {
	tx, err := r.db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO places (`+placeColumns+`, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET title = excluded.title, description = excluded.description,
		    address = excluded.address, lat = excluded.lat, lon = excluded.lon,
		    url = excluded.url, date = excluded.date,
		    security = excluded.security, interior = excluded.interior,
		    age = excluded.age, rating = excluded.rating, floors = excluded.floors,
		    images = excluded.images, position = excluded.position,
		    updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
	`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for i, p := range places {
		images, err := marshalImages(p.Images)
		if err != nil {
			return fmt.Errorf("place %d: %w", p.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			p.ID, p.Title, p.Description, p.Address, p.Lat, p.Lon, p.URL, p.Date,
			p.Security, p.Interior, p.Age, p.Rating, p.Floors, images, i,
		); err != nil {
			return fmt.Errorf("upsert place %d: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// List returns every place in dataset order.
func (r *PlaceRepo) List(ctx context.Context) ([]domain.Place, error) {
	rows, err := r.db.SQL.QueryContext(ctx, `SELECT `+placeColumns+` FROM places ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var places []domain.Place
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}
		places = append(places, p)
	}
	return places, rows.Err()
}

// GetByID returns one place or domain.ErrPlaceNotFound.
func (r *PlaceRepo) GetByID(ctx context.Context, id int) (*domain.Place, error) {
	row := r.db.SQL.QueryRowContext(ctx, `SELECT `+placeColumns+` FROM places WHERE id = ?`, id)
	p, err := scanPlace(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("place %d: %w", id, domain.ErrPlaceNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Count returns the number of stored places.
func (r *PlaceRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.SQL.QueryRowContext(ctx, `SELECT count(*) FROM places`).Scan(&n)
	return n, err
}

// DeleteMissing removes places whose id is not in keep. The ids go through a
// temporary table so large datasets stay under the bound parameter limit.
func (r *PlaceRepo) DeleteMissing(ctx context.Context, keep []int) (int, error) {
	tx, err := r.db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `CREATE TEMP TABLE IF NOT EXISTS keep_ids (id INTEGER PRIMARY KEY)`); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM keep_ids`); err != nil {
		return 0, err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO keep_ids (id) VALUES (?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	for _, id := range keep {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return 0, err
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM places WHERE id NOT IN (SELECT id FROM keep_ids)`)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(n), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlace(row scanner) (domain.Place, error) {
	var p domain.Place
	var images string
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Address, &p.Lat, &p.Lon, &p.URL, &p.Date,
		&p.Security, &p.Interior, &p.Age, &p.Rating, &p.Floors, &images,
	)
	if err != nil {
		return domain.Place{}, err
	}
	if images != "" && images != "[]" {
		if err := json.Unmarshal([]byte(images), &p.Images); err != nil {
			return domain.Place{}, fmt.Errorf("place %d images: %w", p.ID, err)
		}
	}
	return p, nil
}

func marshalImages(images []domain.PlaceImage) (string, error) {
	if len(images) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(images)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
