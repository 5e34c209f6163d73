package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/domain"
)

const placeColumns = `id, title, description, address, lat, lon, url, date,
	security, interior, age, rating, floors, images`

// PlaceRepo implements ports.PlaceRepository with pgx.
type PlaceRepo struct {
	db *DB
}

// NewPlaceRepo creates a new PlaceRepo.
func NewPlaceRepo(db *DB) *PlaceRepo {
	return &PlaceRepo{db: db}
}

// UpsertBatch inserts or updates many places using pgx.Batch. The slice
// index is stored as the place position so List returns dataset order.
func (r *PlaceRepo) UpsertBatch(ctx context.Context, places []domain.Place) error {
	batch := &pgx.Batch{}
	for i, p := range places {
		images, err := marshalImages(p.Images)
		if err != nil {
			return fmt.Errorf("place %d: %w", p.ID, err)
		}
		batch.Queue(`
			INSERT INTO places (`+placeColumns+`, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			ON CONFLICT (id) DO UPDATE
			SET title = EXCLUDED.title, description = EXCLUDED.description,
			    address = EXCLUDED.address, lat = EXCLUDED.lat, lon = EXCLUDED.lon,
			    url = EXCLUDED.url, date = EXCLUDED.date,
			    security = EXCLUDED.security, interior = EXCLUDED.interior,
			    age = EXCLUDED.age, rating = EXCLUDED.rating, floors = EXCLUDED.floors,
			    images = EXCLUDED.images, position = EXCLUDED.position,
			    updated_at = now()
		`, p.ID, p.Title, p.Description, p.Address, p.Lat, p.Lon, p.URL, p.Date,
			p.Security, p.Interior, p.Age, p.Rating, p.Floors, images, i)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range places {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// List returns every place in dataset order.
func (r *PlaceRepo) List(ctx context.Context) ([]domain.Place, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+placeColumns+` FROM places ORDER BY position, id`)
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
	row := r.db.Pool.QueryRow(ctx, `SELECT `+placeColumns+` FROM places WHERE id = $1`, id)
	p, err := scanPlace(row)
	if errors.Is(err, pgx.ErrNoRows) {
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
	err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM places`).Scan(&n)
	return n, err
}

// DeleteMissing removes places whose id is not in keep.
func (r *PlaceRepo) DeleteMissing(ctx context.Context, keep []int) (int, error) {
	ids := make([]int32, len(keep))
	for i, id := range keep {
		ids[i] = int32(id)
	}
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM places WHERE NOT (id = ANY($1))`, ids)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func scanPlace(row pgx.Row) (domain.Place, error) {
	var p domain.Place
	var images []byte
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Address, &p.Lat, &p.Lon, &p.URL, &p.Date,
		&p.Security, &p.Interior, &p.Age, &p.Rating, &p.Floors, &images,
	)
	if err != nil {
		return domain.Place{}, err
	}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &p.Images); err != nil {
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
