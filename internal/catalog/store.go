package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/divnaoki/campus-app/internal/logger"
)

// ImageCapacity is the maximum number of image assets per canvas, carried
// over from the original application's fixed 15-slot grid.
const ImageCapacity = 15

var (
	// ErrNotFound is returned when a canvas or asset id does not exist.
	ErrNotFound = errors.New("catalog: not found")
	// ErrCanvasFull is returned when every image slot of a canvas is taken.
	ErrCanvasFull = errors.New("catalog: canvas image capacity reached")
)

// Canvas is a saved canvas definition shown in the sidebar.
type Canvas struct {
	ID        string
	Name      string
	Kind      string // "image" or "video"
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ImageAsset is a still image stored as a BLOB, addressed by its slot
// within the canvas.
type ImageAsset struct {
	ID        string
	CanvasID  string
	Name      string
	Data      []byte
	SortOrder int
	CreatedAt time.Time
}

// VideoAsset references an imported video file and its thumbnail on disk.
type VideoAsset struct {
	ID              string
	CanvasID        string
	Name            string
	FilePath        string
	ThumbnailPath   string
	DurationSeconds float64
	CreatedAt       time.Time
}

// Store is the SQLite-backed catalog.
type Store struct {
	db  *sql.DB
	log logger.Logger
}

// NewStore opens (and migrates) the catalog at dataSourceName.
func NewStore(dataSourceName string, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Nop{}
	}

	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	store := &Store{db: db, log: log}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	log.Info("Catalog", "catalog opened", map[string]interface{}{
		"source": dataSourceName,
	})
	return store, nil
}

func (s *Store) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS canvases (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			kind TEXT NOT NULL CHECK (kind IN ('image', 'video')),
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS image_assets (
			id TEXT PRIMARY KEY,
			canvas_id TEXT NOT NULL REFERENCES canvases(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			data BLOB NOT NULL,
			sort_order INTEGER NOT NULL,
			created_at DATETIME NOT NULL,
			UNIQUE (canvas_id, sort_order)
		)`,
		`CREATE TABLE IF NOT EXISTS video_assets (
			id TEXT PRIMARY KEY,
			canvas_id TEXT NOT NULL REFERENCES canvases(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			file_path TEXT NOT NULL,
			thumbnail_path TEXT,
			duration_seconds REAL NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate catalog: %w", err)
		}
	}
	if _, err := s.db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Shutdown satisfies the shutdown manager contract.
func (s *Store) Shutdown() {
	if err := s.db.Close(); err != nil {
		s.log.Error("Catalog", err, nil)
	}
}

// CreateCanvas inserts a new canvas definition.
func (s *Store) CreateCanvas(ctx context.Context, name, kind string) (Canvas, error) {
	now := time.Now().UTC()
	canvas := Canvas{
		ID:        uuid.NewString(),
		Name:      name,
		Kind:      kind,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO canvases (id, name, kind, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		canvas.ID, canvas.Name, canvas.Kind, canvas.CreatedAt, canvas.UpdatedAt)
	if err != nil {
		return Canvas{}, fmt.Errorf("create canvas: %w", err)
	}

	s.log.Info("Catalog", "canvas created", map[string]interface{}{
		"canvas": canvas.ID,
		"kind":   kind,
	})
	return canvas, nil
}

// GetCanvas returns one canvas by id.
func (s *Store) GetCanvas(ctx context.Context, id string) (Canvas, error) {
	var canvas Canvas
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, kind, created_at, updated_at FROM canvases WHERE id = ?`, id).
		Scan(&canvas.ID, &canvas.Name, &canvas.Kind, &canvas.CreatedAt, &canvas.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Canvas{}, ErrNotFound
	}
	if err != nil {
		return Canvas{}, fmt.Errorf("get canvas: %w", err)
	}
	return canvas, nil
}

// ListCanvases returns all canvases, newest first, for the sidebar.
func (s *Store) ListCanvases(ctx context.Context) ([]Canvas, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, kind, created_at, updated_at FROM canvases ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list canvases: %w", err)
	}
	defer rows.Close()

	var canvases []Canvas
	for rows.Next() {
		var canvas Canvas
		if err := rows.Scan(&canvas.ID, &canvas.Name, &canvas.Kind, &canvas.CreatedAt, &canvas.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan canvas: %w", err)
		}
		canvases = append(canvases, canvas)
	}
	return canvases, rows.Err()
}

// RenameCanvas updates the canvas name.
func (s *Store) RenameCanvas(ctx context.Context, id, name string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE canvases SET name = ?, updated_at = ? WHERE id = ?`,
		name, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("rename canvas: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCanvas removes the canvas and, via cascade, its assets.
func (s *Store) DeleteCanvas(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM canvases WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete canvas: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddImageAsset stores image data into the next free slot of the canvas.
// Slot assignment is max+1 first, then a wrap-around search over 1..15, the
// same policy as the original application.
func (s *Store) AddImageAsset(ctx context.Context, canvasID, name string, data []byte) (ImageAsset, error) {
	sortOrder, err := s.nextSortOrder(ctx, canvasID)
	if err != nil {
		return ImageAsset{}, err
	}

	asset := ImageAsset{
		ID:        uuid.NewString(),
		CanvasID:  canvasID,
		Name:      name,
		Data:      data,
		SortOrder: sortOrder,
		CreatedAt: time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO image_assets (id, canvas_id, name, data, sort_order, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		asset.ID, asset.CanvasID, asset.Name, asset.Data, asset.SortOrder, asset.CreatedAt)
	if err != nil {
		return ImageAsset{}, fmt.Errorf("add image asset: %w", err)
	}
	return asset, nil
}

func (s *Store) nextSortOrder(ctx context.Context, canvasID string) (int, error) {
	var maxOrder sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(sort_order) FROM image_assets WHERE canvas_id = ?`, canvasID).
		Scan(&maxOrder)
	if err != nil {
		return 0, fmt.Errorf("next sort order: %w", err)
	}

	next := int(maxOrder.Int64) + 1
	if !maxOrder.Valid {
		next = 1
	}
	if next <= ImageCapacity {
		return next, nil
	}

	// All high slots taken; look for a gap left by deletions.
	rows, err := s.db.QueryContext(ctx,
		`SELECT sort_order FROM image_assets WHERE canvas_id = ? ORDER BY sort_order`, canvasID)
	if err != nil {
		return 0, fmt.Errorf("next sort order: %w", err)
	}
	defer rows.Close()

	taken := make(map[int]bool, ImageCapacity)
	for rows.Next() {
		var order int
		if err := rows.Scan(&order); err != nil {
			return 0, fmt.Errorf("next sort order: %w", err)
		}
		taken[order] = true
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for slot := 1; slot <= ImageCapacity; slot++ {
		if !taken[slot] {
			return slot, nil
		}
	}
	return 0, ErrCanvasFull
}

// ListImageAssets returns the image assets of a canvas in slot order.
func (s *Store) ListImageAssets(ctx context.Context, canvasID string) ([]ImageAsset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, canvas_id, name, data, sort_order, created_at
		 FROM image_assets WHERE canvas_id = ? ORDER BY sort_order`, canvasID)
	if err != nil {
		return nil, fmt.Errorf("list image assets: %w", err)
	}
	defer rows.Close()

	var assets []ImageAsset
	for rows.Next() {
		var asset ImageAsset
		if err := rows.Scan(&asset.ID, &asset.CanvasID, &asset.Name, &asset.Data, &asset.SortOrder, &asset.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan image asset: %w", err)
		}
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}

// DeleteImageAsset removes one image asset, freeing its slot.
func (s *Store) DeleteImageAsset(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM image_assets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete image asset: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddVideoAsset records an imported video file.
func (s *Store) AddVideoAsset(ctx context.Context, asset VideoAsset) (VideoAsset, error) {
	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO video_assets (id, canvas_id, name, file_path, thumbnail_path, duration_seconds, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		asset.ID, asset.CanvasID, asset.Name, asset.FilePath, asset.ThumbnailPath, asset.DurationSeconds, asset.CreatedAt)
	if err != nil {
		return VideoAsset{}, fmt.Errorf("add video asset: %w", err)
	}
	return asset, nil
}

// ListVideoAssets returns the video assets of a canvas, newest first.
func (s *Store) ListVideoAssets(ctx context.Context, canvasID string) ([]VideoAsset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, canvas_id, name, file_path, thumbnail_path, duration_seconds, created_at
		 FROM video_assets WHERE canvas_id = ? ORDER BY created_at DESC`, canvasID)
	if err != nil {
		return nil, fmt.Errorf("list video assets: %w", err)
	}
	defer rows.Close()

	var assets []VideoAsset
	for rows.Next() {
		var asset VideoAsset
		var thumbnail sql.NullString
		if err := rows.Scan(&asset.ID, &asset.CanvasID, &asset.Name, &asset.FilePath, &thumbnail, &asset.DurationSeconds, &asset.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan video asset: %w", err)
		}
		asset.ThumbnailPath = thumbnail.String
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}

// DeleteVideoAsset removes one video asset record. The caller is
// responsible for removing the files it references.
func (s *Store) DeleteVideoAsset(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM video_assets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete video asset: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
