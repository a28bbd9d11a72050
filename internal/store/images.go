package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/zaloga/internal/db"
)

// SetItemTypeImage stores the photo of an item type, replacing any previous
// one.
func SetItemTypeImage(ctx context.Context, database *db.DB, itemTypeID string, image []byte, mime string) error {
	_, err := database.ExecContext(ctx,
		`INSERT INTO item_type_images (item_type_id, image, mime) VALUES (?, ?, ?)
		 ON CONFLICT (item_type_id) DO UPDATE SET image = excluded.image, mime = excluded.mime,
		     updated_at = CURRENT_TIMESTAMP`,
		itemTypeID, image, mime,
	)
	if err != nil {
		return fmt.Errorf("setting item type image: %w", err)
	}
	return nil
}

// GetItemTypeImage returns the photo of an item type and its MIME type. A
// missing photo yields nil data and no error.
func GetItemTypeImage(ctx context.Context, database *db.DB, itemTypeID string) ([]byte, string, error) {
	var image []byte
	var mime string
	err := database.QueryRowContext(ctx,
		`SELECT image, mime FROM item_type_images WHERE item_type_id = ?`, itemTypeID,
	).Scan(&image, &mime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item type image: %w", err)
	}
	return image, mime, nil
}
