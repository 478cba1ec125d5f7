package database

import (
	"context"

	"credit-telegram-bot/internal/models"
)

// UpsertUser creates the user on first contact or refreshes the display
// fields. telegram_id is immutable; the internal id survives renames.
func (db *DB) UpsertUser(ctx context.Context, telegramID int64, username, fullName string) (*models.User, error) {
	var user models.User

	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (telegram_id, username, full_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (telegram_id) DO UPDATE
			SET username = EXCLUDED.username, full_name = EXCLUDED.full_name
		RETURNING id, telegram_id, COALESCE(username, ''), COALESCE(full_name, ''), created_at
	`, telegramID, nullIfEmpty(username), nullIfEmpty(fullName)).Scan(
		&user.ID, &user.TelegramID, &user.Username, &user.FullName, &user.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetUserByTelegramID returns pgx.ErrNoRows for unknown users.
func (db *DB) GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	err := db.Pool.QueryRow(ctx, `
		SELECT id, telegram_id, COALESCE(username, ''), COALESCE(full_name, ''), created_at
		FROM users WHERE telegram_id = $1
	`, telegramID).Scan(&user.ID, &user.TelegramID, &user.Username, &user.FullName, &user.CreatedAt)

	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetUserByID looks a user up by internal id.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := db.Pool.QueryRow(ctx, `
		SELECT id, telegram_id, COALESCE(username, ''), COALESCE(full_name, ''), created_at
		FROM users WHERE id = $1
	`, id).Scan(&user.ID, &user.TelegramID, &user.Username, &user.FullName, &user.CreatedAt)

	if err != nil {
		return nil, err
	}

	return &user, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
