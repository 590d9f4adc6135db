package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ledger-bot/internal/model"
)

// UserRepository handles reads and writes for registered users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByHandle returns the user with the given Telegram handle, or
// (nil, nil) when no such user exists.
func (r *UserRepository) FindByHandle(ctx context.Context, handle string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("telegram_account = ?", handle).First(&user).Error
	switch {
	case err == nil:
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}
}

func (r *UserRepository) Insert(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateChatID records the chat the user was last seen in, so that
// periodic digests have a destination.
func (r *UserRepository) UpdateChatID(ctx context.Context, userUUID string, chatID int64) error {
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("user_uuid = ?", userUUID).
		Update("chat_id", chatID).Error; err != nil {
		return fmt.Errorf("update chat id: %w", err)
	}
	return nil
}

func (r *UserRepository) ListAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
