package chat

import (
	"context"

	"gorm.io/gorm"

	"github.com/udyamsetu/platform/internal/models"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) InsertMessage(ctx context.Context, m *Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// UserExists reports whether a user row exists for the id. The ledger
// refuses peer messages addressed to unknown users.
func (r *Repo) UserExists(ctx context.Context, userID uint64) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// ListForUser returns the conversation view for one user: every message the
// user sent or received, AI-directed included. DESC id order (newest ->
// oldest) with before_id keyset paging, same shape as the other list
// endpoints.
func (r *Repo) ListForUser(ctx context.Context, userID uint64, limit int, beforeID uint64) ([]Message, error) {
	q := r.db.WithContext(ctx).
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Order("id DESC").
		Limit(limit)

	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}

	var msgs []Message
	if err := q.Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// ListConversation returns the messages between an unordered pair of users,
// oldest first.
func (r *Repo) ListConversation(ctx context.Context, userA, userB uint64, limit int) ([]Message, error) {
	var msgs []Message
	if err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userA, userB, userB, userA).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}
