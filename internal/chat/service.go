package chat

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrEmptyBody        = errors.New("chat: message body is empty")
	ErrAmbiguousTarget  = errors.New("chat: message must have exactly one of recipient or ai flag")
	ErrUnknownRecipient = errors.New("chat: recipient user does not exist")
)

type Service struct {
	repo     *Repo
	pageSize int
}

func NewService(repo *Repo, pageSize int) *Service {
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}
	return &Service{repo: repo, pageSize: pageSize}
}

// SaveMessage appends one utterance to the ledger and returns it with the
// assigned id. Exactly one of recipientID / isAI must be given; this is the
// ledger-side half of the dual-write design, so it never touches the live
// socket path.
func (s *Service) SaveMessage(ctx context.Context, senderID uint64, recipientID *uint64, isAI bool, body string) (*Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyBody
	}
	if isAI == (recipientID != nil) {
		return nil, ErrAmbiguousTarget
	}
	if recipientID != nil {
		ok, err := s.repo.UserExists(ctx, *recipientID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrUnknownRecipient
		}
	}

	m := &Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		IsAI:        isAI,
		Body:        body,
	}
	if err := s.repo.InsertMessage(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// History returns the requesting user's conversation view, newest first.
// Splitting into AI vs peer threads is the client's job.
func (s *Service) History(ctx context.Context, userID uint64, limit int, beforeID uint64) ([]Message, error) {
	if limit <= 0 || limit > s.pageSize {
		limit = s.pageSize
	}
	return s.repo.ListForUser(ctx, userID, limit, beforeID)
}

// Conversation returns the thread between two users, oldest first.
func (s *Service) Conversation(ctx context.Context, userID, peerID uint64, limit int) ([]Message, error) {
	if limit <= 0 || limit > s.pageSize {
		limit = s.pageSize
	}
	return s.repo.ListConversation(ctx, userID, peerID, limit)
}
