package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AVVlasov/procurement-pl-sub001/internal/apperr"
	"github.com/AVVlasov/procurement-pl-sub001/internal/events"
	"github.com/AVVlasov/procurement-pl-sub001/internal/models"
	"github.com/AVVlasov/procurement-pl-sub001/internal/repository"
	"github.com/AVVlasov/procurement-pl-sub001/internal/thread"
)

type MessageService struct {
	repo repository.MessageRepository
	pub  *events.Publisher
	log  *zap.SugaredLogger
}

func NewMessageService(repo repository.MessageRepository, pub *events.Publisher, log *zap.SugaredLogger) *MessageService {
	return &MessageService{repo: repo, pub: pub, log: log}
}

// Post appends a message to a thread. The recipient is derived from the
// thread key and the sender; if the key is a malformed legacy one the message
// is still recorded, just without a recipient.
func (s *MessageService) Post(ctx context.Context, threadID string, sender models.CompanyID, text string) (*models.Message, error) {
	if threadID == "" {
		return nil, apperr.Validation("thread id is required")
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperr.Validation("message text is required")
	}

	recipient, err := thread.ResolveCounterpart(threadID, sender)
	if err != nil {
		s.log.Warnw("could not resolve message recipient", "thread_id", threadID, "err", err)
		recipient = ""
	}

	m := &models.Message{
		ID:          uuid.NewString(),
		ThreadID:    threadID,
		SenderID:    sender,
		RecipientID: recipient,
		Text:        text,
		Read:        false,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, m); err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "saving message", err)
	}
	s.pub.Publish(events.Event{Type: events.TypeMessageCreated, CompanyID: sender, RecipientID: recipient, EntityID: m.ID})
	return m, nil
}

// ListThreads groups every message the company participates in by thread and
// keeps the most recent message of each as the summary, newest thread first.
func (s *MessageService) ListThreads(ctx context.Context, company models.CompanyID) ([]*models.ThreadSummary, error) {
	msgs, err := s.repo.ListByCompany(ctx, company)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "listing messages", err)
	}

	groups := map[string]*models.ThreadSummary{}
	order := []string{}
	for _, m := range msgs {
		sum, ok := groups[m.ThreadID]
		if !ok {
			sum = &models.ThreadSummary{ThreadID: m.ThreadID, CounterpartID: s.counterpartOf(m, company)}
			groups[m.ThreadID] = sum
			order = append(order, m.ThreadID)
		}
		// messages arrive in insertion order, so on equal timestamps the
		// later insertion wins
		if !m.CreatedAt.Before(sum.LastMessageAt) {
			sum.LastMessage = m
			sum.LastMessageAt = m.CreatedAt
		}
		if m.RecipientID == company && !m.Read {
			sum.UnreadCount++
		}
	}

	out := make([]*models.ThreadSummary, 0, len(groups))
	for _, id := range order {
		out = append(out, groups[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastMessageAt.After(out[j].LastMessageAt)
	})
	return out, nil
}

// List returns a thread's messages oldest first and then marks the
// requester's unread messages as read. Read-marking is fire-and-forget: a
// failure is logged and the list is still returned, so read state converges
// on a later call instead of failing delivery.
func (s *MessageService) List(ctx context.Context, threadID string, requester models.CompanyID) ([]*models.Message, error) {
	if threadID == "" {
		return nil, apperr.Validation("thread id is required")
	}
	msgs, err := s.repo.ListByThread(ctx, threadID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "listing thread", err)
	}
	if _, err := s.repo.MarkThreadRead(ctx, threadID, requester); err != nil {
		s.log.Warnw("marking thread read failed", "thread_id", threadID, "company_id", requester, "err", err)
	}
	return msgs, nil
}

func (s *MessageService) UnreadCount(ctx context.Context, company models.CompanyID) (int64, error) {
	n, err := s.repo.CountUnread(ctx, company)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindStorage, "counting unread", err)
	}
	return n, nil
}

func (s *MessageService) counterpartOf(m *models.Message, company models.CompanyID) models.CompanyID {
	if cp, err := thread.ResolveCounterpart(m.ThreadID, company); err == nil {
		return cp
	}
	// malformed legacy key: fall back to the message's own participants
	if m.SenderID != company {
		return m.SenderID
	}
	return m.RecipientID
}
