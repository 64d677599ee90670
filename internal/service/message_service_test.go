package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AVVlasov/procurement-pl-sub001/internal/apperr"
	"github.com/AVVlasov/procurement-pl-sub001/internal/logger"
	"github.com/AVVlasov/procurement-pl-sub001/internal/models"
	"github.com/AVVlasov/procurement-pl-sub001/internal/thread"
)

func newMessageService(repo *fakeMessageRepo) *MessageService {
	return NewMessageService(repo, nil, logger.Nop())
}

func TestPostMessageResolvesRecipient(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc := newMessageService(repo)
	key := thread.DeriveKey("companyA", "companyB")

	m, err := svc.Post(context.Background(), key, "companyA", "hello")
	require.NoError(t, err)
	assert.Equal(t, models.CompanyID("companyB"), m.RecipientID)
	assert.False(t, m.Read)
	assert.NotEmpty(t, m.ID)
	require.Len(t, repo.msgs, 1)
}

func TestPostMessageValidation(t *testing.T) {
	svc := newMessageService(&fakeMessageRepo{})

	_, err := svc.Post(context.Background(), "", "companyA", "hi")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Post(context.Background(), thread.DeriveKey("a", "b"), "a", "   ")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestPostMessageMalformedKeyKeepsMessage(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc := newMessageService(repo)

	m, err := svc.Post(context.Background(), "thread-onlyonepart", "companyA", "hello")
	require.NoError(t, err)
	assert.True(t, m.RecipientID.IsZero())
	require.Len(t, repo.msgs, 1)
}

func TestListMarksUnreadOnceOnly(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc := newMessageService(repo)
	key := thread.DeriveKey("companyA", "companyB")

	_, err := svc.Post(context.Background(), key, "companyA", "first")
	require.NoError(t, err)
	_, err = svc.Post(context.Background(), key, "companyA", "second")
	require.NoError(t, err)

	msgs, err := svc.List(context.Background(), key, "companyB")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Text)

	n, err := repo.CountUnread(context.Background(), "companyB")
	require.NoError(t, err)
	assert.Zero(t, n, "all messages read after first listing")

	// second listing returns identical content and flips nothing
	again, err := svc.List(context.Background(), key, "companyB")
	require.NoError(t, err)
	require.Len(t, again, 2)
	for _, m := range again {
		assert.True(t, m.Read)
	}
}

func TestListReturnsEvenWhenMarkReadFails(t *testing.T) {
	repo := &fakeMessageRepo{markErr: assert.AnError}
	svc := newMessageService(repo)
	key := thread.DeriveKey("companyA", "companyB")

	_, err := svc.Post(context.Background(), key, "companyA", "hello")
	require.NoError(t, err)

	msgs, err := svc.List(context.Background(), key, "companyB")
	require.NoError(t, err, "read-marking failure must not fail delivery")
	require.Len(t, msgs, 1)
	assert.False(t, msgs[0].Read, "read state converges later, not now")
}

func TestListEmptyThreadIsNotAnError(t *testing.T) {
	svc := newMessageService(&fakeMessageRepo{})
	msgs, err := svc.List(context.Background(), thread.DeriveKey("a", "b"), "a")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestListThreadsGroupsAndSorts(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc := newMessageService(repo)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	put := func(threadID string, sender, recipient models.CompanyID, text string, at time.Time, read bool) {
		repo.msgs = append(repo.msgs, &models.Message{
			ID: text, ThreadID: threadID, SenderID: sender, RecipientID: recipient,
			Text: text, Read: read, CreatedAt: at,
		})
	}

	keyAB := thread.DeriveKey("companyA", "companyB")
	keyAC := thread.DeriveKey("companyA", "companyC")
	put(keyAB, "companyB", "companyA", "old", base, false)
	put(keyAB, "companyA", "companyB", "newer", base.Add(2*time.Hour), false)
	put(keyAC, "companyC", "companyA", "latest", base.Add(3*time.Hour), false)

	threads, err := svc.ListThreads(context.Background(), "companyA")
	require.NoError(t, err)
	require.Len(t, threads, 2)

	assert.Equal(t, keyAC, threads[0].ThreadID)
	assert.Equal(t, models.CompanyID("companyC"), threads[0].CounterpartID)
	assert.Equal(t, "latest", threads[0].LastMessage.Text)
	assert.Equal(t, 1, threads[0].UnreadCount)

	assert.Equal(t, keyAB, threads[1].ThreadID)
	assert.Equal(t, "newer", threads[1].LastMessage.Text)
	assert.Equal(t, 1, threads[1].UnreadCount, "only the message addressed to companyA counts")
}

func TestListThreadsTieBreaksByInsertionOrder(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc := newMessageService(repo)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	key := thread.DeriveKey("companyA", "companyB")

	repo.msgs = append(repo.msgs,
		&models.Message{ID: "m1", ThreadID: key, SenderID: "companyA", RecipientID: "companyB", Text: "first", CreatedAt: at},
		&models.Message{ID: "m2", ThreadID: key, SenderID: "companyA", RecipientID: "companyB", Text: "second", CreatedAt: at},
	)

	threads, err := svc.ListThreads(context.Background(), "companyA")
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, "second", threads[0].LastMessage.Text)
}
