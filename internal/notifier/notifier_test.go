package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"messaging-service/internal/mocks"
	"messaging-service/internal/models"
)

func TestMessageSentFansOutToBothChannels(t *testing.T) {
	spy := &mocks.PublisherSpy{}
	n := New(spy, nil, zap.NewNop())

	msg := models.Message{ID: 7, SenderID: 3, ReceiverID: 5, Content: "hello", CreatedAt: time.Now()}
	n.MessageSent(context.Background(), msg)

	require.Len(t, spy.Calls, 2)
	assert.Equal(t, "chat.3.5", spy.Calls[0].Channel)
	assert.Equal(t, "App.Models.User.5", spy.Calls[1].Channel)
	for _, call := range spy.Calls {
		assert.Equal(t, models.EventMessageSent, call.Event)
		assert.Equal(t, models.MessageSentEvent{Message: msg}, call.Payload)
	}
}

func TestMessageReadPublishesOnConversationOnly(t *testing.T) {
	spy := &mocks.PublisherSpy{}
	n := New(spy, nil, zap.NewNop())

	n.MessageRead(context.Background(), 3, 5)

	require.Len(t, spy.Calls, 1)
	assert.Equal(t, "chat.3.5", spy.Calls[0].Channel)
	assert.Equal(t, models.EventMessageRead, spy.Calls[0].Event)
	assert.Equal(t, models.MessageReadEvent{SenderID: 3, ReaderID: 5}, spy.Calls[0].Payload)
}

func TestUserTypingPublishesOnConversationOnly(t *testing.T) {
	spy := &mocks.PublisherSpy{}
	n := New(spy, nil, zap.NewNop())

	n.UserTyping(context.Background(), 5, 3)

	require.Len(t, spy.Calls, 1)
	assert.Equal(t, "chat.3.5", spy.Calls[0].Channel)
	assert.Equal(t, models.EventUserTyping, spy.Calls[0].Event)
	assert.Equal(t, models.UserTypingEvent{SenderID: 5, ReceiverID: 3}, spy.Calls[0].Payload)
}

func TestPublishFailureIsSwallowed(t *testing.T) {
	spy := &mocks.PublisherSpy{Err: errors.New("transport down")}
	n := New(spy, nil, zap.NewNop())

	// Fire-and-forget: the notifier never surfaces transport errors.
	n.MessageSent(context.Background(), models.Message{ID: 1, SenderID: 1, ReceiverID: 2})
	n.MessageRead(context.Background(), 1, 2)

	assert.Len(t, spy.Calls, 3)
}

func TestAnnouncePersistsBeforeBroadcast(t *testing.T) {
	spy := &mocks.PublisherSpy{}
	store := new(mocks.NotificationRepositoryMock)
	n := New(spy, store, zap.NewNop())

	record := models.NotificationRecord{UserID: 9, Message: "Fee reminder", URL: "/fees"}
	store.On("CreateNotification", mock.Anything, record).Return(record, nil).Once()

	require.NoError(t, n.Announce(context.Background(), 9, "Fee reminder", "/fees"))

	require.Len(t, spy.Calls, 1)
	assert.Equal(t, "App.Models.User.9", spy.Calls[0].Channel)
	assert.Equal(t, models.EventAnnouncement, spy.Calls[0].Event)
	store.AssertExpectations(t)
}

func TestAnnounceAbortsOnStoreFailure(t *testing.T) {
	spy := &mocks.PublisherSpy{}
	store := new(mocks.NotificationRepositoryMock)
	n := New(spy, store, zap.NewNop())

	store.On("CreateNotification", mock.Anything, mock.Anything).Return(models.NotificationRecord{}, assert.AnError).Once()

	require.Error(t, n.Announce(context.Background(), 9, "x", ""))
	assert.Empty(t, spy.Calls, "nothing may be broadcast when the durable write failed")
	store.AssertExpectations(t)
}
