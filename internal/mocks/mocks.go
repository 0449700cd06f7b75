package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, senderID int, receiverID int, content string) (models.Message, error) {
	args := m.Called(ctx, senderID, receiverID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) MarkRead(ctx context.Context, readerID int, counterpartID int) (int64, error) {
	args := m.Called(ctx, readerID, counterpartID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MessageRepositoryMock) UnreadCount(ctx context.Context, ownerID int, counterpartID int) (int, error) {
	args := m.Called(ctx, ownerID, counterpartID)
	return args.Int(0), args.Error(1)
}

func (m *MessageRepositoryMock) ListConversation(ctx context.Context, userID int, counterpartID int) ([]models.Message, error) {
	args := m.Called(ctx, userID, counterpartID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) ListContacts(ctx context.Context, ownerID int) ([]models.Contact, error) {
	args := m.Called(ctx, ownerID)
	var contacts []models.Contact
	if val := args.Get(0); val != nil {
		contacts = val.([]models.Contact)
	}
	return contacts, args.Error(1)
}

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) BulkUsers(ctx context.Context, ids []int) ([]models.User, error) {
	args := m.Called(ctx, ids)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

type NotificationRepositoryMock struct {
	mock.Mock
}

func (m *NotificationRepositoryMock) CreateNotification(ctx context.Context, record models.NotificationRecord) (models.NotificationRecord, error) {
	args := m.Called(ctx, record)
	var stored models.NotificationRecord
	if val := args.Get(0); val != nil {
		stored = val.(models.NotificationRecord)
	}
	return stored, args.Error(1)
}

func (m *NotificationRepositoryMock) ListNotifications(ctx context.Context, userID int) ([]models.NotificationRecord, error) {
	args := m.Called(ctx, userID)
	var records []models.NotificationRecord
	if val := args.Get(0); val != nil {
		records = val.([]models.NotificationRecord)
	}
	return records, args.Error(1)
}

func (m *NotificationRepositoryMock) MarkNotificationsRead(ctx context.Context, userID int) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// NotifierMock spies on the realtime side effects handlers trigger.
type NotifierMock struct {
	mock.Mock
}

func (m *NotifierMock) MessageSent(ctx context.Context, msg models.Message) {
	m.Called(ctx, msg)
}

func (m *NotifierMock) MessageRead(ctx context.Context, senderID, readerID int) {
	m.Called(ctx, senderID, readerID)
}

func (m *NotifierMock) UserTyping(ctx context.Context, senderID, receiverID int) {
	m.Called(ctx, senderID, receiverID)
}

func (m *NotifierMock) Announce(ctx context.Context, userID int, message, url string) error {
	args := m.Called(ctx, userID, message, url)
	return args.Error(0)
}

var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.NotificationRepository = (*NotificationRepositoryMock)(nil)
