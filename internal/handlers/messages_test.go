package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"messaging-service/internal/contactlist"
	"messaging-service/internal/mocks"
	"messaging-service/internal/models"
	"messaging-service/internal/notifier"
	"messaging-service/internal/repositories"
)

func setupMessageRouter(handler *MessageHandler, userID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	r.GET("/contacts", handler.ListContacts)
	r.GET("/conversations/:user_id/messages", handler.ListConversation)
	r.POST("/conversations/:user_id/messages", handler.SendMessage)
	r.POST("/conversations/:user_id/read", handler.MarkRead)
	r.GET("/conversations/:user_id/unread", handler.UnreadCount)
	r.POST("/conversations/:user_id/typing", handler.Typing)
	return r
}

func TestSendMessageSuccess(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	notify := new(mocks.NotifierMock)
	handler := NewMessageHandler(messageRepo, userRepo, notify, nil)
	router := setupMessageRouter(handler, 3)

	userRepo.On("GetUser", mock.Anything, 3).Return(models.User{ID: 3, Name: "Alice"}, nil).Once()
	userRepo.On("GetUser", mock.Anything, 5).Return(models.User{ID: 5, Name: "Bob"}, nil).Once()
	messageRepo.On("CreateMessage", mock.Anything, 3, 5, "hello").
		Return(models.Message{ID: 7, SenderID: 3, ReceiverID: 5, Content: "hello"}, nil).Once()
	notify.On("MessageSent", mock.Anything, mock.MatchedBy(func(msg models.Message) bool {
		return msg.ID == 7 && msg.Sender != nil && msg.Sender.Name == "Alice"
	})).Once()

	req := httptest.NewRequest(http.MethodPost, "/conversations/5/messages", bytes.NewBufferString(`{"content":"hello"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	messageRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
	notify.AssertExpectations(t)
}

func TestSendMessageToSelfRejected(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	notify := new(mocks.NotifierMock)
	handler := NewMessageHandler(messageRepo, userRepo, notify, nil)
	router := setupMessageRouter(handler, 4)

	userRepo.On("GetUser", mock.Anything, 4).Return(models.User{ID: 4, Name: "Dana"}, nil).Twice()
	messageRepo.On("CreateMessage", mock.Anything, 4, 4, "x").
		Return(models.Message{}, repositories.ErrSelfMessage).Once()

	req := httptest.NewRequest(http.MethodPost, "/conversations/4/messages", bytes.NewBufferString(`{"content":"x"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	notify.AssertNotCalled(t, "MessageSent", mock.Anything, mock.Anything)
}

func TestSendMessageEmptyContentRejectedBeforePersistence(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(messageRepo, new(mocks.UserRepositoryMock), new(mocks.NotifierMock), nil)
	router := setupMessageRouter(handler, 3)

	req := httptest.NewRequest(http.MethodPost, "/conversations/5/messages", bytes.NewBufferString(`{"content":""}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	messageRepo.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendMessageUnknownReceiver(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewMessageHandler(new(mocks.MessageRepositoryMock), userRepo, new(mocks.NotifierMock), nil)
	router := setupMessageRouter(handler, 3)

	userRepo.On("GetUser", mock.Anything, 3).Return(models.User{ID: 3, Name: "Alice"}, nil).Once()
	userRepo.On("GetUser", mock.Anything, 99).Return(models.User{}, repositories.ErrUserNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/conversations/99/messages", bytes.NewBufferString(`{"content":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestMarkReadPublishesReceipt(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	notify := new(mocks.NotifierMock)
	handler := NewMessageHandler(messageRepo, new(mocks.UserRepositoryMock), notify, nil)
	router := setupMessageRouter(handler, 5)

	messageRepo.On("MarkRead", mock.Anything, 5, 3).Return(int64(2), nil).Once()
	notify.On("MessageRead", mock.Anything, 3, 5).Once()

	req := httptest.NewRequest(http.MethodPost, "/conversations/3/read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]int64
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(2), resp["updated"])
	messageRepo.AssertExpectations(t)
	notify.AssertExpectations(t)
}

func TestMarkReadZeroRowsSkipsReceipt(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	notify := new(mocks.NotifierMock)
	handler := NewMessageHandler(messageRepo, new(mocks.UserRepositoryMock), notify, nil)
	router := setupMessageRouter(handler, 5)

	messageRepo.On("MarkRead", mock.Anything, 5, 3).Return(int64(0), nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/conversations/3/read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	notify.AssertNotCalled(t, "MessageRead", mock.Anything, mock.Anything, mock.Anything)
	messageRepo.AssertExpectations(t)
}

func TestUnreadCount(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(messageRepo, new(mocks.UserRepositoryMock), new(mocks.NotifierMock), nil)
	router := setupMessageRouter(handler, 5)

	messageRepo.On("UnreadCount", mock.Anything, 5, 3).Return(2, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations/3/unread", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"unread":2}`, rec.Body.String())
	messageRepo.AssertExpectations(t)
}

func TestTypingEmitsHint(t *testing.T) {
	notify := new(mocks.NotifierMock)
	handler := NewMessageHandler(new(mocks.MessageRepositoryMock), new(mocks.UserRepositoryMock), notify, nil)
	router := setupMessageRouter(handler, 3)

	notify.On("UserTyping", mock.Anything, 3, 5).Once()

	req := httptest.NewRequest(http.MethodPost, "/conversations/5/typing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	notify.AssertExpectations(t)
}

func TestTypingAtSelfRejected(t *testing.T) {
	notify := new(mocks.NotifierMock)
	handler := NewMessageHandler(new(mocks.MessageRepositoryMock), new(mocks.UserRepositoryMock), notify, nil)
	router := setupMessageRouter(handler, 3)

	req := httptest.NewRequest(http.MethodPost, "/conversations/3/typing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	notify.AssertNotCalled(t, "UserTyping", mock.Anything, mock.Anything, mock.Anything)
}

func TestListContactsSuccess(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(messageRepo, new(mocks.UserRepositoryMock), new(mocks.NotifierMock), nil)
	router := setupMessageRouter(handler, 5)

	messageRepo.On("ListContacts", mock.Anything, 5).
		Return([]models.Contact{{ID: 3, Name: "Alice", Unread: 2}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/contacts", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	messageRepo.AssertExpectations(t)
}

func TestListConversationInvalidID(t *testing.T) {
	handler := NewMessageHandler(new(mocks.MessageRepositoryMock), new(mocks.UserRepositoryMock), new(mocks.NotifierMock), nil)
	router := setupMessageRouter(handler, 5)

	req := httptest.NewRequest(http.MethodGet, "/conversations/abc/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestDirectMessageDeliveryAndReadFlow walks the full path: user 3 sends
// "hello" to user 5, the events land on both channels, user 5's contact list
// bumps the badge, then opening the conversation marks it read and emits the
// receipt back to user 3.
func TestDirectMessageDeliveryAndReadFlow(t *testing.T) {
	spy := &mocks.PublisherSpy{}
	live := notifier.New(spy, nil, zap.NewNop())
	messageRepo := new(mocks.MessageRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewMessageHandler(messageRepo, userRepo, live, nil)

	userRepo.On("GetUser", mock.Anything, 3).Return(models.User{ID: 3, Name: "Alice"}, nil).Once()
	userRepo.On("GetUser", mock.Anything, 5).Return(models.User{ID: 5, Name: "Bob"}, nil).Once()
	messageRepo.On("CreateMessage", mock.Anything, 3, 5, "hello").
		Return(models.Message{ID: 1, SenderID: 3, ReceiverID: 5, Content: "hello"}, nil).Once()

	senderRouter := setupMessageRouter(handler, 3)
	req := httptest.NewRequest(http.MethodPost, "/conversations/5/messages", bytes.NewBufferString(`{"content":"hello"}`))
	rec := httptest.NewRecorder()
	senderRouter.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, spy.CallsFor("chat.3.5"), 1)
	require.Len(t, spy.CallsFor("App.Models.User.5"), 1)
	sent := spy.Calls[0].Payload.(models.MessageSentEvent)
	assert.Equal(t, "hello", sent.Message.Content)
	assert.Nil(t, sent.Message.ReadAt)

	// User 5's contact list consumes the event and bumps the badge.
	list := contactlist.New(5)
	list.ApplyMessageSent(sent)
	assert.Equal(t, 1, list.Unread(3))

	// User 5 opens the conversation: optimistic reset plus server mark-read.
	list.Select(3)
	assert.Equal(t, 0, list.Unread(3))

	messageRepo.On("MarkRead", mock.Anything, 5, 3).Return(int64(1), nil).Once()
	readerRouter := setupMessageRouter(handler, 5)
	req = httptest.NewRequest(http.MethodPost, "/conversations/3/read", nil)
	rec = httptest.NewRecorder()
	readerRouter.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	receipts := spy.CallsFor("chat.3.5")
	require.Len(t, receipts, 2)
	assert.Equal(t, models.MessageReadEvent{SenderID: 3, ReaderID: 5}, receipts[1].Payload)

	messageRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}
