package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/mocks"
	"messaging-service/internal/models"
)

func setupNotificationRouter(handler *NotificationHandler, userID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	r.GET("/notifications", handler.ListNotifications)
	r.POST("/notifications/read", handler.MarkNotificationsRead)
	r.POST("/announcements", handler.Announce)
	return r
}

func TestListNotificationsSuccess(t *testing.T) {
	repo := new(mocks.NotificationRepositoryMock)
	handler := NewNotificationHandler(repo, new(mocks.NotifierMock))
	router := setupNotificationRouter(handler, 9)

	repo.On("ListNotifications", mock.Anything, 9).
		Return([]models.NotificationRecord{{ID: 1, UserID: 9, Message: "Assembly on Friday"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestMarkNotificationsRead(t *testing.T) {
	repo := new(mocks.NotificationRepositoryMock)
	handler := NewNotificationHandler(repo, new(mocks.NotifierMock))
	router := setupNotificationRouter(handler, 9)

	repo.On("MarkNotificationsRead", mock.Anything, 9).Return(int64(3), nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/notifications/read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestAnnounceSuccess(t *testing.T) {
	notify := new(mocks.NotifierMock)
	handler := NewNotificationHandler(new(mocks.NotificationRepositoryMock), notify)
	router := setupNotificationRouter(handler, 1)

	notify.On("Announce", mock.Anything, 9, "Fee due", "/fees/9").Return(nil).Once()

	body := bytes.NewBufferString(`{"user_id":9,"message":"Fee due","url":"/fees/9"}`)
	req := httptest.NewRequest(http.MethodPost, "/announcements", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	notify.AssertExpectations(t)
}

func TestAnnounceMissingFields(t *testing.T) {
	notify := new(mocks.NotifierMock)
	handler := NewNotificationHandler(new(mocks.NotificationRepositoryMock), notify)
	router := setupNotificationRouter(handler, 1)

	req := httptest.NewRequest(http.MethodPost, "/announcements", bytes.NewBufferString(`{"user_id":9}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	notify.AssertNotCalled(t, "Announce", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
