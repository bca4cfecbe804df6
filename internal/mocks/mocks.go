package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"nexus-chat/internal/models"
)

// BackendMock mocks the httpapi.Backend interface.
type BackendMock struct {
	mock.Mock
}

func (m *BackendMock) Login(ctx context.Context, email string) (models.AuthResponse, error) {
	args := m.Called(ctx, email)
	var resp models.AuthResponse
	if val := args.Get(0); val != nil {
		resp = val.(models.AuthResponse)
	}
	return resp, args.Error(1)
}

func (m *BackendMock) Register(ctx context.Context, email, username string) (models.AuthResponse, error) {
	args := m.Called(ctx, email, username)
	var resp models.AuthResponse
	if val := args.Get(0); val != nil {
		resp = val.(models.AuthResponse)
	}
	return resp, args.Error(1)
}

func (m *BackendMock) UpdateUser(ctx context.Context, id int, updates models.UserUpdate) (models.User, error) {
	args := m.Called(ctx, id, updates)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *BackendMock) Rooms(ctx context.Context) ([]models.Room, error) {
	args := m.Called(ctx)
	var rooms []models.Room
	if val := args.Get(0); val != nil {
		rooms = val.([]models.Room)
	}
	return rooms, args.Error(1)
}

func (m *BackendMock) Messages(ctx context.Context, roomID int) ([]models.Message, error) {
	args := m.Called(ctx, roomID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *BackendMock) Users(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

func (m *BackendMock) Analytics(ctx context.Context) (models.AnalyticsSnapshot, error) {
	args := m.Called(ctx)
	var snap models.AnalyticsSnapshot
	if val := args.Get(0); val != nil {
		snap = val.(models.AnalyticsSnapshot)
	}
	return snap, args.Error(1)
}

func (m *BackendMock) MarkAsRead(ctx context.Context, roomID, userID int) error {
	args := m.Called(ctx, roomID, userID)
	return args.Error(0)
}

func (m *BackendMock) SendMessage(ctx context.Context, roomID int, content string) (models.Message, error) {
	args := m.Called(ctx, roomID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}
