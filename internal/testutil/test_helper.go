package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ColaboAI/WeGoGym-api/internal/models"
)

// TestHelper provides utility functions for tests
type TestHelper struct {
	t *testing.T
}

func NewTestHelper(t *testing.T) *TestHelper {
	return &TestHelper{t: t}
}

// CreateTestUser creates a test user with default values
func (h *TestHelper) CreateTestUser(username string, fcmToken string) *models.User {
	if username == "" {
		username = "testuser"
	}
	user := &models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     username + "@example.com",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if fcmToken != "" {
		user.FCMToken = &fcmToken
	}
	return user
}

// CreateTestRoom creates a test chat room with the given admin
func (h *TestHelper) CreateTestRoom(adminUserID string) *models.ChatRoom {
	return &models.ChatRoom{
		ID:          uuid.NewString(),
		Name:        "Leg Day Crew",
		IsPrivate:   true,
		IsGroupChat: true,
		AdminUserID: &adminUserID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

// CreateTestMember creates an active membership row
func (h *TestHelper) CreateTestMember(roomID, userID string, isAdmin bool) *models.ChatRoomMember {
	return &models.ChatRoomMember{
		ID:         uuid.NewString(),
		ChatRoomID: roomID,
		UserID:     userID,
		IsAdmin:    isAdmin,
		LastReadAt: time.Now().Add(-time.Hour),
		CreatedAt:  time.Now(),
	}
}

// CreateTestMessage creates a persisted-looking message row
func (h *TestHelper) CreateTestMessage(roomID, userID, text string) *models.Message {
	if text == "" {
		text = "Test message"
	}
	return &models.Message{
		ID:         uuid.NewString(),
		ChatRoomID: &roomID,
		UserID:     &userID,
		Text:       text,
		CreatedAt:  time.Now().UTC(),
	}
}

// AssertError checks if an error occurred when it should (or shouldn't)
func (h *TestHelper) AssertError(err error, shouldErr bool, testName string) {
	if (err != nil) != shouldErr {
		if shouldErr {
			h.t.Errorf("%s: expected error but got nil", testName)
		} else {
			h.t.Errorf("%s: unexpected error: %v", testName, err)
		}
	}
}

// AssertEqual checks if two values are equal
func (h *TestHelper) AssertEqual(got, want interface{}, testName string) {
	if got != want {
		h.t.Errorf("%s: got %v, want %v", testName, got, want)
	}
}

// WaitFor polls the condition until it holds or the deadline passes.
func (h *TestHelper) WaitFor(cond func() bool, timeout time.Duration, testName string) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	h.t.Fatalf("%s: condition not met within %v", testName, timeout)
}
