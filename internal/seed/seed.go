// Package seed holds the fixed demo dataset the simulation service resets
// to on every start. Only the message log survives restarts; users and
// rooms always come from here.
package seed

import (
	"time"

	"nexus-chat/internal/models"
)

// DemoUserID is the account every login binds the session to.
const DemoUserID = 1

// Users returns the fixed user table.
func Users(now time.Time) []models.User {
	return []models.User{
		{ID: 1, Username: "Current User", Email: "me@example.com", Status: models.StatusOnline, LastSeen: now, AvatarURL: "https://picsum.photos/200"},
		{ID: 2, Username: "Alice Johnson", Email: "alice@example.com", Status: models.StatusOnline, LastSeen: now, AvatarURL: "https://picsum.photos/201"},
		{ID: 3, Username: "Bob Smith", Email: "bob@example.com", Status: models.StatusOffline, LastSeen: now.Add(-time.Hour), AvatarURL: "https://picsum.photos/202"},
		{ID: 4, Username: "Charlie Brown", Email: "charlie@example.com", Status: models.StatusBusy, LastSeen: now, AvatarURL: "https://picsum.photos/203"},
	}
}

// Rooms returns the fixed room table. 1:1 rooms are named after the other
// member.
func Rooms() []models.Room {
	return []models.Room{
		{ID: 101, Name: "General Chat", IsGroup: true, UnreadCount: 2, Members: []int{1, 2, 3, 4}},
		{ID: 102, Name: "Alice Johnson", IsGroup: false, UnreadCount: 0, Members: []int{1, 2}},
		{ID: 103, Name: "Bob Smith", IsGroup: false, UnreadCount: 0, Members: []int{1, 3}},
	}
}

// Messages returns the initial message log used when the durable slot is
// empty.
func Messages(now time.Time) []models.Message {
	return []models.Message{
		{ID: "m1", RoomID: 101, SenderID: 2, Content: "Welcome to the team!", Timestamp: now.Add(-24 * time.Hour), Delivered: true, ReadBy: []int{1, 3, 4}},
		{ID: "m2", RoomID: 102, SenderID: 2, Content: "Hey, do you have the report?", Timestamp: now.Add(-time.Hour), Delivered: true, ReadBy: []int{1}},
	}
}
