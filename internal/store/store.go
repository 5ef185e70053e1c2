package store

import (
	"time"

	"courier/internal/models"
)

// RemovalResult reports the registry sizes left behind after a member
// is removed and their messages are purged.
type RemovalResult struct {
	MembersRemaining int `json:"members_remaining"`
	GroupMessages    int `json:"group_messages"`
	TotalMessages    int `json:"total_messages"`
}

type Store interface {
	// User operations
	RegisterUser(name, mobile string) (models.User, error)
	GetUser(mobile string) (models.User, error)

	// Group operations. CreateGroup takes the member mobiles in order;
	// the first entry is the creator and, for multi-party groups, the admin.
	CreateGroup(mobiles []string) (models.Group, error)
	GetGroup(name string) (models.Group, error)
	GroupMembers(name string) ([]models.User, error)
	IsMember(groupName, mobile string) (bool, error)
	ChangeAdmin(approverMobile, userMobile, groupName string) error
	RemoveUser(mobile string) (RemovalResult, error)

	// Message operations
	DraftMessage(content string) models.Message
	SendMessage(draft models.Message, senderMobile, groupName string) (int, error)
	GroupMessages(name string) ([]models.Message, error)

	// Queries
	KthLatestBetween(start, end time.Time, k int) (string, error)
}
