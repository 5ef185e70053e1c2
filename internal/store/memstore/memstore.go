// Package memstore is the in-memory implementation of store.Store. One
// MemStore owns every entity and every derived index; a single RWMutex
// keeps them mutually consistent. Operations validate all preconditions
// before touching any index, so a failed call leaves no partial write.
package memstore

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"courier/internal/models"
	"courier/internal/store"
)

type MemStore struct {
	mu sync.RWMutex

	// owning stores, keyed by natural identity
	users    map[string]*models.User    // mobile -> user
	groups   map[string]*models.Group   // group name -> group
	messages map[int]*models.Message    // message id -> message

	// derived indices, updated in lockstep with the owning stores
	memberOf  map[string]string // mobile -> group name
	members   map[string][]string
	groupMsgs map[string][]int // message ids in send order
	senders   map[int]string   // message id -> sender mobile

	groupSeq  int // multi-party groups only
	nextMsgID int
}

func New() *MemStore {
	return &MemStore{
		users:     make(map[string]*models.User),
		groups:    make(map[string]*models.Group),
		messages:  make(map[int]*models.Message),
		memberOf:  make(map[string]string),
		members:   make(map[string][]string),
		groupMsgs: make(map[string][]int),
		senders:   make(map[int]string),
	}
}

func (s *MemStore) RegisterUser(name, mobile string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[mobile]; ok {
		return models.User{}, fmt.Errorf("%w: %s", store.ErrDuplicateUser, mobile)
	}
	user := &models.User{Name: name, Mobile: mobile}
	s.users[mobile] = user
	return *user, nil
}

func (s *MemStore) GetUser(mobile string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[mobile]
	if !ok {
		return models.User{}, fmt.Errorf("%w: %s", store.ErrUnknownUser, mobile)
	}
	return *user, nil
}

// CreateGroup resolves every listed mobile against the user registry
// before writing anything. Two members make a personal chat named after
// the second member; three or more make a multi-party group named from
// the global "Group N" sequence with the first member as admin. Personal
// chats never consume the sequence.
func (s *MemStore) CreateGroup(mobiles []string) (models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(mobiles) < 2 {
		return models.Group{}, fmt.Errorf("a group needs at least 2 members, got %d", len(mobiles))
	}
	for _, m := range mobiles {
		if _, ok := s.users[m]; !ok {
			return models.Group{}, fmt.Errorf("%w: %s", store.ErrUnknownUser, m)
		}
	}

	var group *models.Group
	if len(mobiles) == 2 {
		name := s.users[mobiles[1]].Name
		if _, ok := s.groups[name]; ok {
			return models.Group{}, fmt.Errorf("%w: %s", store.ErrDuplicateGroupName, name)
		}
		group = &models.Group{Name: name, Kind: models.KindPersonal, Capacity: 2}
	} else {
		s.groupSeq++
		name := fmt.Sprintf("Group %d", s.groupSeq)
		group = &models.Group{
			Name:     name,
			Kind:     models.KindMulti,
			Capacity: len(mobiles),
			Admin:    mobiles[0],
		}
	}

	s.groups[group.Name] = group
	for _, m := range mobiles {
		s.members[group.Name] = append(s.members[group.Name], m)
		s.memberOf[m] = group.Name
	}
	return *group, nil
}

func (s *MemStore) GetGroup(name string) (models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	group, ok := s.groups[name]
	if !ok {
		return models.Group{}, fmt.Errorf("%w: %s", store.ErrUnknownGroup, name)
	}
	return *group, nil
}

func (s *MemStore) GroupMembers(name string) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.groups[name]; !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrUnknownGroup, name)
	}
	users := make([]models.User, 0, len(s.members[name]))
	for _, m := range s.members[name] {
		users = append(users, *s.users[m])
	}
	return users, nil
}

func (s *MemStore) IsMember(groupName, mobile string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.groups[groupName]; !ok {
		return false, fmt.Errorf("%w: %s", store.ErrUnknownGroup, groupName)
	}
	return s.memberOf[mobile] == groupName, nil
}

func (s *MemStore) ChangeAdmin(approverMobile, userMobile, groupName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.groups[groupName]
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrUnknownGroup, groupName)
	}
	if _, ok := s.users[userMobile]; !ok {
		return fmt.Errorf("%w: %s", store.ErrUnknownUser, userMobile)
	}
	// Personal chats have no admin, so no approver ever qualifies.
	if group.Admin == "" || group.Admin != approverMobile {
		return store.ErrNotAuthorized
	}
	if s.memberOf[userMobile] != groupName {
		return fmt.Errorf("%w: %s", store.ErrNotAMember, userMobile)
	}
	group.Admin = userMobile
	return nil
}

// RemoveUser detaches the user from their group and purges every message
// they authored from the group list, the sender index, and the ledger.
// The identity record survives; only the membership does not.
func (s *MemStore) RemoveUser(mobile string) (store.RemovalResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[mobile]; !ok {
		return store.RemovalResult{}, fmt.Errorf("%w: %s", store.ErrUserNotFound, mobile)
	}
	groupName, ok := s.memberOf[mobile]
	if !ok {
		return store.RemovalResult{}, fmt.Errorf("%w: %s", store.ErrUserNotFound, mobile)
	}
	if s.groups[groupName].Admin == mobile {
		return store.RemovalResult{}, fmt.Errorf("%w: %s", store.ErrCannotRemoveAdmin, mobile)
	}

	delete(s.memberOf, mobile)
	remaining := s.members[groupName][:0:0]
	for _, m := range s.members[groupName] {
		if m != mobile {
			remaining = append(remaining, m)
		}
	}
	s.members[groupName] = remaining

	purged := make(map[int]bool)
	for id, sender := range s.senders {
		if sender == mobile {
			purged[id] = true
			delete(s.senders, id)
			delete(s.messages, id)
		}
	}
	kept := s.groupMsgs[groupName][:0:0]
	for _, id := range s.groupMsgs[groupName] {
		if !purged[id] {
			kept = append(kept, id)
		}
	}
	s.groupMsgs[groupName] = kept

	return store.RemovalResult{
		MembersRemaining: len(s.members[groupName]),
		GroupMessages:    len(s.groupMsgs[groupName]),
		TotalMessages:    len(s.messages),
	}, nil
}

// DraftMessage reserves the next sequence id for the content and stamps
// it with the current time. The draft belongs to no group and has no
// sender until it is sent.
func (s *MemStore) DraftMessage(content string) models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := &models.Message{
		ID:        s.nextMsgID,
		Content:   content,
		Timestamp: time.Now(),
	}
	s.nextMsgID++
	s.messages[msg.ID] = msg
	return *msg
}

// SendMessage finalizes a draft into a group: the stored record takes the
// caller's content and timestamp, joins the group's list in send order,
// and gains a sender. Returns the group's new message count.
func (s *MemStore) SendMessage(draft models.Message, senderMobile, groupName string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[groupName]; !ok {
		return 0, fmt.Errorf("%w: %s", store.ErrUnknownGroup, groupName)
	}
	if _, ok := s.users[senderMobile]; !ok {
		return 0, fmt.Errorf("%w: %s", store.ErrUnknownUser, senderMobile)
	}
	if s.memberOf[senderMobile] != groupName {
		return 0, fmt.Errorf("%w: %s", store.ErrNotAMember, senderMobile)
	}
	msg, ok := s.messages[draft.ID]
	if !ok {
		return 0, fmt.Errorf("%w: id %d", store.ErrUnknownDraft, draft.ID)
	}

	msg.Content = draft.Content
	msg.Timestamp = draft.Timestamp
	s.groupMsgs[groupName] = append(s.groupMsgs[groupName], msg.ID)
	s.senders[msg.ID] = senderMobile
	return len(s.groupMsgs[groupName]), nil
}

func (s *MemStore) GroupMessages(name string) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.groups[name]; !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrUnknownGroup, name)
	}
	msgs := make([]models.Message, 0, len(s.groupMsgs[name]))
	for _, id := range s.groupMsgs[name] {
		m := *s.messages[id]
		m.Sender = s.senders[id]
		m.Group = name
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// KthLatestBetween looks at every message in the ledger, sent or not,
// whose timestamp falls strictly inside (start, end). Rank k=1 is the
// earliest qualifying message; equal timestamps order by id.
func (s *MemStore) KthLatestBetween(start, end time.Time, k int) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if k < 1 {
		return "", fmt.Errorf("k must be positive, got %d", k)
	}
	var window []*models.Message
	for _, m := range s.messages {
		if m.Timestamp.After(start) && m.Timestamp.Before(end) {
			window = append(window, m)
		}
	}
	if len(window) < k {
		return "", fmt.Errorf("%w: k=%d, found %d", store.ErrInsufficientMsgs, k, len(window))
	}
	sort.Slice(window, func(i, j int) bool {
		if window[i].Timestamp.Equal(window[j].Timestamp) {
			return window[i].ID < window[j].ID
		}
		return window[i].Timestamp.Before(window[j].Timestamp)
	})
	return window[k-1].Content, nil
}
