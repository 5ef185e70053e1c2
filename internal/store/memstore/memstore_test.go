package memstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courier/internal/models"
	"courier/internal/store"
)

func seedUsers(t *testing.T, s *MemStore, names ...string) []string {
	t.Helper()
	mobiles := make([]string, 0, len(names))
	for i, name := range names {
		mobile := "98000000" + string(rune('0'+i))
		_, err := s.RegisterUser(name, mobile)
		require.NoError(t, err)
		mobiles = append(mobiles, mobile)
	}
	return mobiles
}

// sendAt drafts a message and immediately sends it with a fixed timestamp.
func sendAt(t *testing.T, s *MemStore, content, sender, group string, ts time.Time) models.Message {
	t.Helper()
	draft := s.DraftMessage(content)
	draft.Timestamp = ts
	_, err := s.SendMessage(draft, sender, group)
	require.NoError(t, err)
	return draft
}

func TestRegisterUser(t *testing.T) {
	s := New()

	user, err := s.RegisterUser("Alice", "9810000001")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "9810000001", user.Mobile)

	_, err = s.RegisterUser("Alice Again", "9810000001")
	assert.ErrorIs(t, err, store.ErrDuplicateUser)

	_, err = s.RegisterUser("Bob", "9810000002")
	assert.NoError(t, err)
}

func TestCreateGroupPersonalChat(t *testing.T) {
	s := New()
	mobiles := seedUsers(t, s, "Alice", "Bob")

	group, err := s.CreateGroup(mobiles)
	require.NoError(t, err)
	assert.Equal(t, "Bob", group.Name, "personal chat is named after the second user")
	assert.Equal(t, models.KindPersonal, group.Kind)
	assert.Empty(t, group.Admin, "personal chats have no admin")

	_, err = s.CreateGroup(mobiles)
	assert.ErrorIs(t, err, store.ErrDuplicateGroupName)
}

func TestCreateGroupUnknownMember(t *testing.T) {
	s := New()
	mobiles := seedUsers(t, s, "Alice", "Bob")

	_, err := s.CreateGroup(append(mobiles, "9999999999"))
	require.ErrorIs(t, err, store.ErrUnknownUser)
	assert.Contains(t, err.Error(), "9999999999")

	// the failed call must not have written any membership
	_, err = s.CreateGroup(mobiles)
	assert.NoError(t, err)
}

func TestCreateGroupNamingSequence(t *testing.T) {
	s := New()
	m := seedUsers(t, s, "Alex", "Bob", "Charlie", "Dan", "Evan", "Felix", "Graham", "Hugh")

	g1, err := s.CreateGroup([]string{m[0], m[1], m[2]})
	require.NoError(t, err)
	assert.Equal(t, "Group 1", g1.Name)
	assert.Equal(t, m[0], g1.Admin, "first listed member is admin")

	// a personal chat in between must not consume the counter
	personal, err := s.CreateGroup([]string{m[3], m[4]})
	require.NoError(t, err)
	assert.Equal(t, "Evan", personal.Name)

	g2, err := s.CreateGroup([]string{m[5], m[6], m[7]})
	require.NoError(t, err)
	assert.Equal(t, "Group 2", g2.Name)
}

func TestDraftMessageIDs(t *testing.T) {
	s := New()

	for want := 0; want < 5; want++ {
		msg := s.DraftMessage("draft")
		assert.Equal(t, want, msg.ID)
		assert.Empty(t, msg.Sender)
		assert.False(t, msg.Timestamp.IsZero())
	}
}

func TestSendMessage(t *testing.T) {
	s := New()
	m := seedUsers(t, s, "Alice", "Bob", "Charlie", "Mallory")
	group, err := s.CreateGroup([]string{m[0], m[1], m[2]})
	require.NoError(t, err)

	draft := s.DraftMessage("first!")
	count, err := s.SendMessage(draft, m[1], group.Name)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	t.Run("non-member cannot send", func(t *testing.T) {
		d := s.DraftMessage("let me in")
		_, err := s.SendMessage(d, m[3], group.Name)
		assert.ErrorIs(t, err, store.ErrNotAMember)

		msgs, err := s.GroupMessages(group.Name)
		require.NoError(t, err)
		assert.Len(t, msgs, 1, "failed send must not grow the group list")
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := s.SendMessage(draft, m[1], "No Such Group")
		assert.ErrorIs(t, err, store.ErrUnknownGroup)
	})

	t.Run("unknown sender", func(t *testing.T) {
		_, err := s.SendMessage(draft, "0000000000", group.Name)
		assert.ErrorIs(t, err, store.ErrUnknownUser)
	})

	t.Run("undrafted id", func(t *testing.T) {
		_, err := s.SendMessage(models.Message{ID: 404, Content: "ghost"}, m[1], group.Name)
		assert.ErrorIs(t, err, store.ErrUnknownDraft)
	})

	t.Run("send finalizes content and timestamp", func(t *testing.T) {
		ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		d := s.DraftMessage("rough")
		d.Content = "polished"
		d.Timestamp = ts
		count, err := s.SendMessage(d, m[2], group.Name)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		msgs, err := s.GroupMessages(group.Name)
		require.NoError(t, err)
		last := msgs[len(msgs)-1]
		assert.Equal(t, "polished", last.Content)
		assert.True(t, last.Timestamp.Equal(ts))
		assert.Equal(t, m[2], last.Sender)
	})
}

func TestChangeAdmin(t *testing.T) {
	s := New()
	m := seedUsers(t, s, "Alice", "Bob", "Charlie", "Outsider")
	group, err := s.CreateGroup([]string{m[0], m[1], m[2]})
	require.NoError(t, err)

	err = s.ChangeAdmin(m[0], m[1], "No Such Group")
	assert.ErrorIs(t, err, store.ErrUnknownGroup)

	err = s.ChangeAdmin(m[0], "0000000000", group.Name)
	assert.ErrorIs(t, err, store.ErrUnknownUser)

	err = s.ChangeAdmin(m[1], m[2], group.Name)
	assert.ErrorIs(t, err, store.ErrNotAuthorized, "non-admin approver")

	err = s.ChangeAdmin(m[0], m[3], group.Name)
	assert.ErrorIs(t, err, store.ErrNotAMember)

	require.NoError(t, s.ChangeAdmin(m[0], m[1], group.Name))
	got, err := s.GetGroup(group.Name)
	require.NoError(t, err)
	assert.Equal(t, m[1], got.Admin)

	// the old admin lost their rights with the transfer
	err = s.ChangeAdmin(m[0], m[2], group.Name)
	assert.ErrorIs(t, err, store.ErrNotAuthorized)
}

func TestChangeAdminPersonalChat(t *testing.T) {
	s := New()
	m := seedUsers(t, s, "Alice", "Bob")
	group, err := s.CreateGroup(m)
	require.NoError(t, err)

	// nobody holds admin rights in a personal chat
	err = s.ChangeAdmin(m[0], m[1], group.Name)
	assert.ErrorIs(t, err, store.ErrNotAuthorized)
}

func TestRemoveUser(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	s := New()
	m := seedUsers(t, s, "Alice", "Bob", "Charlie")
	group, err := s.CreateGroup(m)
	require.NoError(t, err)

	sendAt(t, s, "from alice", m[0], group.Name, base.Add(1*time.Minute))
	sendAt(t, s, "from bob 1", m[1], group.Name, base.Add(2*time.Minute))
	sendAt(t, s, "from bob 2", m[1], group.Name, base.Add(3*time.Minute))

	t.Run("unregistered mobile", func(t *testing.T) {
		_, err := s.RemoveUser("0000000000")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("admin cannot be removed", func(t *testing.T) {
		_, err := s.RemoveUser(m[0])
		assert.ErrorIs(t, err, store.ErrCannotRemoveAdmin)
	})

	res, err := s.RemoveUser(m[1])
	require.NoError(t, err)
	assert.Equal(t, 2, res.MembersRemaining)
	assert.Equal(t, 1, res.GroupMessages, "bob's two messages purged from the group")
	assert.Equal(t, 1, res.TotalMessages, "and from the ledger")

	msgs, err := s.GroupMessages(group.Name)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "from alice", msgs[0].Content)

	t.Run("purged messages leave the query window", func(t *testing.T) {
		_, err := s.KthLatestBetween(base, base.Add(time.Hour), 2)
		assert.ErrorIs(t, err, store.ErrInsufficientMsgs)

		content, err := s.KthLatestBetween(base, base.Add(time.Hour), 1)
		require.NoError(t, err)
		assert.Equal(t, "from alice", content)
	})

	t.Run("user record survives, membership does not", func(t *testing.T) {
		_, err := s.GetUser(m[1])
		assert.NoError(t, err)

		_, err = s.RemoveUser(m[1])
		assert.ErrorIs(t, err, store.ErrUserNotFound, "already in no group")
	})
}

func TestKthLatestBetween(t *testing.T) {
	base := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	s := New()
	m := seedUsers(t, s, "Alice", "Bob", "Charlie")
	group, err := s.CreateGroup(m)
	require.NoError(t, err)

	t1 := base.Add(10 * time.Minute)
	t2 := base.Add(20 * time.Minute)
	t3 := base.Add(30 * time.Minute)
	sendAt(t, s, "earliest", m[0], group.Name, t1)
	sendAt(t, s, "middle", m[1], group.Name, t2)
	sendAt(t, s, "latest", m[2], group.Name, t3)

	content, err := s.KthLatestBetween(base, base.Add(time.Hour), 1)
	require.NoError(t, err)
	assert.Equal(t, "earliest", content)

	content, err = s.KthLatestBetween(base, base.Add(time.Hour), 3)
	require.NoError(t, err)
	assert.Equal(t, "latest", content)

	_, err = s.KthLatestBetween(base, base.Add(time.Hour), 4)
	assert.ErrorIs(t, err, store.ErrInsufficientMsgs)

	t.Run("bounds are exclusive", func(t *testing.T) {
		content, err := s.KthLatestBetween(t1, t3, 1)
		require.NoError(t, err)
		assert.Equal(t, "middle", content, "messages at exactly start or end do not qualify")

		_, err = s.KthLatestBetween(t1, t3, 2)
		assert.ErrorIs(t, err, store.ErrInsufficientMsgs)
	})

	t.Run("ties break by creation id", func(t *testing.T) {
		first := sendAt(t, s, "tie a", m[0], group.Name, base.Add(40*time.Minute))
		second := sendAt(t, s, "tie b", m[1], group.Name, base.Add(40*time.Minute))
		require.Less(t, first.ID, second.ID)

		content, err := s.KthLatestBetween(base.Add(35*time.Minute), base.Add(time.Hour), 1)
		require.NoError(t, err)
		assert.Equal(t, "tie a", content)
	})

	t.Run("spans the whole ledger, not one group", func(t *testing.T) {
		_, err := s.RegisterUser("Xena", "9810000101")
		require.NoError(t, err)
		_, err = s.RegisterUser("Yuri", "9810000102")
		require.NoError(t, err)
		chat, err := s.CreateGroup([]string{"9810000101", "9810000102"})
		require.NoError(t, err)

		sendAt(t, s, "other chat", "9810000102", chat.Name, base.Add(50*time.Minute))

		content, err := s.KthLatestBetween(base.Add(45*time.Minute), base.Add(time.Hour), 1)
		require.NoError(t, err)
		assert.Equal(t, "other chat", content)
	})
}
