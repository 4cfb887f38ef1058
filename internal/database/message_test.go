package database

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/xid"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/talkroom/internal/models"
)

func TestSendMessageRequiresAccess(t *testing.T) {
	d := newTestDB(t)
	alice := createTestUser(t, d, "alice")
	bob := createTestUser(t, d, "bob")

	_, err := d.CreateRoom("secret", "Secret", "", true, false, []string{alice.ID.String()})
	require.NoError(t, err)

	_, err = d.SendMessage("secret", bob.ID, "should not land", nil)
	require.ErrorIs(t, err, ErrAccessDenied)

	var count int64
	require.NoError(t, d.db.Model(&models.Message{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestSendMessageMissingUploadRollsBack(t *testing.T) {
	d := newTestDB(t)
	alice := createTestUser(t, d, "alice")

	_, err := d.SendMessage("general", alice.ID, "with attachment", []string{"no-such-upload"})
	require.ErrorIs(t, err, ErrUploadNotFound)

	// the whole send must roll back, including the message row
	var count int64
	require.NoError(t, d.db.Model(&models.Message{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestSendMessageLinksUploads(t *testing.T) {
	d := newTestDB(t)
	alice := createTestUser(t, d, "alice")

	roomID := "general"
	first := &models.Upload{ID: xid.New().String(), UploadedBy: alice.ID, RoomID: &roomID, Filename: "a.png", URL: "/uploads/a.png", CreatedAt: time.Now()}
	second := &models.Upload{ID: xid.New().String(), UploadedBy: alice.ID, RoomID: &roomID, Filename: "b.pdf", URL: "/uploads/b.pdf", CreatedAt: time.Now()}
	require.NoError(t, d.SaveUpload(first))
	require.NoError(t, d.SaveUpload(second))

	message, err := d.SendMessage("general", alice.ID, "see files", []string{first.ID, second.ID})
	require.NoError(t, err)
	require.Len(t, message.Uploads, 2)

	messages, err := d.GetMessagesForRoom("general", alice.ID, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Len(t, messages[0].Uploads, 2)
}

func TestGetMessagesPagination(t *testing.T) {
	d := newTestDB(t)
	alice := createTestUser(t, d, "alice")

	sent := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		message, err := d.SendMessage("general", alice.ID, fmt.Sprintf("msg %d", i), nil)
		require.NoError(t, err)
		sent = append(sent, message.ID)
		time.Sleep(2 * time.Millisecond) // distinct created_at for strict ordering
	}

	page0, err := d.GetMessagesForRoom("general", alice.ID, 0)
	require.NoError(t, err)
	require.Len(t, page0, 5)

	// newest first
	require.Equal(t, sent[6], page0[0].ID)
	require.Equal(t, sent[2], page0[4].ID)
	for i := 1; i < len(page0); i++ {
		require.True(t, page0[i].CreatedAt.Before(page0[i-1].CreatedAt))
	}

	page1, err := d.GetMessagesForRoom("general", alice.ID, 1)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.Equal(t, sent[1], page1[0].ID)
	require.Equal(t, sent[0], page1[1].ID)

	page2, err := d.GetMessagesForRoom("general", alice.ID, 2)
	require.NoError(t, err)
	require.Empty(t, page2)

	// messages carry the denormalized author profile
	require.Equal(t, "alice", page0[0].User.Username)
}

func TestGetMessagesLeakProof(t *testing.T) {
	d := newTestDB(t)
	alice := createTestUser(t, d, "alice")
	bob := createTestUser(t, d, "bob")

	_, err := d.CreateRoom("secret", "Secret", "", true, false, []string{alice.ID.String()})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := d.SendMessage("secret", alice.ID, "classified", nil)
		require.NoError(t, err)
	}

	// no page leaks private messages to a non-member
	for page := 0; page < 3; page++ {
		messages, err := d.GetMessagesForRoom("secret", bob.ID, page)
		require.NoError(t, err)
		require.Empty(t, messages)
	}

	messages, err := d.GetMessagesForRoom("secret", alice.ID, 0)
	require.NoError(t, err)
	require.Len(t, messages, 3)
}
