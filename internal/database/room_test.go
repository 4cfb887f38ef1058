package database

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateRoomIdempotent(t *testing.T) {
	d := newTestDB(t)
	alice := createTestUser(t, d, "alice")
	bob := createTestUser(t, d, "bob")

	id, err := d.CreateRoom("team", "Team", "private team room", true, false, []string{alice.ID.String()})
	require.NoError(t, err)
	require.Equal(t, "team", id)

	// second create with a different member set is a no-op
	id, err = d.CreateRoom("team", "Other Name", "", true, false, []string{alice.ID.String(), bob.ID.String()})
	require.NoError(t, err)
	require.Equal(t, "team", id)

	room, err := d.GetRoom("team", alice.ID)
	require.NoError(t, err)
	require.Equal(t, "Team", room.Name)

	members, err := d.GetRoomUsers("team")
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, alice.ID, members[0].ID)
}

func TestGetRoomAccess(t *testing.T) {
	d := newTestDB(t)
	alice := createTestUser(t, d, "alice")
	bob := createTestUser(t, d, "bob")

	_, err := d.CreateRoom("secret", "Secret", "", true, false, []string{alice.ID.String()})
	require.NoError(t, err)

	room, err := d.GetRoom("secret", alice.ID)
	require.NoError(t, err)
	require.Equal(t, "secret", room.ID)

	_, err = d.GetRoom("secret", bob.ID)
	require.ErrorIs(t, err, ErrAccessDenied)

	_, err = d.GetRoom("no-such-room", bob.ID)
	require.ErrorIs(t, err, ErrRoomNotFound)

	// public rooms are visible to anyone
	_, err = d.GetRoom("general", bob.ID)
	require.NoError(t, err)
}

func TestRemoveLastMemberOfPrivateRoom(t *testing.T) {
	d := newTestDB(t)
	alice := createTestUser(t, d, "alice")
	bob := createTestUser(t, d, "bob")

	_, err := d.CreateRoom("secret", "Secret", "", true, false, []string{alice.ID.String()})
	require.NoError(t, err)

	err = d.RemoveUserFromRoom("secret", alice.ID)
	require.ErrorIs(t, err, ErrRoomCannotBeEmpty)

	// membership must be unchanged after the rejected removal
	members, err := d.GetRoomUsers("secret")
	require.NoError(t, err)
	require.Len(t, members, 1)

	require.NoError(t, d.AddUserToRoom("secret", bob.ID))
	require.NoError(t, d.RemoveUserFromRoom("secret", alice.ID))

	members, err = d.GetRoomUsers("secret")
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, bob.ID, members[0].ID)
}

func TestAddUserToRoomTwice(t *testing.T) {
	d := newTestDB(t)
	alice := createTestUser(t, d, "alice")

	_, err := d.CreateRoom("team", "Team", "", true, false, []string{alice.ID.String()})
	require.NoError(t, err)

	require.NoError(t, d.AddUserToRoom("team", alice.ID))

	members, err := d.GetRoomUsers("team")
	require.NoError(t, err)
	require.Len(t, members, 1)
}

func TestGetRoomsPartition(t *testing.T) {
	d := newTestDB(t)
	alice := createTestUser(t, d, "alice")
	bob := createTestUser(t, d, "bob")

	_, err := d.CreateRoom("alice-bob", "alice, bob", "", true, true, []string{alice.ID.String(), bob.ID.String()})
	require.NoError(t, err)
	_, err = d.CreateRoom("random", "Random", "off-topic", false, false, nil)
	require.NoError(t, err)
	_, err = d.CreateRoom("hidden", "Hidden", "", true, false, []string{bob.ID.String()})
	require.NoError(t, err)

	conversations, channels, err := d.GetRooms(alice.ID)
	require.NoError(t, err)

	require.Len(t, conversations, 1)
	require.Equal(t, "alice-bob", conversations[0].ID)

	// alice is not a member of "hidden", so only public channels remain
	ids := make([]string, 0, len(channels))
	for _, room := range channels {
		ids = append(ids, room.ID)
	}
	require.ElementsMatch(t, []string{"general", "random"}, ids)
}
