package notify

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var (
	user1 = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	user2 = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	user3 = uuid.MustParse("00000000-0000-0000-0000-000000000003")
	user4 = uuid.MustParse("00000000-0000-0000-0000-000000000004")
)

func TestRecipients_ObserversPlusUploaderMinusActor(t *testing.T) {
	got := Recipients([]uuid.UUID{user1, user2, user3}, &user4, &user2)
	assert.ElementsMatch(t, []uuid.UUID{user1, user3, user4}, got)
}

func TestRecipients_ActingUploaderExcluded(t *testing.T) {
	got := Recipients([]uuid.UUID{user1, user2, user3}, &user1, &user1)
	assert.ElementsMatch(t, []uuid.UUID{user2, user3}, got)
}

func TestRecipients_NilUploaderAndActor(t *testing.T) {
	got := Recipients([]uuid.UUID{user1, user2}, nil, nil)
	assert.ElementsMatch(t, []uuid.UUID{user1, user2}, got)
}

func TestRecipients_ExternalActorDoesNotShrinkSet(t *testing.T) {
	// anonymous actors have no user id, so nobody is excluded
	got := Recipients([]uuid.UUID{user1}, &user2, nil)
	assert.ElementsMatch(t, []uuid.UUID{user1, user2}, got)
}

func TestRecipients_Empty(t *testing.T) {
	got := Recipients(nil, nil, nil)
	assert.Empty(t, got)
	got = Recipients(nil, &user1, &user1)
	assert.Empty(t, got)
}
