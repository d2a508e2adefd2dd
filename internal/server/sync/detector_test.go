package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkraskov/contactsync/internal/server/models"
)

func strPtr(s string) *string    { return &s }
func boolPtr(b bool) *bool       { return &b }
func timePtr(t time.Time) *time.Time { return &t }

func serverContact() *models.Contact {
	return &models.Contact{
		ID:             "c1",
		UserID:         "u1",
		FirstName:      "John",
		LastName:       "Doe",
		Email:          "john@example.com",
		Phone:          "+371 20000000",
		Tags:           []string{"friends", "work"},
		Category:       "work",
		Categories:     []string{"work"},
		SocialProfiles: map[string]string{"github": "johndoe"},
		LastSyncedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestDiffFieldsNoDivergence(t *testing.T) {
	server := serverContact()
	local := &models.ContactPatch{
		FirstName: strPtr("John"),
		Email:     strPtr("john@example.com"),
	}
	assert.Empty(t, diffFields(local, server))
}

func TestDiffFieldsAbsentFieldsIgnored(t *testing.T) {
	// A patch that says nothing can never conflict.
	assert.Empty(t, diffFields(&models.ContactPatch{}, serverContact()))
}

func TestDiffFieldsSingleScalar(t *testing.T) {
	local := &models.ContactPatch{FirstName: strPtr("Johnny")}
	assert.Equal(t, []string{"firstName"}, diffFields(local, serverContact()))
}

func TestDiffFieldsMultipleInSchemaOrder(t *testing.T) {
	local := &models.ContactPatch{
		Email:     strPtr("johnny@example.com"),
		FirstName: strPtr("Johnny"),
		Tags:      []string{"gym"},
	}
	assert.Equal(t, []string{"firstName", "email", "tags"}, diffFields(local, serverContact()))
}

func TestDiffFieldsTagsAreSets(t *testing.T) {
	local := &models.ContactPatch{Tags: []string{"work", "friends"}}
	assert.Empty(t, diffFields(local, serverContact()))
}

func TestDiffFieldsLastSyncedAtExcluded(t *testing.T) {
	local := &models.ContactPatch{
		FirstName:    strPtr("John"),
		LastSyncedAt: timePtr(time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)),
	}
	assert.Empty(t, diffFields(local, serverContact()))
}

func TestDiffFieldsAddressNilVsEmpty(t *testing.T) {
	// A present-but-empty address equals a missing server address.
	local := &models.ContactPatch{Address: &models.Address{}}
	assert.Empty(t, diffFields(local, serverContact()))

	local = &models.ContactPatch{Address: &models.Address{City: "Riga"}}
	assert.Equal(t, []string{"address"}, diffFields(local, serverContact()))
}

func TestDiffFieldsSocialProfiles(t *testing.T) {
	local := &models.ContactPatch{SocialProfiles: map[string]string{"github": "johndoe"}}
	assert.Empty(t, diffFields(local, serverContact()))

	local = &models.ContactPatch{SocialProfiles: map[string]string{"github": "jdoe"}}
	assert.Equal(t, []string{"socialProfiles"}, diffFields(local, serverContact()))
}

func TestDetectConflictNil(t *testing.T) {
	local := &models.ContactPatch{FirstName: strPtr("John")}
	assert.Nil(t, detectConflict(local, serverContact()))
}

func TestDetectConflictCarriesBothVersions(t *testing.T) {
	server := serverContact()
	local := &models.ContactPatch{FirstName: strPtr("Johnny"), IsFavorite: boolPtr(true)}

	conflict := detectConflict(local, server)
	require.NotNil(t, conflict)
	assert.Equal(t, []string{"firstName", "isFavorite"}, conflict.ConflictFields)
	assert.Same(t, local, conflict.LocalVersion)
	assert.Same(t, server, conflict.ServerVersion)
}
