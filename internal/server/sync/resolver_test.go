package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkraskov/contactsync/internal/server/models"
)

func TestResolutionIsValid(t *testing.T) {
	assert.True(t, ResolutionLocal.IsValid())
	assert.True(t, ResolutionServer.IsValid())
	assert.True(t, ResolutionMerge.IsValid())
	assert.False(t, Resolution("newest").IsValid())
	assert.False(t, Resolution("").IsValid())
}

func TestUnionTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, unionTags([]string{"a", "b"}, []string{"b", "c"}))
	assert.Equal(t, []string{"a"}, unionTags(nil, []string{"a"}))
	assert.Empty(t, unionTags(nil, nil))
}

func TestUnionProfilesLocalWins(t *testing.T) {
	got := unionProfiles(
		map[string]string{"github": "server", "twitter": "sv"},
		map[string]string{"github": "local", "linkedin": "lc"},
	)
	assert.Equal(t, map[string]string{"github": "local", "twitter": "sv", "linkedin": "lc"}, got)
}

func mergeConflict(localSynced, serverSynced time.Time) *models.ConflictData {
	server := &models.Contact{
		ID:           "c1",
		FirstName:    "John",
		LastName:     "Doe",
		Phone:        "+371 20000000",
		Tags:         []string{"work"},
		LastSyncedAt: serverSynced,
	}
	local := &models.ContactPatch{
		FirstName:    strPtr("Jane"),
		Tags:         []string{"gym"},
		LastSyncedAt: timePtr(localSynced),
	}
	return &models.ConflictData{
		LocalVersion:   local,
		ServerVersion:  server,
		ConflictFields: []string{"firstName", "tags"},
	}
}

func TestMergePatchLocalNewer(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	conflict := mergeConflict(base.Add(time.Hour), base)

	merged := mergePatch(conflict)

	// local scalars win, tags union is server-first
	require.NotNil(t, merged.FirstName)
	assert.Equal(t, "Jane", *merged.FirstName)
	require.NotNil(t, merged.LastName)
	assert.Equal(t, "Doe", *merged.LastName)
	assert.Equal(t, []string{"work", "gym"}, merged.Tags)
	assert.Nil(t, merged.LastSyncedAt)
}

func TestMergePatchServerNewer(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	conflict := mergeConflict(base.Add(-time.Hour), base)

	merged := mergePatch(conflict)

	require.NotNil(t, merged.FirstName)
	assert.Equal(t, "John", *merged.FirstName)
	// collections still union regardless of recency
	assert.Equal(t, []string{"work", "gym"}, merged.Tags)
}

func TestMergePatchEqualTimestampsServerWins(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	conflict := mergeConflict(base, base)

	merged := mergePatch(conflict)
	require.NotNil(t, merged.FirstName)
	assert.Equal(t, "John", *merged.FirstName)
}

func TestMergePatchNoLocalTimestamp(t *testing.T) {
	conflict := mergeConflict(time.Time{}, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	conflict.LocalVersion.LastSyncedAt = nil

	merged := mergePatch(conflict)
	require.NotNil(t, merged.FirstName)
	assert.Equal(t, "John", *merged.FirstName)
}

func TestMergePatchProfilesUnion(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	conflict := &models.ConflictData{
		LocalVersion: &models.ContactPatch{
			SocialProfiles: map[string]string{"github": "local", "linkedin": "lc"},
			LastSyncedAt:   timePtr(base.Add(time.Hour)),
		},
		ServerVersion: &models.Contact{
			FirstName:      "John",
			LastName:       "Doe",
			SocialProfiles: map[string]string{"github": "server", "twitter": "sv"},
			LastSyncedAt:   base,
		},
		ConflictFields: []string{"socialProfiles"},
	}

	merged := mergePatch(conflict)
	assert.Equal(t, map[string]string{"github": "local", "twitter": "sv", "linkedin": "lc"}, merged.SocialProfiles)
}

func TestResolutionPatchLocal(t *testing.T) {
	conflict := mergeConflict(time.Now(), time.Now())
	assert.Same(t, conflict.LocalVersion, resolutionPatch(conflict, ResolutionLocal))
}

func TestResolutionPatchServer(t *testing.T) {
	conflict := mergeConflict(time.Now(), time.Now())

	patch := resolutionPatch(conflict, ResolutionServer)
	require.NotNil(t, patch.FirstName)
	assert.Equal(t, "John", *patch.FirstName)
	assert.Equal(t, []string{"work"}, patch.Tags)
}
