// Package sync implements the offline-sync core: batch change application,
// the sync log state machine, field-level conflict detection and conflict
// resolution.
package sync

import (
	"encoding/json"
	"sort"

	"github.com/vkraskov/contactsync/internal/server/models"
)

// canonicalJSON renders a value in its canonical serialized form so that
// slices and maps are compared structurally, not by reference.
// encoding/json already emits map keys in sorted order.
func canonicalJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func sortedTags(tags []string) []string {
	out := append([]string{}, tags...)
	sort.Strings(out)
	return out
}

func emptySliceIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func emptyMapIfNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

// diffFields compares every present field of the patch against the stored
// contact and returns the diverging field names in schema order. The id,
// owner and lastSyncedAt fields never participate. Tags are compared as
// sets.
func diffFields(local *models.ContactPatch, server *models.Contact) []string {
	var diffs []string
	add := func(name string, localVal, serverVal any) {
		if canonicalJSON(localVal) != canonicalJSON(serverVal) {
			diffs = append(diffs, name)
		}
	}

	if local.FirstName != nil {
		add("firstName", *local.FirstName, server.FirstName)
	}
	if local.LastName != nil {
		add("lastName", *local.LastName, server.LastName)
	}
	if local.Email != nil {
		add("email", *local.Email, server.Email)
	}
	if local.Phone != nil {
		add("phone", *local.Phone, server.Phone)
	}
	if local.Company != nil {
		add("company", *local.Company, server.Company)
	}
	if local.Title != nil {
		add("title", *local.Title, server.Title)
	}
	if local.Notes != nil {
		add("notes", *local.Notes, server.Notes)
	}
	if local.Address != nil {
		serverAddr := server.Address
		if serverAddr == nil {
			serverAddr = &models.Address{}
		}
		add("address", local.Address, serverAddr)
	}
	if local.Tags != nil {
		add("tags", sortedTags(local.Tags), sortedTags(server.Tags))
	}
	if local.Category != nil {
		add("category", *local.Category, server.Category)
	}
	if local.Categories != nil {
		add("categories", emptySliceIfNil(local.Categories), emptySliceIfNil(server.Categories))
	}
	if local.SocialProfiles != nil {
		add("socialProfiles", emptyMapIfNil(local.SocialProfiles), emptyMapIfNil(server.SocialProfiles))
	}
	if local.IsFavorite != nil {
		add("isFavorite", *local.IsFavorite, server.IsFavorite)
	}
	if local.AvatarKey != nil {
		add("avatarKey", *local.AvatarKey, server.AvatarKey)
	}

	return diffs
}

// detectConflict is the pure comparison step: nil when the patch agrees with
// the stored contact on every present field, otherwise both versions plus
// the diverging field names.
func detectConflict(local *models.ContactPatch, server *models.Contact) *models.ConflictData {
	diffs := diffFields(local, server)
	if len(diffs) == 0 {
		return nil
	}
	return &models.ConflictData{
		LocalVersion:   local,
		ServerVersion:  server,
		ConflictFields: diffs,
	}
}
