package sync

import (
	"github.com/vkraskov/contactsync/internal/server/models"
)

// Resolution is the strategy used to collapse a conflict into a single
// authoritative contact state.
type Resolution string

const (
	// ResolutionLocal keeps the client's version verbatim.
	ResolutionLocal Resolution = "local"
	// ResolutionServer keeps the stored server version verbatim.
	ResolutionServer Resolution = "server"
	// ResolutionMerge combines both sides field by field.
	ResolutionMerge Resolution = "merge"
)

// IsValid reports whether the resolution is one of the recognized strategies.
func (r Resolution) IsValid() bool {
	switch r {
	case ResolutionLocal, ResolutionServer, ResolutionMerge:
		return true
	default:
		return false
	}
}

func unionTags(server, local []string) []string {
	seen := make(map[string]bool, len(server)+len(local))
	out := make([]string, 0, len(server)+len(local))
	for _, t := range server {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for _, t := range local {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func unionProfiles(server, local map[string]string) map[string]string {
	out := make(map[string]string, len(server)+len(local))
	for k, v := range server {
		out[k] = v
	}
	// local entries take precedence on key collision
	for k, v := range local {
		out[k] = v
	}
	return out
}

// mergePatch computes the merge-strategy payload from a conflict pair:
// starting from the server version, tags become the union of both sides,
// social profiles the key union with local precedence, and every other field
// is taken wholesale from the side with the more recent lastSyncedAt. When
// the local side is not strictly newer, the server values stand.
func mergePatch(conflict *models.ConflictData) *models.ContactPatch {
	local := conflict.LocalVersion
	server := conflict.ServerVersion

	merged := models.PatchFromContact(server)

	localNewer := local.LastSyncedAt != nil && local.LastSyncedAt.After(server.LastSyncedAt)
	if localNewer {
		scalars := *local
		scalars.Tags = nil
		scalars.SocialProfiles = nil
		scalars.LastSyncedAt = nil
		applyPresent(merged, &scalars)
	}

	if local.Tags != nil {
		merged.Tags = unionTags(server.Tags, local.Tags)
	}
	if local.SocialProfiles != nil {
		merged.SocialProfiles = unionProfiles(server.SocialProfiles, local.SocialProfiles)
	}
	merged.LastSyncedAt = nil

	return merged
}

// applyPresent overlays the present fields of src onto dst.
func applyPresent(dst, src *models.ContactPatch) {
	if src.FirstName != nil {
		dst.FirstName = src.FirstName
	}
	if src.LastName != nil {
		dst.LastName = src.LastName
	}
	if src.Email != nil {
		dst.Email = src.Email
	}
	if src.Phone != nil {
		dst.Phone = src.Phone
	}
	if src.Company != nil {
		dst.Company = src.Company
	}
	if src.Title != nil {
		dst.Title = src.Title
	}
	if src.Notes != nil {
		dst.Notes = src.Notes
	}
	if src.Address != nil {
		a := *src.Address
		dst.Address = &a
	}
	if src.Category != nil {
		dst.Category = src.Category
	}
	if src.Categories != nil {
		dst.Categories = append([]string(nil), src.Categories...)
	}
	if src.IsFavorite != nil {
		dst.IsFavorite = src.IsFavorite
	}
	if src.AvatarKey != nil {
		dst.AvatarKey = src.AvatarKey
	}
}

// resolutionPatch maps a strategy to the payload that will be committed to
// the contact store.
func resolutionPatch(conflict *models.ConflictData, resolution Resolution) *models.ContactPatch {
	switch resolution {
	case ResolutionLocal:
		return conflict.LocalVersion
	case ResolutionServer:
		return models.PatchFromContact(conflict.ServerVersion)
	default:
		return mergePatch(conflict)
	}
}
