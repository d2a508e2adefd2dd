package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestApplyOnlyPresentFields(t *testing.T) {
	c := &Contact{
		ID:        "c1",
		UserID:    "u1",
		FirstName: "John",
		LastName:  "Doe",
		Email:     "john@example.com",
		Tags:      []string{"work"},
	}

	p := &ContactPatch{
		FirstName: strPtr("Johnny"),
		Phone:     strPtr("+371 20000000"),
	}
	p.Apply(c)

	assert.Equal(t, "Johnny", c.FirstName)
	assert.Equal(t, "+371 20000000", c.Phone)
	// absent fields untouched
	assert.Equal(t, "Doe", c.LastName)
	assert.Equal(t, "john@example.com", c.Email)
	assert.Equal(t, []string{"work"}, c.Tags)
	assert.Equal(t, "c1", c.ID)
	assert.Equal(t, "u1", c.UserID)
}

func TestApplyEmptyCollectionsClear(t *testing.T) {
	c := &Contact{
		FirstName:      "John",
		LastName:       "Doe",
		Tags:           []string{"work"},
		SocialProfiles: map[string]string{"github": "johndoe"},
	}

	p := &ContactPatch{
		Tags:           []string{},
		SocialProfiles: map[string]string{},
	}
	p.Apply(c)

	assert.NotNil(t, c.Tags)
	assert.Empty(t, c.Tags)
	assert.NotNil(t, c.SocialProfiles)
	assert.Empty(t, c.SocialProfiles)
}

func TestApplyCopiesCollections(t *testing.T) {
	tags := []string{"a"}
	profiles := map[string]string{"k": "v"}
	addr := &Address{City: "Riga"}

	c := &Contact{FirstName: "John", LastName: "Doe"}
	p := &ContactPatch{Tags: tags, SocialProfiles: profiles, Address: addr}
	p.Apply(c)

	tags[0] = "mutated"
	profiles["k"] = "mutated"
	addr.City = "mutated"

	assert.Equal(t, []string{"a"}, c.Tags)
	assert.Equal(t, "v", c.SocialProfiles["k"])
	assert.Equal(t, "Riga", c.Address.City)
}

func TestApplyFavoriteFalseIsPresent(t *testing.T) {
	c := &Contact{FirstName: "John", LastName: "Doe", IsFavorite: true}
	p := &ContactPatch{IsFavorite: boolPtr(false)}
	p.Apply(c)
	assert.False(t, c.IsFavorite)
}

func TestPatchFromContactAllFieldsPresent(t *testing.T) {
	c := &Contact{
		ID:        "c1",
		UserID:    "u1",
		FirstName: "John",
		LastName:  "Doe",
	}

	p := PatchFromContact(c)

	require.NotNil(t, p.FirstName)
	assert.Equal(t, "John", *p.FirstName)
	require.NotNil(t, p.Email)
	assert.Equal(t, "", *p.Email)
	// nil collections become present-and-empty so they overwrite on apply
	assert.NotNil(t, p.Tags)
	assert.Empty(t, p.Tags)
	assert.NotNil(t, p.Categories)
	assert.NotNil(t, p.SocialProfiles)
	require.NotNil(t, p.IsFavorite)
	assert.False(t, *p.IsFavorite)
	// address stays absent when the contact has none
	assert.Nil(t, p.Address)
}

func TestPatchFromContactRoundTrip(t *testing.T) {
	src := &Contact{
		ID:             "c1",
		UserID:         "u1",
		FirstName:      "John",
		LastName:       "Doe",
		Email:          "john@example.com",
		Tags:           []string{"work"},
		SocialProfiles: map[string]string{"github": "johndoe"},
		IsFavorite:     true,
	}

	dst := &Contact{ID: "c2", UserID: "u1", FirstName: "Jane", LastName: "Roe", Phone: "+1"}
	PatchFromContact(src).Apply(dst)

	assert.Equal(t, "John", dst.FirstName)
	assert.Equal(t, "Doe", dst.LastName)
	assert.Equal(t, []string{"work"}, dst.Tags)
	assert.True(t, dst.IsFavorite)
	// every schema field is present in the patch, so phone is overwritten too
	assert.Equal(t, "", dst.Phone)
	// identity is never part of a patch
	assert.Equal(t, "c2", dst.ID)
}
