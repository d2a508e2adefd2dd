// Package models defines the server-side domain types for contactsync:
// contacts, partial contact updates, and sync log entries.
package models

import "time"

// Address is the postal address block of a contact.
type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	Country    string `json:"country,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}

// Contact is a single address-book record owned by one user.
// (UserID, ID) uniquely identifies a contact; every store operation is
// scoped by UserID.
type Contact struct {
	ID             string            `json:"id"`
	UserID         string            `json:"-"`
	FirstName      string            `json:"firstName"`
	LastName       string            `json:"lastName"`
	Email          string            `json:"email,omitempty"`
	Phone          string            `json:"phone,omitempty"`
	Company        string            `json:"company,omitempty"`
	Title          string            `json:"title,omitempty"`
	Notes          string            `json:"notes,omitempty"`
	Address        *Address          `json:"address,omitempty"`
	Tags           []string          `json:"tags,omitempty"`
	Category       string            `json:"category,omitempty"`
	Categories     []string          `json:"categories,omitempty"`
	SocialProfiles map[string]string `json:"socialProfiles,omitempty"`
	IsFavorite     bool              `json:"isFavorite"`
	AvatarKey      string            `json:"avatarKey,omitempty"`
	LastSyncedAt   time.Time         `json:"lastSyncedAt"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// ContactPatch is a partial contact update. A nil field means "not present";
// present fields are applied on update and participate in conflict
// detection. Slice and map fields use nil as "not present" and an empty
// (non-nil) value as "present and empty".
type ContactPatch struct {
	FirstName      *string           `json:"firstName,omitempty"`
	LastName       *string           `json:"lastName,omitempty"`
	Email          *string           `json:"email,omitempty"`
	Phone          *string           `json:"phone,omitempty"`
	Company        *string           `json:"company,omitempty"`
	Title          *string           `json:"title,omitempty"`
	Notes          *string           `json:"notes,omitempty"`
	Address        *Address          `json:"address,omitempty"`
	Tags           []string          `json:"tags,omitempty"`
	Category       *string           `json:"category,omitempty"`
	Categories     []string          `json:"categories,omitempty"`
	SocialProfiles map[string]string `json:"socialProfiles,omitempty"`
	IsFavorite     *bool             `json:"isFavorite,omitempty"`
	AvatarKey      *string           `json:"avatarKey,omitempty"`
	LastSyncedAt   *time.Time        `json:"lastSyncedAt,omitempty"`
}

// Apply copies the present fields of the patch onto the contact.
// ID, UserID and the managed timestamps are never touched here.
func (p *ContactPatch) Apply(c *Contact) {
	if p.FirstName != nil {
		c.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		c.LastName = *p.LastName
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Company != nil {
		c.Company = *p.Company
	}
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Notes != nil {
		c.Notes = *p.Notes
	}
	if p.Address != nil {
		a := *p.Address
		c.Address = &a
	}
	if p.Tags != nil {
		c.Tags = append([]string(nil), p.Tags...)
	}
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.Categories != nil {
		c.Categories = append([]string(nil), p.Categories...)
	}
	if p.SocialProfiles != nil {
		m := make(map[string]string, len(p.SocialProfiles))
		for k, v := range p.SocialProfiles {
			m[k] = v
		}
		c.SocialProfiles = m
	}
	if p.IsFavorite != nil {
		c.IsFavorite = *p.IsFavorite
	}
	if p.AvatarKey != nil {
		c.AvatarKey = *p.AvatarKey
	}
}

// PatchFromContact converts a full contact payload into a patch touching
// every schema field. Used when a conflict resolution needs to write one
// side of the conflict verbatim.
func PatchFromContact(c *Contact) *ContactPatch {
	var addr *Address
	if c.Address != nil {
		a := *c.Address
		addr = &a
	}
	tags := append([]string(nil), c.Tags...)
	if tags == nil {
		tags = []string{}
	}
	cats := append([]string(nil), c.Categories...)
	if cats == nil {
		cats = []string{}
	}
	profiles := make(map[string]string, len(c.SocialProfiles))
	for k, v := range c.SocialProfiles {
		profiles[k] = v
	}
	fav := c.IsFavorite
	return &ContactPatch{
		FirstName:      &c.FirstName,
		LastName:       &c.LastName,
		Email:          &c.Email,
		Phone:          &c.Phone,
		Company:        &c.Company,
		Title:          &c.Title,
		Notes:          &c.Notes,
		Address:        addr,
		Tags:           tags,
		Category:       &c.Category,
		Categories:     cats,
		SocialProfiles: profiles,
		IsFavorite:     &fav,
		AvatarKey:      &c.AvatarKey,
	}
}
