package contacts

import (
	"encoding/json"
	"fmt"

	"github.com/vkraskov/contactsync/internal/server/models"
)

// marshalJSONColumns serializes the document-valued contact fields for
// storage. Nil values are stored as SQL NULL rather than the JSON literal
// "null" so that absence survives a round trip.
func marshalJSONColumns(c *models.Contact) (address, tags, categories, profiles []byte, err error) {
	if c.Address != nil {
		if address, err = json.Marshal(c.Address); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("marshal address: %w", err)
		}
	}
	if c.Tags != nil {
		if tags, err = json.Marshal(c.Tags); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("marshal tags: %w", err)
		}
	}
	if c.Categories != nil {
		if categories, err = json.Marshal(c.Categories); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("marshal categories: %w", err)
		}
	}
	if c.SocialProfiles != nil {
		if profiles, err = json.Marshal(c.SocialProfiles); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("marshal social profiles: %w", err)
		}
	}
	return address, tags, categories, profiles, nil
}

func unmarshalJSONColumns(c *models.Contact, address, tags, categories, profiles []byte) error {
	if len(address) > 0 {
		if err := json.Unmarshal(address, &c.Address); err != nil {
			return fmt.Errorf("unmarshal address: %w", err)
		}
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &c.Tags); err != nil {
			return fmt.Errorf("unmarshal tags: %w", err)
		}
	}
	if len(categories) > 0 {
		if err := json.Unmarshal(categories, &c.Categories); err != nil {
			return fmt.Errorf("unmarshal categories: %w", err)
		}
	}
	if len(profiles) > 0 {
		if err := json.Unmarshal(profiles, &c.SocialProfiles); err != nil {
			return fmt.Errorf("unmarshal social profiles: %w", err)
		}
	}
	return nil
}
