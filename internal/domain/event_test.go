package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketTypeRefUnmarshal(t *testing.T) {
	t.Run("bare string", func(t *testing.T) {
		var ref TicketTypeRef
		require.NoError(t, json.Unmarshal([]byte(`"general"`), &ref))
		assert.Equal(t, "general", ref.ID)
		assert.Empty(t, ref.Name)
	})

	t.Run("object", func(t *testing.T) {
		var ref TicketTypeRef
		require.NoError(t, json.Unmarshal([]byte(`{"id":"general","name":"General Admission"}`), &ref))
		assert.Equal(t, "general", ref.ID)
		assert.Equal(t, "General Admission", ref.Name)
	})

	t.Run("object with name only", func(t *testing.T) {
		var ref TicketTypeRef
		require.NoError(t, json.Unmarshal([]byte(`{"name":"VIP"}`), &ref))
		assert.Empty(t, ref.ID)
		assert.Equal(t, "VIP", ref.Name)
	})

	t.Run("whitespace trimmed", func(t *testing.T) {
		var ref TicketTypeRef
		require.NoError(t, json.Unmarshal([]byte(`"  vip  "`), &ref))
		assert.Equal(t, "vip", ref.ID)
	})

	t.Run("rejects other shapes", func(t *testing.T) {
		var ref TicketTypeRef
		assert.Error(t, json.Unmarshal([]byte(`42`), &ref))
	})
}

func TestTicketTypeRefCanonicalAndKey(t *testing.T) {
	// Both arrival forms of the same type group under one key.
	bare := TicketTypeRef{ID: "vip"}
	object := TicketTypeRef{ID: "vip", Name: "VIP Table"}
	assert.Equal(t, bare.Key(), object.Key())

	nameOnly := TicketTypeRef{Name: "VIP"}
	assert.Equal(t, "VIP", nameOnly.Canonical().ID)
	assert.Equal(t, "VIP", nameOnly.Key())
}
