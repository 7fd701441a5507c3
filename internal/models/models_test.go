package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexibleBool(t *testing.T) {
	for input, want := range map[string]bool{
		`true`: true, `"yes"`: true, `1`: true, `"0"`: false, `"off"`: false,
	} {
		var fb FlexibleBool
		require.NoError(t, json.Unmarshal([]byte(input), &fb), input)
		assert.Equal(t, want, fb.Bool(), input)
	}

	var fb FlexibleBool
	assert.Error(t, json.Unmarshal([]byte(`"maybe"`), &fb))
}

func TestIdentityHasRole(t *testing.T) {
	identity := &Identity{ID: "u1", Roles: []IdentityRole{{Role: "driver", RoleLevel: 1}}}

	assert.True(t, identity.HasRole("driver"))
	assert.False(t, identity.HasRole("admin"))

	var none *Identity
	assert.False(t, none.HasRole("driver"))
}
