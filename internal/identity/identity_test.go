package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole("ADMIN"))
	assert.Equal(t, RoleContractor, ParseRole("CONTRACTOR"))

	// Unknown values degrade to the least-privileged role.
	assert.Equal(t, RoleCitizen, ParseRole(""))
	assert.Equal(t, RoleCitizen, ParseRole("admin"))
	assert.Equal(t, RoleCitizen, ParseRole("ROOT"))
}

func TestRoleCanModerate(t *testing.T) {
	assert.False(t, RoleCitizen.CanModerate())
	assert.False(t, RoleContractor.CanModerate())
	assert.True(t, RoleModerator.CanModerate())
	assert.True(t, RoleAdmin.CanModerate())
	assert.True(t, RoleSuperAdmin.CanModerate())
}

func TestRoleCanBlockContractors(t *testing.T) {
	assert.False(t, RoleModerator.CanBlockContractors())
	assert.True(t, RoleAdmin.CanBlockContractors())
	assert.True(t, RoleSuperAdmin.CanBlockContractors())
}

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider()
	want := Actor{ID: uuid.New(), Role: RoleSuperAdmin}
	p.Register("ops-token", want)

	actor, err := p.Resolve("ops-token")
	require.NoError(t, err)
	assert.Equal(t, want.ID, actor.ID)
	assert.Equal(t, RoleSuperAdmin, actor.Role)

	_, err = p.Resolve("wrong")
	assert.ErrorIs(t, err, ErrUnknownCredential)

	// Empty credentials are never registered.
	p.Register("", want)
	_, err = p.Resolve("")
	assert.ErrorIs(t, err, ErrUnknownCredential)
}
