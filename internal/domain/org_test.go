package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrgUserCanSell(t *testing.T) {
	assert.True(t, (&OrgUser{Role: OrgRolePromoter}).CanSell())
	assert.True(t, (&OrgUser{Role: OrgRoleTeamLeader}).CanSell())
	assert.True(t, (&OrgUser{Role: OrgRoleManager}).CanSell())
	assert.False(t, (&OrgUser{Role: OrgRoleValidator}).CanSell())
	assert.False(t, (&OrgUser{Role: OrgRoleAdmin}).CanSell())
}

func TestOrgChainByRole(t *testing.T) {
	promoter := &OrgUser{ID: "p1", Role: OrgRolePromoter}
	leader := &OrgUser{ID: "tl1", Role: OrgRoleTeamLeader}
	chain := OrgChain{promoter, leader}

	assert.Equal(t, promoter, chain.ByRole(OrgRolePromoter))
	assert.Equal(t, leader, chain.ByRole(OrgRoleTeamLeader))
	assert.Nil(t, chain.ByRole(OrgRoleManager))
	assert.Equal(t, []string{"p1", "tl1"}, chain.IDs())
}
