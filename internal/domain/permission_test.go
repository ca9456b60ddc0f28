package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionMissing(t *testing.T) {
	have := PermSendMessages | PermViewChannel

	assert.Nil(t, have.Missing(PermSendMessages))
	assert.Equal(t, []string{"manage_messages", "embed_links"}, have.Missing(PermManageMessages|PermEmbedLinks|PermSendMessages))
}

func TestPermissionAdministratorHasEverything(t *testing.T) {
	assert.True(t, PermAdministrator.Has(PermBanMembers|PermManageRoles))
	assert.Nil(t, PermAdministrator.Missing(PermBanMembers))
}

func TestTopLevelName(t *testing.T) {
	assert.Equal(t, "stats", TopLevelName("stats show weekly"))
	assert.Equal(t, "ping", TopLevelName("ping"))
	assert.Equal(t, "", TopLevelName("  "))
}

func TestInteractionAcknowledgement(t *testing.T) {
	in := &Interaction{}
	assert.False(t, in.Acknowledged())
	in.MarkAcknowledged()
	assert.True(t, in.Acknowledged())
}

func TestParsePermissions(t *testing.T) {
	got, err := ParsePermissions([]string{"Manage_Messages", " embed_links ", ""})
	require.NoError(t, err)
	assert.Equal(t, PermManageMessages|PermEmbedLinks, got)

	_, err = ParsePermissions([]string{"fly"})
	assert.ErrorContains(t, err, `"fly"`)
}

func TestErrorTypeName(t *testing.T) {
	assert.Equal(t, "CooldownError", ErrorTypeName(&CooldownError{}))
	assert.Equal(t, "", ErrorTypeName(nil))
}

func TestRootCauseUnwrapsEveryLayer(t *testing.T) {
	cause := &CooldownError{}
	err := &ExtensionError{Extension: "general", Err: fmt.Errorf("setup: %w", fmt.Errorf("chart: %w", cause))}

	assert.Same(t, cause, RootCause(err))
	assert.Equal(t, "CooldownError", ErrorTypeName(RootCause(err)))
	assert.Nil(t, RootCause(nil))
}
