package domain

import (
	"fmt"
	"strings"
)

// Permission mirrors the platform's permission bit set.
type Permission int64

const (
	PermCreateInstantInvite Permission = 1 << 0
	PermKickMembers         Permission = 1 << 1
	PermBanMembers          Permission = 1 << 2
	PermAdministrator       Permission = 1 << 3
	PermManageChannels      Permission = 1 << 4
	PermManageGuild         Permission = 1 << 5
	PermAddReactions        Permission = 1 << 6
	PermViewChannel         Permission = 1 << 10
	PermSendMessages        Permission = 1 << 11
	PermManageMessages      Permission = 1 << 13
	PermEmbedLinks          Permission = 1 << 14
	PermAttachFiles         Permission = 1 << 15
	PermConnect             Permission = 1 << 20
	PermSpeak               Permission = 1 << 21
	PermManageRoles         Permission = 1 << 28
)

var permissionNames = []struct {
	perm Permission
	name string
}{
	{PermCreateInstantInvite, "create_instant_invite"},
	{PermKickMembers, "kick_members"},
	{PermBanMembers, "ban_members"},
	{PermAdministrator, "administrator"},
	{PermManageChannels, "manage_channels"},
	{PermManageGuild, "manage_guild"},
	{PermAddReactions, "add_reactions"},
	{PermViewChannel, "view_channel"},
	{PermSendMessages, "send_messages"},
	{PermManageMessages, "manage_messages"},
	{PermEmbedLinks, "embed_links"},
	{PermAttachFiles, "attach_files"},
	{PermConnect, "connect"},
	{PermSpeak, "speak"},
	{PermManageRoles, "manage_roles"},
}

// ParsePermissions ORs together the named permissions. Names are matched
// case-insensitively; blanks are skipped.
func ParsePermissions(names []string) (Permission, error) {
	var out Permission
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		found := false
		for _, item := range permissionNames {
			if item.name == name {
				out |= item.perm
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown permission %q", raw)
		}
	}
	return out, nil
}

func (p Permission) Has(required Permission) bool {
	if p&PermAdministrator != 0 {
		return true
	}
	return p&required == required
}

// Missing returns the names of the bits in required that p lacks.
func (p Permission) Missing(required Permission) []string {
	if p.Has(required) {
		return nil
	}
	var out []string
	for _, item := range permissionNames {
		if required&item.perm != 0 && p&item.perm == 0 {
			out = append(out, item.name)
		}
	}
	return out
}

func (p Permission) Names() []string {
	var out []string
	for _, item := range permissionNames {
		if p&item.perm != 0 {
			out = append(out, item.name)
		}
	}
	return out
}

func (p Permission) String() string {
	return strings.Join(p.Names(), ", ")
}
