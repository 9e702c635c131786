package chat

// Role names. Fixed reference data, seeded once at setup time; there is no
// runtime path that creates or deletes roles.
const (
	RoleOwner     = "owner"
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleHelper    = "helper"
	RoleChatter   = "chatter"
	RoleSpectator = "spectator"
)

// Permission names
const (
	PermDeleteChat     = "delete_chat"
	PermAddUsers       = "add_users"
	PermRemoveUsers    = "remove_users"
	PermChangeRoles    = "change_roles"
	PermDeleteMessages = "delete_messages"
	PermEditMessages   = "edit_messages"
	PermSendMessages   = "send_messages"
	PermReadMessages   = "read_messages"
	PermSendMedia      = "send_media"
	PermPinMessages    = "pin_messages"
)

// RoleOrder is the display order of roles, most privileged first.
// Used for sorting participant lists only; authorization always goes
// through the role/permission rows in the database.
var RoleOrder = []string{
	RoleOwner,
	RoleAdmin,
	RoleModerator,
	RoleHelper,
	RoleChatter,
	RoleSpectator,
}

// AllPermissions lists every permission key in seed order.
var AllPermissions = []string{
	PermDeleteChat,
	PermAddUsers,
	PermRemoveUsers,
	PermChangeRoles,
	PermDeleteMessages,
	PermEditMessages,
	PermSendMessages,
	PermReadMessages,
	PermSendMedia,
	PermPinMessages,
}

// RoleGrants is the canonical role → permissions table. It is the single
// source for database seeding; runtime checks query the seeded rows.
var RoleGrants = map[string][]string{
	RoleOwner: {
		PermDeleteChat, PermAddUsers, PermRemoveUsers, PermChangeRoles,
		PermDeleteMessages, PermEditMessages, PermSendMessages,
		PermReadMessages, PermSendMedia, PermPinMessages,
	},
	RoleAdmin: {
		PermAddUsers, PermRemoveUsers, PermChangeRoles,
		PermDeleteMessages, PermEditMessages, PermSendMessages,
		PermReadMessages, PermSendMedia, PermPinMessages,
	},
	RoleModerator: {
		PermAddUsers, PermRemoveUsers, PermChangeRoles,
		PermDeleteMessages, PermEditMessages, PermSendMessages,
		PermReadMessages, PermSendMedia, PermPinMessages,
	},
	RoleHelper: {
		PermAddUsers, PermDeleteMessages, PermSendMessages,
		PermReadMessages, PermSendMedia,
	},
	RoleChatter: {
		PermSendMessages, PermReadMessages, PermSendMedia,
	},
	RoleSpectator: {
		PermReadMessages,
	},
}

// RoleDescriptions holds the seeded description per role.
var RoleDescriptions = map[string]string{
	RoleOwner:     "Chat owner with full control",
	RoleAdmin:     "Administrator, everything except deleting the chat",
	RoleModerator: "Moderator, everything except deleting the chat",
	RoleHelper:    "Can invite users and clean up messages",
	RoleChatter:   "Regular participant",
	RoleSpectator: "Read-only participant",
}

// PermissionDescriptions holds the seeded description per permission.
var PermissionDescriptions = map[string]string{
	PermDeleteChat:     "Delete the chat",
	PermAddUsers:       "Add participants",
	PermRemoveUsers:    "Remove participants",
	PermChangeRoles:    "Change participant roles and chat settings",
	PermDeleteMessages: "Delete any message",
	PermEditMessages:   "Edit any message",
	PermSendMessages:   "Send messages",
	PermReadMessages:   "Read messages",
	PermSendMedia:      "Attach media to messages",
	PermPinMessages:    "Pin and unpin messages",
}

// GrantedTo reports whether the seed table grants perm to role.
// Display/seed helper only; request authorization is a database lookup.
func GrantedTo(role, perm string) bool {
	for _, p := range RoleGrants[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// KnownRole reports whether name is one of the six fixed roles.
func KnownRole(name string) bool {
	_, ok := RoleGrants[name]
	return ok
}
