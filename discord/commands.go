package discord

import (
	"github.com/bwmarrin/discordgo"
)

var manageGuildPermission int64 = discordgo.PermissionManageServer

// applicationCommands is the full slash surface, bulk-overwritten on start.
func applicationCommands() []*discordgo.ApplicationCommand {
	shipNameOption := func(autocomplete bool) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:         discordgo.ApplicationCommandOptionString,
			Name:         "name",
			Description:  "Ship name",
			Required:     true,
			Autocomplete: autocomplete,
		}
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "ship",
			Description: "Ship commands",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List ships available in this guild (current war)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "post",
					Description: "Post a ship card (by name or one-time share code)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name_or_code",
							Description: "Ship name OR one-time share code",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Create a new ship (guided UI)",
					Options: []*discordgo.ApplicationCommandOption{
						shipNameOption(false),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "update",
					Description: "Update a ship field",
					Options: []*discordgo.ApplicationCommandOption{
						shipNameOption(true),
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "field",
							Description: "Field to update",
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "status", Value: "status"},
								{Name: "damage", Value: "damage"},
								{Name: "location", Value: "location"},
								{Name: "home_port", Value: "home_port"},
								{Name: "notes", Value: "notes"},
								{Name: "regiment", Value: "regiment"},
								{Name: "keys", Value: "keys"},
								{Name: "image_url", Value: "image_url"},
								{Name: "type", Value: "type"},
								{Name: "squad_lock_until", Value: "squad_lock_until"},
							},
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "value",
							Description: "New value (damage: 0-5; squad_lock_until: unix timestamp)",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "supply",
					Description: "Set a supply quantity (per-guild instance)",
					Options: []*discordgo.ApplicationCommandOption{
						shipNameOption(true),
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "resource",
							Description: "Resource name",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "quantity",
							Description: "Quantity on board",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "image",
					Description: "Set a ship image from a PNG attachment",
					Options: []*discordgo.ApplicationCommandOption{
						shipNameOption(true),
						{
							Type:        discordgo.ApplicationCommandOptionAttachment,
							Name:        "file",
							Description: "PNG image to use on the ship card",
							Required:    true,
						},
					},
				},
			},
		},
		{
			Name:                     "auth",
			Description:              "Manage guild-level authorized roles and users (admin only)",
			DefaultMemberPermissions: &manageGuildPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add_user",
					Description: "Add a guild-level authorized user",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "User to authorize",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove_user",
					Description: "Remove a guild-level authorized user",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "User to remove",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add_role",
					Description: "Add a guild-level authorized role",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "role",
							Description: "Role to authorize",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove_role",
					Description: "Remove a guild-level authorized role",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "role",
							Description: "Role to remove",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List authorized roles and users for this guild",
				},
			},
		},
		{
			Name:                     "war",
			Description:              "War lifecycle (admin only)",
			DefaultMemberPermissions: &manageGuildPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "info",
					Description: "Show the current war",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "end",
					Description: "End the current war",
				},
			},
		},
	}
}
