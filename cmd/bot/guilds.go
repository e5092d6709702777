package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
)

func guildJoinedHandler(a *App) func(s *discordgo.Session, g *discordgo.GuildCreate) {
	return func(_ *discordgo.Session, g *discordgo.GuildCreate) {
		a.Log().Info(fmt.Sprintf("Joined guild %s", g.Name), slog.String(logging.KeyGuild, g.ID))

		// Increment the total number of guilds.
		monitoring.TotalDiscordGuilds.Inc()

		if err := a.defaultGuild(context.Background(), g.ID); err != nil {
			a.Log().Error("Error saving default guild settings",
				slog.String(logging.KeyGuild, g.ID),
				slog.String(logging.KeyError, err.Error()))
		}

		if _, ok := a.commandIDs.Load(g.ID + ":" + setupCmd.Name); ok {
			return
		}
		if err := a.registerGuildCommands(g.ID); err != nil {
			a.Log().Error("Error registering guild commands",
				slog.String(logging.KeyGuild, g.ID),
				slog.String(logging.KeyError, err.Error()))
		}
	}
}

func guildLeaveHandler(a IApp) func(s *discordgo.Session, g *discordgo.GuildDelete) {
	return func(_ *discordgo.Session, g *discordgo.GuildDelete) {
		a.Log().Info(fmt.Sprintf("Left guild %s", g.ID), slog.String(logging.KeyGuild, g.ID))

		// Decrement the total number of guilds.
		monitoring.TotalDiscordGuilds.Dec()
	}
}

// channelDeleteHandler stops setting up a ticket whose channel has been deleted.
func channelDeleteHandler(a IApp) func(s *discordgo.Session, c *discordgo.ChannelDelete) {
	return func(_ *discordgo.Session, c *discordgo.ChannelDelete) {
		if c.Channel == nil {
			return
		}
		if a.Tickets().Cancel(c.ID) {
			a.Log().Info("Ticket channel deleted during setup", slog.String(logging.KeyTicket, c.ID))
		}
	}
}
