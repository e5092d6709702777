package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/Jacobbrewer1/tickets/pkg/request"
	"github.com/gorilla/mux"
)

// slashCommandController picks the processor for a sub command.
type slashCommandController func(a IApp, i *discordgo.InteractionCreate, subCmd string) (slashProcessor, error)

// slashProcessor is the processor for slash commands and buttons.
type slashProcessor func(a IApp, i *discordgo.InteractionCreate) error

type Controller func(w http.ResponseWriter, r *http.Request)

func middlewareHttp(a IApp, handler Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC()
		cw := request.NewClientWriter(w)

		// Recover from any panics that occur in the handler.
		defer func() {
			if rec := recover(); rec != nil {
				a.Log().Error("Panic in handler",
					slog.String(logging.KeyError, fmt.Sprint(rec)),
					slog.String("stack", string(debug.Stack())),
				)
				request.Encode(a.Log(), cw, http.StatusInternalServerError, request.NewMessage(request.ErrInternalServer.Error()))
			}
		}()

		var path string
		route := mux.CurrentRoute(r)
		if route != nil { // The route may be nil if the request is not routed.
			var err error
			path, err = route.GetPathTemplate()
			if err != nil {
				// An error here is only returned if the route does not define a path.
				a.Log().Error("Error getting path template", slog.String(logging.KeyError, err.Error()))
				path = r.URL.Path
			}
		} else {
			path = r.URL.Path
		}

		defer func() {
			// The status code is only known once the handler has run.
			monitoring.HttpTotalRequests.WithLabelValues(path, r.Method, fmt.Sprintf("%d", cw.StatusCode())).Inc()
			monitoring.HttpRequestDuration.WithLabelValues(path, r.Method, fmt.Sprintf("%d", cw.StatusCode())).Observe(time.Since(now).Seconds())
		}()

		handler(cw, r)
	}
}

// interactionHandler routes slash commands and button presses to their handlers.
func interactionHandler(a IApp, controllers map[string]slashCommandController, buttons map[string]slashProcessor) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.GuildID == "" || i.Member == nil {
			// Tickets only exist in guilds.
			return
		}

		defer func() {
			if rec := recover(); rec != nil {
				a.Log().Error("Panic in interaction handler",
					slog.String(logging.KeyError, fmt.Sprint(rec)),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()

		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			handleSlashCommand(a, i, controllers)
		case discordgo.InteractionMessageComponent:
			handleButton(a, i, buttons)
		}
	}
}

func handleSlashCommand(a IApp, i *discordgo.InteractionCreate, controllers map[string]slashCommandController) {
	data := i.ApplicationCommandData()
	a.Log().Debug("Handling interaction " + data.Name)

	controller, ok := controllers[data.Name]
	if !ok {
		a.Log().Error(fmt.Sprintf("No controller found for command %s", data.Name),
			slog.String("command", data.Name))
		respondErrorLogged(a, i)
		return
	}

	subCmd := ""
	if len(data.Options) > 0 {
		subCmd = data.Options[0].Name
	}

	t := time.Now()
	defer func() {
		monitoring.DiscordCommandDuration.WithLabelValues(strings.TrimSpace(data.Name + " " + subCmd)).Observe(time.Since(t).Seconds())
	}()

	processor, err := controller(a, i, subCmd)
	if err != nil {
		a.Log().Error(fmt.Sprintf("Error getting processor for command %s", data.Name),
			slog.String(logging.KeyError, err.Error()))
		respondErrorLogged(a, i)
		return
	} else if processor == nil {
		// The controller has already responded.
		return
	}

	if err := processor(a, i); err != nil {
		a.Log().Error(fmt.Sprintf("Error processing command %s", data.Name),
			slog.String(logging.KeyError, err.Error()))
		respondErrorLogged(a, i)
	}
}

func handleButton(a IApp, i *discordgo.InteractionCreate, buttons map[string]slashProcessor) {
	customID := i.MessageComponentData().CustomID
	name, _ := splitCustomID(customID)

	processor, ok := buttons[name]
	if !ok {
		a.Log().Warn("No processor found for button", slog.String("custom_id", customID))
		return
	}

	t := time.Now()
	defer func() {
		monitoring.DiscordCommandDuration.WithLabelValues(name).Observe(time.Since(t).Seconds())
	}()

	if err := processor(a, i); err != nil {
		a.Log().Error(fmt.Sprintf("Error processing button %s", name),
			slog.String(logging.KeyError, err.Error()))
		respondErrorLogged(a, i)
	}
}

// splitCustomID splits a component custom ID of the form "<name>:<argument>".
func splitCustomID(customID string) (name, arg string) {
	name, arg, _ = strings.Cut(customID, ":")
	return name, arg
}
