package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/Jacobbrewer1/tickets/pkg/request"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// PathMetrics is the path for metrics.
	PathMetrics = "/metrics"

	// PathHealth is the path for the health check.
	PathHealth = "/health"

	// PathTicket is the path for looking up a ticket by channel ID or number.
	PathTicket = "/api/guilds/{guild}/tickets/{ref}"
)

// ticketResolver finds tickets by reference.
type ticketResolver interface {
	Resolve(ctx context.Context, ref, guildID string) (*entities.Ticket, error)
}

func (a *App) setupRoutes() {
	a.r.HandleFunc(PathMetrics, promhttp.Handler().ServeHTTP).Methods(http.MethodGet)
	a.r.HandleFunc(PathHealth, middlewareHttp(a, a.healthCheck())).Methods(http.MethodGet)
	a.r.HandleFunc(PathTicket, middlewareHttp(a, ticketHandler(a.Logger, a.manager))).Methods(http.MethodGet)

	a.r.NotFoundHandler = request.NotFoundHandler(a.Logger)
	a.r.MethodNotAllowedHandler = request.MethodNotAllowedHandler(a.Logger)
}

// ticketHandler returns a ticket as JSON. Encrypted fields are never included.
func ticketHandler(l *slog.Logger, resolver ticketResolver) Controller {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		guildID := vars["guild"]
		ref := vars["ref"]

		ticket, err := resolver.Resolve(r.Context(), ref, guildID)
		if err != nil {
			l.Error("Error resolving ticket",
				slog.String(logging.KeyGuild, guildID),
				slog.String(logging.KeyError, err.Error()))
			request.Encode(l, w, http.StatusInternalServerError, request.NewMessageError("Error resolving ticket", request.ErrInternalServer))
			return
		} else if ticket == nil || ticket.GuildID != guildID {
			request.Encode(l, w, http.StatusNotFound, request.NewMessage("Ticket %s not found", ref))
			return
		}

		request.Encode(l, w, http.StatusOK, ticket)
	}
}
