package dataaccess

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Jacobbrewer1/tickets/pkg/custom"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestTicketUpdateDocument(t *testing.T) {
	open := false
	closedBy := "300000000000000001"
	empty := ""
	reason := "ZW5jcnlwdGVk"
	closedAt := custom.Datetime(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	var noPins []string

	tests := []struct {
		name   string
		update *entities.TicketUpdate
		want   bson.M
	}{
		{
			name:   "empty",
			update: &entities.TicketUpdate{},
			want:   bson.M{},
		},
		{
			name: "member close",
			update: &entities.TicketUpdate{
				Open:         &open,
				ClosedBy:     &closedBy,
				ClosedReason: &reason,
				ClosedAt:     &closedAt,
			},
			want: bson.M{
				"$set": bson.M{
					"open":          false,
					"closed_by":     closedBy,
					"closed_reason": reason,
					"closed_at":     closedAt,
				},
			},
		},
		{
			name: "system close without reason",
			update: &entities.TicketUpdate{
				Open:           &open,
				ClosedBy:       &empty,
				ClosedReason:   &empty,
				PinnedMessages: &noPins,
			},
			want: bson.M{
				"$set": bson.M{
					"open":            false,
					"pinned_messages": []string{},
				},
				"$unset": bson.M{
					"closed_by":     "",
					"closed_reason": "",
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ticketUpdateDocument(tt.update))
		})
	}
}

func TestNotFound(t *testing.T) {
	require.ErrorIs(t, notFound(mongo.ErrNoDocuments), ErrNotFound)
	require.ErrorIs(t, fmt.Errorf("error getting ticket: %w", notFound(mongo.ErrNoDocuments)), ErrNotFound)

	other := errors.New("connection reset")
	require.Equal(t, other, notFound(other))
}

func TestCounterKey(t *testing.T) {
	require.Equal(t, "tickets:counter:100000000000000001", counterKey("100000000000000001"))
}
