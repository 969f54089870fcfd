package api

import (
	"context"

	"github.com/Yassi1511/pfemedical-go/internal/domain"
)

// NotificationsClient covers the patient-facing notification feed. The
// endpoints live under /api/notifications on the same configured base URL
// as everything else.
type NotificationsClient struct {
	c  *Client
	ts TokenSource
}

func NewNotificationsClient(c *Client, ts TokenSource) *NotificationsClient {
	return &NotificationsClient{c: c, ts: ts}
}

func (n *NotificationsClient) List(ctx context.Context) ([]domain.Notification, error) {
	var wire []notificationWire
	if err := n.c.get(ctx, "/api/notifications", "/api/notifications", nil, n.ts.Token(), &wire); err != nil {
		return nil, err
	}
	out := make([]domain.Notification, 0, len(wire))
	for i := range wire {
		out = append(out, wire[i].toDomain())
	}
	return out, nil
}

func (n *NotificationsClient) MarkRead(ctx context.Context, notificationID string) error {
	return n.c.put(ctx, "/api/notifications/:id/lire", "/api/notifications/"+notificationID+"/lire", n.ts.Token(), struct{}{}, nil)
}

// Generate asks the backend to build reminder notifications for one
// medication's schedule.
func (n *NotificationsClient) Generate(ctx context.Context, medicamentID string) error {
	return n.c.post(ctx, "/api/notifications/generer/:id", "/api/notifications/generer/"+medicamentID, n.ts.Token(), struct{}{}, nil)
}
