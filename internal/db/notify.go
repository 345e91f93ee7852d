package db

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/lib/pq"
)

// Notifier wraps the LISTEN/NOTIFY mechanism in PostgreSQL. A notification
// is sent whenever an intake conversation is finalized so clinician
// dashboards can refresh without polling.
type Notifier struct {
	DB       *sql.DB
	ConnInfo string
	Channel  string
}

// NewNotifier constructs a Notifier. connInfo is the same connection string
// used for the main pool; the listener opens its own connection from it.
func NewNotifier(db *sql.DB, connInfo, channel string) *Notifier {
	return &Notifier{DB: db, ConnInfo: connInfo, Channel: channel}
}

// Notify publishes the conversation ID on the channel.
func (n *Notifier) Notify(ctx context.Context, conversationID string) error {
	_, err := n.DB.ExecContext(ctx, `SELECT pg_notify($1, $2)`, n.Channel, conversationID)
	return err
}

// Listen yields conversation IDs as they are published. The returned channel
// closes when ctx is cancelled or the listener fails.
func (n *Notifier) Listen(ctx context.Context) (<-chan string, error) {
	listener := pq.NewListener(n.ConnInfo, 2*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Println("notify listener event error:", err)
		}
	})
	if err := listener.Listen(n.Channel); err != nil {
		_ = listener.Close()
		return nil, err
	}
	ch := make(chan string)
	go func() {
		defer func() {
			_ = listener.Close()
			close(ch)
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case note, ok := <-listener.Notify:
				if !ok {
					return
				}
				if note == nil {
					// nil marks a connection re-establishment; nothing to deliver.
					continue
				}
				select {
				case ch <- note.Extra:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}
