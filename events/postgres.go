package events

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"
)

// PostgresBus carries change signals between server instances with
// LISTEN/NOTIFY. The notification payload is the topic name.
type PostgresBus struct {
	registry
	db       *sql.DB
	channel  string
	listener *pq.Listener
	done     chan struct{}
}

// NewPostgresBus starts listening on channel using a dedicated connection
// opened from dsn; db is used to send notifications.
func NewPostgresBus(db *sql.DB, dsn, channel string) (*PostgresBus, error) {
	listener := pq.NewListener(dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Printf("⚠️ Change bus listener event %d: %v", ev, err)
		}
	})
	if err := listener.Listen(channel); err != nil {
		listener.Close()
		return nil, fmt.Errorf("listening on %s: %w", channel, err)
	}

	b := &PostgresBus{
		db:       db,
		channel:  channel,
		listener: listener,
		done:     make(chan struct{}),
	}
	go b.run()

	log.Printf("📡 Change bus listening on postgres channel %s", channel)
	return b, nil
}

func (b *PostgresBus) run() {
	for {
		select {
		case n, ok := <-b.listener.Notify:
			if !ok {
				return
			}
			// nil after a reconnect; state may have changed while we were away.
			if n == nil {
				b.dispatch(TopicDataUpdate)
				continue
			}
			b.dispatch(n.Extra)
		case <-time.After(90 * time.Second):
			go b.listener.Ping()
		case <-b.done:
			return
		}
	}
}

func (b *PostgresBus) Publish(ctx context.Context, topic string) error {
	if _, err := b.db.ExecContext(ctx, "SELECT pg_notify($1, $2)", b.channel, topic); err != nil {
		return fmt.Errorf("notifying %s: %w", b.channel, err)
	}
	return nil
}

func (b *PostgresBus) Subscribe(topic string, handler Handler) func() {
	return b.add(topic, handler)
}

// Close stops the listener.
func (b *PostgresBus) Close() error {
	close(b.done)
	return b.listener.Close()
}
