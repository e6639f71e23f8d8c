package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"juaconnect-server/events"
	"juaconnect-server/models"
	"juaconnect-server/store"
)

// errNoChange aborts a mutation without persisting or publishing.
var errNoChange = errors.New("no change")

// sequences holds the next id to hand out per collection.
type sequences struct {
	Request      uint `json:"request"`
	Notification uint `json:"notification"`
	Artisan      uint `json:"artisan"`
}

// Marketplace owns the in-memory requests, notifications and artisan
// directory. Every mutation runs under one lock, is persisted to the store
// as a unit and then announced on the bus.
type Marketplace struct {
	mu            sync.Mutex
	store         store.Store
	bus           events.Bus
	now           func() time.Time
	notifyOnStart bool
	templates     templateSet

	requests      []models.ServiceRequest
	notifications []models.Notification
	artisans      []models.ArtisanProfile
	seq           sequences
	dirty         bool

	unsubscribe func()

	Requests      *RequestService
	Notifications *NotificationService
	Directory     *DirectoryService
}

// Option configures a Marketplace.
type Option func(*Marketplace)

// WithClock replaces the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Marketplace) { m.now = now }
}

// WithNotifyOnStart makes Start notify the client that work has begun.
func WithNotifyOnStart(enabled bool) Option {
	return func(m *Marketplace) { m.notifyOnStart = enabled }
}

// WithLanguage selects the notification text language ("en" or "sw").
// Unknown languages fall back to English.
func WithLanguage(lang string) Option {
	return func(m *Marketplace) { m.templates = templatesFor(lang) }
}

// NewMarketplace hydrates state from st and subscribes to bus so that
// changes published by other instances trigger a reload.
func NewMarketplace(ctx context.Context, st store.Store, bus events.Bus, opts ...Option) (*Marketplace, error) {
	m := &Marketplace{
		store:     st,
		bus:       bus,
		now:       func() time.Time { return time.Now().UTC().Round(0) },
		templates: templatesFor("en"),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.Requests = &RequestService{m: m}
	m.Notifications = &NotificationService{m: m}
	m.Directory = &DirectoryService{m: m}

	m.mu.Lock()
	err := m.loadLocked(ctx)
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if bus != nil {
		m.unsubscribe = bus.Subscribe(events.TopicDataUpdate, func(string) {
			if err := m.Reload(context.Background()); err != nil {
				log.Printf("❌ Failed to reload marketplace state: %v", err)
			}
		})
	}

	log.Printf("📦 Marketplace loaded: %d requests, %d notifications, %d artisans",
		len(m.requests), len(m.notifications), len(m.artisans))
	return m, nil
}

// Close stops listening for change signals.
func (m *Marketplace) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// Reload replaces in-memory state with what the store holds. It is skipped
// while a previous persist failed so unsaved changes are not overwritten.
func (m *Marketplace) Reload(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dirty {
		log.Printf("⚠️  Skipping reload: unsaved changes pending flush")
		return nil
	}
	return m.loadLocked(ctx)
}

// Flush retries persisting the current state and announces it on success.
func (m *Marketplace) Flush(ctx context.Context) error {
	m.mu.Lock()
	err := m.persistLocked(ctx)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	m.publish(ctx)
	return nil
}

// Dirty reports whether the in-memory state has changes the store is missing.
func (m *Marketplace) Dirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirty
}

// mutate runs fn under the lock, persists and then publishes. A persist
// failure keeps the in-memory change, marks the state dirty and is
// returned as a *StorageError without publishing.
func (m *Marketplace) mutate(ctx context.Context, fn func() error) error {
	m.mu.Lock()
	if err := fn(); err != nil {
		m.mu.Unlock()
		if errors.Is(err, errNoChange) {
			return nil
		}
		return err
	}
	err := m.persistLocked(ctx)
	m.mu.Unlock()
	if err != nil {
		return err
	}

	m.publish(ctx)
	return nil
}

func (m *Marketplace) publish(ctx context.Context) {
	if m.bus == nil {
		return
	}
	if err := m.bus.Publish(ctx, events.TopicDataUpdate); err != nil {
		log.Printf("⚠️  Failed to publish change signal: %v", err)
	}
}

func (m *Marketplace) persistLocked(ctx context.Context) error {
	entries := make(map[string][]byte, 4)
	for key, value := range map[string]interface{}{
		store.KeyServiceRequests: nonNil(m.requests),
		store.KeyNotifications:   nonNil(m.notifications),
		store.KeyArtisans:        nonNil(m.artisans),
		store.KeySequences:       m.seq,
	} {
		data, err := json.Marshal(value)
		if err != nil {
			m.dirty = true
			return &StorageError{Op: "encode " + key, Err: err}
		}
		entries[key] = data
	}

	if err := store.SaveAll(ctx, m.store, entries); err != nil {
		m.dirty = true
		log.Printf("❌ Failed to persist marketplace state: %v", err)
		return &StorageError{Op: "save", Err: err}
	}
	m.dirty = false
	return nil
}

func (m *Marketplace) loadLocked(ctx context.Context) error {
	var (
		requests      []models.ServiceRequest
		notifications []models.Notification
		artisans      []models.ArtisanProfile
		seq           sequences
	)
	for key, target := range map[string]interface{}{
		store.KeyServiceRequests: &requests,
		store.KeyNotifications:   &notifications,
		store.KeyArtisans:        &artisans,
		store.KeySequences:       &seq,
	} {
		data, found, err := m.store.Load(ctx, key)
		if err != nil {
			return &StorageError{Op: "load " + key, Err: err}
		}
		if !found {
			continue
		}
		if err := json.Unmarshal(data, target); err != nil {
			return &StorageError{Op: "decode " + key, Err: err}
		}
	}

	for _, r := range requests {
		seq.Request = maxID(seq.Request, r.ID+1)
	}
	for _, n := range notifications {
		seq.Notification = maxID(seq.Notification, n.ID+1)
	}
	for _, a := range artisans {
		seq.Artisan = maxID(seq.Artisan, a.ID+1)
	}

	m.requests = requests
	m.notifications = notifications
	m.artisans = artisans
	m.seq = seq
	return nil
}

func (m *Marketplace) nextRequestID() uint {
	m.seq.Request = maxID(m.seq.Request, 1)
	id := m.seq.Request
	m.seq.Request++
	return id
}

func (m *Marketplace) nextNotificationID() uint {
	m.seq.Notification = maxID(m.seq.Notification, 1)
	id := m.seq.Notification
	m.seq.Notification++
	return id
}

func (m *Marketplace) nextArtisanID() uint {
	m.seq.Artisan = maxID(m.seq.Artisan, 1)
	id := m.seq.Artisan
	m.seq.Artisan++
	return id
}

// notifyLocked appends a notification addressed to role.
func (m *Marketplace) notifyLocked(role models.Role, kind models.NotificationKind, msg message, requestID uint) {
	id := requestID
	m.notifications = append(m.notifications, models.Notification{
		ID:               m.nextNotificationID(),
		RecipientRole:    role,
		Title:            msg.Title,
		Message:          msg.Message,
		Kind:             kind,
		RelatedRequestID: &id,
		CreatedAt:        m.now(),
	})
}

func maxID(a, b uint) uint {
	if a > b {
		return a
	}
	return b
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
