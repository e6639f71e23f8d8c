package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"juaconnect-server/events"
	"juaconnect-server/models"
	"juaconnect-server/store"
)

// stepClock returns a time one second later on every call.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// flakyStore fails every Save while failing is set.
type flakyStore struct {
	inner   *store.MemoryStore
	failing bool
}

func (s *flakyStore) Save(ctx context.Context, key string, value []byte) error {
	if s.failing {
		return errors.New("disk full")
	}
	return s.inner.Save(ctx, key, value)
}

func (s *flakyStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Load(ctx, key)
}

var (
	alice = models.Party{Name: "Alice", Email: "alice@example.com"}
	bob   = models.Party{Name: "Bob Fundi", Email: "bob@example.com"}
	carol = models.Party{Name: "Carol", Email: "carol@example.com"}
)

func newTestMarketplace(t *testing.T, st store.Store, opts ...Option) *Marketplace {
	t.Helper()
	if st == nil {
		st = store.NewMemoryStore()
	}
	opts = append([]Option{WithClock(newStepClock().Now)}, opts...)
	m, err := NewMarketplace(context.Background(), st, events.NewLocalBus(), opts...)
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func createLeak(t *testing.T, m *Marketplace) *models.ServiceRequest {
	t.Helper()
	budget := 2500.0
	r, err := m.Requests.Create(context.Background(), models.ServiceRequestCreate{
		ServiceCategory: "Plumbing",
		Description:     "Fix leak",
		Location:        "Kilimani",
		Budget:          &budget,
		Client:          alice,
	})
	require.NoError(t, err)
	return r
}

// assertArtisanInvariant checks that an artisan is assigned exactly when the
// status requires one.
func assertArtisanInvariant(t *testing.T, m *Marketplace) {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.requests {
		assert.Equal(t, r.Status.HasArtisan(), r.Artisan != nil, "request %d in %s", r.ID, r.Status)
	}
}

func clientNotifications(t *testing.T, m *Marketplace) []models.Notification {
	t.Helper()
	list, err := m.Notifications.List(context.Background(), models.RoleClient, OldestFirst)
	require.NoError(t, err)
	return list.Notifications
}

func TestRequestLifecycle(t *testing.T) {
	ctx := context.Background()
	m := newTestMarketplace(t, nil)

	r := createLeak(t, m)
	assert.Equal(t, models.RequestStatusPending, r.Status)
	assert.Nil(t, r.Artisan)
	assert.Equal(t, models.ServiceCategory("Plumbing"), r.ServiceCategory)
	assertArtisanInvariant(t, m)

	r, err := m.Requests.Accept(ctx, r.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusAccepted, r.Status)
	require.NotNil(t, r.Artisan)
	assert.Equal(t, bob, *r.Artisan)
	assert.NotNil(t, r.AcceptedAt)
	assertArtisanInvariant(t, m)

	notes := clientNotifications(t, m)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationKindBooking, notes[0].Kind)
	assert.Equal(t, "Request Accepted", notes[0].Title)
	require.NotNil(t, notes[0].RelatedRequestID)
	assert.Equal(t, r.ID, *notes[0].RelatedRequestID)

	r, err = m.Requests.Start(ctx, r.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusInProgress, r.Status)
	assert.Len(t, clientNotifications(t, m), 1)
	assertArtisanInvariant(t, m)

	r, err = m.Requests.Complete(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusCompleted, r.Status)
	assert.NotNil(t, r.CompletedAt)
	assertArtisanInvariant(t, m)

	notes = clientNotifications(t, m)
	require.Len(t, notes, 2)
	assert.Equal(t, models.NotificationKindPayment, notes[1].Kind)
	assert.Contains(t, notes[1].Message, "KES 2500.00")
}

func TestAcceptOutsidePendingFails(t *testing.T) {
	ctx := context.Background()
	m := newTestMarketplace(t, nil)
	r := createLeak(t, m)

	_, err := m.Requests.Accept(ctx, r.ID, bob)
	require.NoError(t, err)
	before, err := m.Requests.Get(ctx, r.ID)
	require.NoError(t, err)

	_, err = m.Requests.Accept(ctx, r.ID, carol)
	require.Error(t, err)
	assert.True(t, IsInvalidTransition(err))

	var transitionErr *InvalidTransitionError
	require.True(t, errors.As(err, &transitionErr))
	assert.Equal(t, models.RequestStatusAccepted, transitionErr.From)
	assert.Equal(t, models.RequestStatusAccepted, transitionErr.To)

	after, err := m.Requests.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Len(t, clientNotifications(t, m), 1)
	assertArtisanInvariant(t, m)
}

func TestTransitionsFromTerminalStatusesFail(t *testing.T) {
	ctx := context.Background()
	m := newTestMarketplace(t, nil)
	r := createLeak(t, m)

	_, err := m.Requests.Reject(ctx, r.ID)
	require.NoError(t, err)

	_, err = m.Requests.Accept(ctx, r.ID, bob)
	assert.True(t, IsInvalidTransition(err))
	_, err = m.Requests.Reject(ctx, r.ID)
	assert.True(t, IsInvalidTransition(err))
	_, err = m.Requests.Start(ctx, r.ID, nil)
	assert.True(t, IsInvalidTransition(err))
	_, err = m.Requests.Complete(ctx, r.ID)
	assert.True(t, IsInvalidTransition(err))
}

func TestStartAndCompleteRequireTheirSourceStatus(t *testing.T) {
	ctx := context.Background()
	m := newTestMarketplace(t, nil)
	r := createLeak(t, m)

	_, err := m.Requests.Start(ctx, r.ID, nil)
	assert.True(t, IsInvalidTransition(err))
	_, err = m.Requests.Complete(ctx, r.ID)
	assert.True(t, IsInvalidTransition(err))

	got, err := m.Requests.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, got.Status)
}

func TestRejectCancelsWithoutArtisan(t *testing.T) {
	m := newTestMarketplace(t, nil)
	r := createLeak(t, m)

	r, err := m.Requests.Reject(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusCancelled, r.Status)
	assert.Nil(t, r.Artisan)
	assertArtisanInvariant(t, m)

	notes := clientNotifications(t, m)
	require.Len(t, notes, 1)
	assert.Equal(t, "Request Rejected", notes[0].Title)
	assert.Equal(t, models.NotificationKindBooking, notes[0].Kind)
}

func TestClientCancelsOwnPendingRequest(t *testing.T) {
	ctx := context.Background()
	m := newTestMarketplace(t, nil)
	r := createLeak(t, m)

	_, err := m.Requests.Cancel(ctx, r.ID, models.Party{Name: "Mallory", Email: "mallory@example.com"})
	assert.True(t, IsNotFound(err), "another client cannot cancel")
	got, err := m.Requests.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, got.Status)

	_, err = m.Requests.Cancel(ctx, r.ID, models.Party{})
	assert.True(t, IsValidation(err))

	cancelled, err := m.Requests.Cancel(ctx, r.ID, models.Party{Name: "alice", Email: "ALICE@example.com"})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusCancelled, cancelled.Status)
	assert.Nil(t, cancelled.Artisan)
	assertArtisanInvariant(t, m)

	_, err = m.Requests.Cancel(ctx, r.ID, alice)
	assert.True(t, IsInvalidTransition(err))
	_, err = m.Requests.Cancel(ctx, 42, alice)
	assert.True(t, IsNotFound(err))
}

func TestClientCannotCancelAcceptedRequest(t *testing.T) {
	ctx := context.Background()
	m := newTestMarketplace(t, nil)
	r := createLeak(t, m)
	_, err := m.Requests.Accept(ctx, r.ID, bob)
	require.NoError(t, err)

	_, err = m.Requests.Cancel(ctx, r.ID, alice)
	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, models.RequestStatusAccepted, transitionErr.From)
	assert.Equal(t, models.RequestStatusCancelled, transitionErr.To)
}

func TestUnknownRequestIsNotFound(t *testing.T) {
	ctx := context.Background()
	m := newTestMarketplace(t, nil)

	_, err := m.Requests.Get(ctx, 42)
	assert.True(t, IsNotFound(err))
	_, err = m.Requests.Accept(ctx, 42, bob)
	assert.True(t, IsNotFound(err))
	_, err = m.Requests.Reject(ctx, 42)
	assert.True(t, IsNotFound(err))
	_, err = m.Requests.Complete(ctx, 42)
	assert.True(t, IsNotFound(err))
}

func TestCreateValidation(t *testing.T) {
	negative := -1.0
	tests := []struct {
		name  string
		input models.ServiceRequestCreate
		field string
	}{
		{
			name:  "unknown category",
			input: models.ServiceRequestCreate{ServiceCategory: "Astrology", Description: "x", Client: alice},
			field: "service_category",
		},
		{
			name:  "missing category",
			input: models.ServiceRequestCreate{Description: "x", Client: alice},
			field: "service_category",
		},
		{
			name:  "blank description",
			input: models.ServiceRequestCreate{ServiceCategory: "Plumbing", Description: "   ", Client: alice},
			field: "description",
		},
		{
			name:  "negative budget",
			input: models.ServiceRequestCreate{ServiceCategory: "Plumbing", Description: "x", Budget: &negative, Client: alice},
			field: "budget",
		},
		{
			name:  "missing client",
			input: models.ServiceRequestCreate{ServiceCategory: "Plumbing", Description: "x"},
			field: "client_name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMarketplace(t, nil)
			_, err := m.Requests.Create(context.Background(), tt.input)
			require.Error(t, err)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %T", err)
			assert.Equal(t, tt.field, ve.Field)

			available, err := m.Requests.ListAvailable(context.Background())
			require.NoError(t, err)
			assert.Empty(t, available)
		})
	}
}

func TestCreateNormalisesCategory(t *testing.T) {
	m := newTestMarketplace(t, nil)
	r, err := m.Requests.Create(context.Background(), models.ServiceRequestCreate{
		ServiceCategory: " general repairs ",
		Description:     "Hinge",
		Client:          alice,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ServiceCategory("General Repairs"), r.ServiceCategory)
}

func TestRequestIDsAreMonotonic(t *testing.T) {
	m := newTestMarketplace(t, nil)
	first := createLeak(t, m)
	second := createLeak(t, m)
	assert.Equal(t, uint(1), first.ID)
	assert.Equal(t, uint(2), second.ID)
}

func TestStartRecordsTotalAmount(t *testing.T) {
	ctx := context.Background()
	m := newTestMarketplace(t, nil)
	r := createLeak(t, m)
	_, err := m.Requests.Accept(ctx, r.ID, bob)
	require.NoError(t, err)

	negative := -5.0
	_, err = m.Requests.Start(ctx, r.ID, &negative)
	assert.True(t, IsValidation(err))

	total := 4000.0
	r, err = m.Requests.Start(ctx, r.ID, &total)
	require.NoError(t, err)
	require.NotNil(t, r.Budget)
	assert.Equal(t, 4000.0, *r.Budget)
	assert.NotNil(t, r.StartedAt)
}

func TestStartNotifiesWhenEnabled(t *testing.T) {
	ctx := context.Background()
	m := newTestMarketplace(t, nil, WithNotifyOnStart(true))
	r := createLeak(t, m)
	_, err := m.Requests.Accept(ctx, r.ID, bob)
	require.NoError(t, err)
	_, err = m.Requests.Start(ctx, r.ID, nil)
	require.NoError(t, err)

	notes := clientNotifications(t, m)
	require.Len(t, notes, 2)
	assert.Equal(t, "Work Started", notes[1].Title)
}

func TestListFiltersByParty(t *testing.T) {
	ctx := context.Background()
	m := newTestMarketplace(t, nil)
	first := createLeak(t, m)
	createLeak(t, m)
	_, err := m.Requests.Create(ctx, models.ServiceRequestCreate{ServiceCategory: "Painting", Description: "Walls", Client: carol})
	require.NoError(t, err)

	_, err = m.Requests.Accept(ctx, first.ID, bob)
	require.NoError(t, err)

	mine, err := m.Requests.ListMine(ctx, models.Party{Name: "someone", Email: "ALICE@example.com"})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	pending, err := m.Requests.ListMine(ctx, alice, models.RequestStatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	assigned, err := m.Requests.ListAssignedTo(ctx, models.Party{Name: "x", Email: "Bob@Example.com"})
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, first.ID, assigned[0].ID)

	available, err := m.Requests.ListAvailable(ctx)
	require.NoError(t, err)
	assert.Len(t, available, 2)

	_, err = m.Requests.ListMine(ctx, models.Party{})
	assert.True(t, IsValidation(err))
}

func TestReturnedRequestsAreCopies(t *testing.T) {
	ctx := context.Background()
	m := newTestMarketplace(t, nil)
	r := createLeak(t, m)
	*r.Budget = 1
	r.Status = models.RequestStatusCompleted

	got, err := m.Requests.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, got.Status)
	assert.Equal(t, 2500.0, *got.Budget)
}

func TestMarkAllRead(t *testing.T) {
	ctx := context.Background()
	m := newTestMarketplace(t, nil)
	for i := 0; i < 3; i++ {
		r := createLeak(t, m)
		_, err := m.Requests.Reject(ctx, r.ID)
		require.NoError(t, err)
	}

	count, err := m.Notifications.UnreadCount(ctx, models.RoleClient)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, m.Notifications.MarkAllRead(ctx, models.RoleClient))

	list, err := m.Notifications.List(ctx, models.RoleClient, OldestFirst)
	require.NoError(t, err)
	require.Len(t, list.Notifications, 3)
	for _, n := range list.Notifications {
		assert.True(t, n.IsRead)
	}
	assert.Equal(t, 0, list.UnreadCount)

	// no-op the second time
	require.NoError(t, m.Notifications.MarkAllRead(ctx, models.RoleClient))
	assert.True(t, IsValidation(m.Notifications.MarkAllRead(ctx, models.Role("admin"))))
}

func TestMarkReadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := newTestMarketplace(t, nil)
	r := createLeak(t, m)
	_, err := m.Requests.Reject(ctx, r.ID)
	require.NoError(t, err)
	id := clientNotifications(t, m)[0].ID

	require.NoError(t, m.Notifications.MarkRead(ctx, models.RoleClient, id))
	require.NoError(t, m.Notifications.MarkRead(ctx, models.RoleClient, id))
	assert.True(t, clientNotifications(t, m)[0].IsRead)

	assert.True(t, IsNotFound(m.Notifications.MarkRead(ctx, models.RoleClient, 999)))
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := newTestMarketplace(t, nil)
	r := createLeak(t, m)
	_, err := m.Requests.Reject(ctx, r.ID)
	require.NoError(t, err)
	id := clientNotifications(t, m)[0].ID

	require.NoError(t, m.Notifications.Delete(ctx, models.RoleClient, id))
	assert.Empty(t, clientNotifications(t, m))
	require.NoError(t, m.Notifications.Delete(ctx, models.RoleClient, id))
	assert.Empty(t, clientNotifications(t, m))
}

func TestNotificationWritesAreScopedToRole(t *testing.T) {
	ctx := context.Background()
	m := newTestMarketplace(t, nil)
	r := createLeak(t, m)
	_, err := m.Requests.Reject(ctx, r.ID)
	require.NoError(t, err)
	id := clientNotifications(t, m)[0].ID

	assert.True(t, IsNotFound(m.Notifications.MarkRead(ctx, models.RoleArtisan, id)))
	assert.True(t, IsNotFound(m.Notifications.Delete(ctx, models.RoleArtisan, id)))
	assert.True(t, IsValidation(m.Notifications.MarkRead(ctx, models.Role("admin"), id)))

	notes := clientNotifications(t, m)
	require.Len(t, notes, 1)
	assert.False(t, notes[0].IsRead)
}

func TestListOrder(t *testing.T) {
	ctx := context.Background()
	m := newTestMarketplace(t, nil)
	for i := 0; i < 2; i++ {
		r := createLeak(t, m)
		_, err := m.Requests.Reject(ctx, r.ID)
		require.NoError(t, err)
	}

	oldest, err := m.Notifications.List(ctx, models.RoleClient, OldestFirst)
	require.NoError(t, err)
	newest, err := m.Notifications.List(ctx, models.RoleClient, NewestFirst)
	require.NoError(t, err)
	assert.Equal(t, oldest.Notifications[0], newest.Notifications[1])
	assert.Equal(t, oldest.Notifications[1], newest.Notifications[0])

	artisan, err := m.Notifications.List(ctx, models.RoleArtisan, OldestFirst)
	require.NoError(t, err)
	assert.Empty(t, artisan.Notifications)
}

func TestParseOrder(t *testing.T) {
	order, err := ParseOrder("")
	require.NoError(t, err)
	assert.Equal(t, OldestFirst, order)

	order, err = ParseOrder("Newest")
	require.NoError(t, err)
	assert.Equal(t, NewestFirst, order)

	_, err = ParseOrder("random")
	assert.True(t, IsValidation(err))
}

func TestStateSurvivesReload(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	m := newTestMarketplace(t, st)

	r := createLeak(t, m)
	_, err := m.Requests.Accept(ctx, r.ID, bob)
	require.NoError(t, err)
	other := createLeak(t, m)
	_, err = m.Requests.Reject(ctx, other.ID)
	require.NoError(t, err)

	fresh := newTestMarketplace(t, st)

	assert.Equal(t, m.requests, fresh.requests)
	assert.Equal(t, m.notifications, fresh.notifications)
	assert.Equal(t, m.seq, fresh.seq)

	next := createLeak(t, fresh)
	assert.Equal(t, uint(3), next.ID)
}

func TestStorageFailureKeepsChangeUntilFlush(t *testing.T) {
	ctx := context.Background()
	st := &flakyStore{inner: store.NewMemoryStore()}
	m := newTestMarketplace(t, st)

	st.failing = true
	r, err := m.Requests.Create(ctx, models.ServiceRequestCreate{ServiceCategory: "Welding", Description: "Gate", Client: alice})
	require.Error(t, err)
	assert.True(t, IsStorage(err))
	require.NotNil(t, r)
	assert.Equal(t, models.RequestStatusPending, r.Status)
	assert.True(t, m.Dirty())

	require.NoError(t, m.Reload(ctx))
	got, err := m.Requests.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gate", got.Description)

	assert.True(t, IsStorage(m.Flush(ctx)))

	st.failing = false
	require.NoError(t, m.Flush(ctx))
	assert.False(t, m.Dirty())

	fresh := newTestMarketplace(t, st)
	got, err = fresh.Requests.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gate", got.Description)
}

func TestPeersConvergeThroughBus(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	bus := events.NewLocalBus()

	a, err := NewMarketplace(ctx, st, bus, WithClock(newStepClock().Now))
	require.NoError(t, err)
	defer a.Close()
	b, err := NewMarketplace(ctx, st, bus, WithClock(newStepClock().Now))
	require.NoError(t, err)
	defer b.Close()

	r := createLeak(t, a)

	seen, err := b.Requests.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.Description, seen.Description)

	_, err = b.Requests.Accept(ctx, r.ID, bob)
	require.NoError(t, err)

	_, err = a.Requests.Accept(ctx, r.ID, carol)
	assert.True(t, IsInvalidTransition(err))
}

func TestSwahiliTemplates(t *testing.T) {
	ctx := context.Background()
	m := newTestMarketplace(t, nil, WithLanguage("sw"))
	r := createLeak(t, m)
	_, err := m.Requests.Accept(ctx, r.ID, bob)
	require.NoError(t, err)

	notes := clientNotifications(t, m)
	require.Len(t, notes, 1)
	assert.Equal(t, "Ombi Limekubaliwa", notes[0].Title)
	assert.Contains(t, notes[0].Message, "Bob Fundi")
}
