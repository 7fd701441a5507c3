package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"busline/internal/auth"
	apperrors "busline/internal/errors"
	"busline/internal/models"
)

func newTestRegistry(store *fakeBookings, publisher *fakePublisher) *AppSessionRegistry {
	return newTestRegistryWith(store, publisher, newMemPersister())
}

func newTestRegistryWith(store *fakeBookings, publisher *fakePublisher, persister auth.SessionPersister) *AppSessionRegistry {
	profiles := &fakeProfiles{profile: &models.Profile{ID: "u1", FullName: "Ada Obi"}}
	return NewAppSessionRegistry(AppSessionDeps{
		Provider:  &fakeProvider{},
		Persister: persister,
		Loader:    NewProfileLoader(profiles, &fakeRoles{}),
		Promos:    &fakeValidator{},
		Submitter: NewBookingSubmitter(store, publisher, nil),
		Publisher: publisher,
	}, SessionConfig{IdleTTL: time.Minute})
}

func TestRegistryRejectsMalformedID(t *testing.T) {
	registry := newTestRegistry(&fakeBookings{}, &fakePublisher{})

	_, err := registry.Get(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Zero(t, registry.Len())
}

func TestRegistryReturnsSameSession(t *testing.T) {
	registry := newTestRegistry(&fakeBookings{}, &fakePublisher{})
	defer registry.Close()
	id := registry.NewID()

	first, err := registry.Get(context.Background(), id)
	require.NoError(t, err)
	second, err := registry.Get(context.Background(), id)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, registry.Len())
}

func TestCheckoutRequiresIdentity(t *testing.T) {
	registry := newTestRegistry(&fakeBookings{}, &fakePublisher{})
	defer registry.Close()

	sess, err := registry.Get(context.Background(), registry.NewID())
	require.NoError(t, err)

	_, err = sess.Checkout(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestCheckoutEmptiesCartAndPublishes(t *testing.T) {
	store := &fakeBookings{}
	publisher := &fakePublisher{}
	registry := newTestRegistry(store, publisher)
	defer registry.Close()

	sess, err := registry.Get(context.Background(), registry.NewID())
	require.NoError(t, err)
	_, err = sess.Store.SignIn(context.Background(), "ada@example.com", "secret")
	require.NoError(t, err)

	require.NoError(t, sess.Flow.Start(models.Trip{ID: "T1", Fare: 100}, 2))
	sess.Flow.UpdateSeats([]string{"A1", "A2"})
	sess.Flow.UpdatePassengerDetails([]models.PassengerInfo{{FullName: "A"}, {FullName: "B"}})
	_, err = sess.Cart.Add()
	require.NoError(t, err)

	bookings, err := sess.Checkout(context.Background())
	require.NoError(t, err)
	assert.Len(t, bookings, 2)
	assert.Zero(t, sess.Cart.Len())
	assert.Equal(t, []string{
		models.EventBookingCreated,
		models.EventBookingCreated,
		models.EventCartCheckedOut,
	}, publisher.subjects())
}

func TestCheckoutFailureKeepsCart(t *testing.T) {
	store := &fakeBookings{failAt: 0, err: errBoom}
	registry := newTestRegistry(store, &fakePublisher{})
	defer registry.Close()

	sess, err := registry.Get(context.Background(), registry.NewID())
	require.NoError(t, err)
	_, err = sess.Store.SignIn(context.Background(), "ada@example.com", "secret")
	require.NoError(t, err)
	require.NoError(t, sess.Flow.Start(models.Trip{ID: "T1", Fare: 100}, 1))
	sess.Flow.UpdateSeats([]string{"A1"})
	sess.Flow.UpdatePassengerDetails([]models.PassengerInfo{{FullName: "A"}})
	_, err = sess.Cart.Add()
	require.NoError(t, err)

	_, err = sess.Checkout(context.Background())
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, sess.Cart.Len())
}

func TestSweepDropsIdleSessions(t *testing.T) {
	registry := newTestRegistry(&fakeBookings{}, &fakePublisher{})
	defer registry.Close()
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	registry.now = func() time.Time { return now }

	idle, err := registry.Get(context.Background(), registry.NewID())
	require.NoError(t, err)

	now = now.Add(50 * time.Second)
	active, err := registry.Get(context.Background(), registry.NewID())
	require.NoError(t, err)

	now = now.Add(20 * time.Second)
	assert.Equal(t, 1, registry.Sweep(context.Background()))
	assert.Equal(t, 1, registry.Len())

	again, err := registry.Get(context.Background(), active.ID)
	require.NoError(t, err)
	assert.Same(t, active, again)

	fresh, err := registry.Get(context.Background(), idle.ID)
	require.NoError(t, err)
	assert.NotSame(t, idle, fresh)
}

// ctxPersister fails reads once the caller's context is done.
type ctxPersister struct {
	*memPersister
}

func (p ctxPersister) LoadSession(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.memPersister.LoadSession(ctx, key)
}

func TestGetRestoresLoginWhenFirstRequestIsCancelled(t *testing.T) {
	persister := ctxPersister{newMemPersister()}
	id := NewAppSessionRegistry(AppSessionDeps{}, SessionConfig{}).NewID()

	before := newTestRegistryWith(&fakeBookings{}, &fakePublisher{}, persister)
	sess, err := before.Get(context.Background(), id)
	require.NoError(t, err)
	_, err = sess.Store.SignIn(context.Background(), "ada@example.com", "secret")
	require.NoError(t, err)
	before.Close()

	after := newTestRegistryWith(&fakeBookings{}, &fakePublisher{}, persister)
	defer after.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	restored, err := after.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, restored.Store.Identity())
	assert.Equal(t, "Ada Obi", restored.Store.Identity().Profile.FullName)
}

func TestCheckoutRefusesEmptyCart(t *testing.T) {
	publisher := &fakePublisher{}
	registry := newTestRegistry(&fakeBookings{}, publisher)
	defer registry.Close()

	sess, err := registry.Get(context.Background(), registry.NewID())
	require.NoError(t, err)
	_, err = sess.Store.SignIn(context.Background(), "ada@example.com", "secret")
	require.NoError(t, err)

	_, err = sess.Checkout(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrEmptyCart)
	assert.Empty(t, publisher.subjects())
}
