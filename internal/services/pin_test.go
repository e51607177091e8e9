package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"pinpal-backend/internal/apperr"
	"pinpal-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinFixture struct {
	svc      *PinService
	users    *fakeUserStore
	pins     *fakePinStore
	likes    *fakeLikeStore
	photos   *fakePhotoStore
	notifier *fakeNotifier
}

func newPinFixture() *pinFixture {
	users := newFakeUserStore()
	edges := newFakeFriendshipStore(users)
	pins := newFakePinStore(users, edges)
	likes := newFakeLikeStore(users)
	photos := newFakePhotoStore()
	notifier := &fakeNotifier{}
	return &pinFixture{
		svc:      NewPinService(pins, likes, users, photos, notifier),
		users:    users,
		pins:     pins,
		likes:    likes,
		photos:   photos,
		notifier: notifier,
	}
}

func (fx *pinFixture) addUser(t *testing.T, username string, deviceToken *string) string {
	t.Helper()
	user := &models.User{
		ID:          uuid.New().String(),
		Username:    username,
		DeviceToken: deviceToken,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, fx.users.Create(context.Background(), user))
	return user.ID
}

func samplePinInput() *PinInput {
	return &PinInput{
		Latitude:     37.7749,
		Longitude:    -122.4194,
		Title:        "Golden Gate Park",
		Caption:      "picnic spot",
		Visibility:   models.VisibilityFriends,
		LocationTags: []string{"park", "sf"},
	}
}

func TestPinService_CreateDuplicateLocation(t *testing.T) {
	fx := newPinFixture()
	ctx := context.Background()
	owner := fx.addUser(t, "sunny", nil)
	other := fx.addUser(t, "moony", nil)

	_, err := fx.svc.Create(ctx, owner, samplePinInput(), nil)
	require.NoError(t, err)

	// same owner, same coordinates
	_, err = fx.svc.Create(ctx, owner, samplePinInput(), nil)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	// another user can still pin the same spot
	_, err = fx.svc.Create(ctx, other, samplePinInput(), nil)
	assert.NoError(t, err)

	// and the owner can pin elsewhere
	moved := samplePinInput()
	moved.Latitude = 37.8078
	_, err = fx.svc.Create(ctx, owner, moved, nil)
	assert.NoError(t, err)

	pins, err := fx.svc.ListByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, pins, 2)
}

func TestPinService_CreateThenGetRoundTrip(t *testing.T) {
	fx := newPinFixture()
	ctx := context.Background()
	owner := fx.addUser(t, "sunny", nil)

	created, err := fx.svc.Create(ctx, owner, samplePinInput(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := fx.svc.Get(ctx, owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 37.7749, got.Latitude)
	assert.Equal(t, -122.4194, got.Longitude)
	assert.Equal(t, "Golden Gate Park", got.Title)
	assert.Equal(t, "picnic spot", got.Caption)
	assert.Equal(t, models.VisibilityFriends, got.Visibility)
	assert.Equal(t, []string{"park", "sf"}, got.LocationTags)
	assert.Nil(t, got.PhotoURL)
}

func TestPinService_CreateWithPhotoStoresReference(t *testing.T) {
	fx := newPinFixture()
	ctx := context.Background()
	owner := fx.addUser(t, "sunny", nil)

	created, err := fx.svc.Create(ctx, owner, samplePinInput(), []byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NotNil(t, created.PhotoURL)
	assert.True(t, strings.Contains(*created.PhotoURL, "pins/"+owner+"/"),
		"photo key is namespaced by owner, got %s", *created.PhotoURL)
	assert.Len(t, fx.photos.objects, 1)
}

func TestPinService_CreatePhotoUploadFailureAborts(t *testing.T) {
	fx := newPinFixture()
	fx.photos.uploadErr = assert.AnError
	ctx := context.Background()
	owner := fx.addUser(t, "sunny", nil)

	_, err := fx.svc.Create(ctx, owner, samplePinInput(), []byte("jpeg-bytes"))
	assert.True(t, apperr.IsKind(err, apperr.KindExternalService))

	pins, err := fx.svc.ListByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, pins, "no row is written when the upload fails")
}

func TestPinService_CreateNotifiesTaggedUsers(t *testing.T) {
	fx := newPinFixture()
	ctx := context.Background()
	owner := fx.addUser(t, "sunny", nil)
	token := "bob-device"
	tagged := fx.addUser(t, "bob", &token)
	untokened := fx.addUser(t, "carol", nil)

	input := samplePinInput()
	input.UserTags = []string{tagged, untokened}
	_, err := fx.svc.Create(ctx, owner, input, nil)
	require.NoError(t, err)

	// only the user with a registered device gets a push
	require.Len(t, fx.notifier.pushes, 1)
	assert.Contains(t, fx.notifier.pushes[0], "bob-device|")
	assert.Contains(t, fx.notifier.pushes[0], "sunny")
}

func TestPinService_PushFailureDoesNotFailCreate(t *testing.T) {
	fx := newPinFixture()
	fx.notifier.err = assert.AnError
	ctx := context.Background()
	owner := fx.addUser(t, "sunny", nil)
	token := "bob-device"
	tagged := fx.addUser(t, "bob", &token)

	input := samplePinInput()
	input.UserTags = []string{tagged}
	created, err := fx.svc.Create(ctx, owner, input, nil)
	require.NoError(t, err)

	_, err = fx.svc.Get(ctx, owner, created.ID)
	assert.NoError(t, err)
}

func TestPinService_UpdateWithoutPhotoKeepsReference(t *testing.T) {
	fx := newPinFixture()
	ctx := context.Background()
	owner := fx.addUser(t, "sunny", nil)

	created, err := fx.svc.Create(ctx, owner, samplePinInput(), []byte("original"))
	require.NoError(t, err)
	originalURL := *created.PhotoURL

	input := samplePinInput()
	input.Title = "Renamed"
	updated, err := fx.svc.Update(ctx, owner, created.ID, input, nil)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	require.NotNil(t, updated.PhotoURL)
	assert.Equal(t, originalURL, *updated.PhotoURL)
}

func TestPinService_UpdateWithPhotoReplacesObject(t *testing.T) {
	fx := newPinFixture()
	ctx := context.Background()
	owner := fx.addUser(t, "sunny", nil)

	created, err := fx.svc.Create(ctx, owner, samplePinInput(), []byte("original"))
	require.NoError(t, err)
	originalURL := *created.PhotoURL

	updated, err := fx.svc.Update(ctx, owner, created.ID, samplePinInput(), []byte("replacement"))
	require.NoError(t, err)
	require.NotNil(t, updated.PhotoURL)
	assert.NotEqual(t, originalURL, *updated.PhotoURL)

	// old object deleted before the new upload, nothing orphaned
	assert.Len(t, fx.photos.objects, 1)
	require.Len(t, fx.photos.ops, 3)
	assert.Equal(t, "delete "+originalURL, fx.photos.ops[1])
	assert.True(t, strings.HasPrefix(fx.photos.ops[2], "upload "))
}

func TestPinService_UpdateUnknownPin(t *testing.T) {
	fx := newPinFixture()
	owner := fx.addUser(t, "sunny", nil)
	other := fx.addUser(t, "bob", nil)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, owner, samplePinInput(), nil)
	require.NoError(t, err)

	// a different user cannot touch the pin
	_, err = fx.svc.Update(ctx, other, created.ID, samplePinInput(), nil)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = fx.svc.Update(ctx, owner, uuid.New().String(), samplePinInput(), nil)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestPinService_DeleteRemovesPhotoAndRow(t *testing.T) {
	fx := newPinFixture()
	ctx := context.Background()
	owner := fx.addUser(t, "sunny", nil)

	created, err := fx.svc.Create(ctx, owner, samplePinInput(), []byte("jpeg"))
	require.NoError(t, err)

	require.NoError(t, fx.svc.Delete(ctx, owner, created.ID))
	assert.Empty(t, fx.photos.objects, "stored photo must not be orphaned")

	// second delete reports not found, never partial success
	err = fx.svc.Delete(ctx, owner, created.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestPinService_DeleteUnknownPin(t *testing.T) {
	fx := newPinFixture()
	owner := fx.addUser(t, "sunny", nil)

	err := fx.svc.Delete(context.Background(), owner, uuid.New().String())
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestPinService_UpdateLocation(t *testing.T) {
	fx := newPinFixture()
	ctx := context.Background()
	owner := fx.addUser(t, "sunny", nil)

	created, err := fx.svc.Create(ctx, owner, samplePinInput(), nil)
	require.NoError(t, err)

	require.NoError(t, fx.svc.UpdateLocation(ctx, owner, created.ID, 40.7128, -74.0060))
	got, err := fx.svc.Get(ctx, owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 40.7128, got.Latitude)
	assert.Equal(t, -74.0060, got.Longitude)
	assert.Equal(t, "Golden Gate Park", got.Title, "other fields untouched")
}

func TestPinService_Likes(t *testing.T) {
	fx := newPinFixture()
	ctx := context.Background()
	owner := fx.addUser(t, "sunny", nil)
	liker := fx.addUser(t, "bob", nil)

	created, err := fx.svc.Create(ctx, owner, samplePinInput(), nil)
	require.NoError(t, err)

	err = fx.svc.Like(ctx, uuid.New().String(), liker)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	require.NoError(t, fx.svc.Like(ctx, created.ID, liker))
	// double-like stays a single membership fact
	require.NoError(t, fx.svc.Like(ctx, created.ID, liker))

	likes, err := fx.svc.ListLikes(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, "bob", likes[0].Username)

	require.NoError(t, fx.svc.Unlike(ctx, created.ID, liker))
	require.NoError(t, fx.svc.Unlike(ctx, created.ID, liker))

	likes, err = fx.svc.ListLikes(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, likes)
}
