package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"pinpal-backend/internal/models"
	"pinpal-backend/internal/repository"
)

// fakeUserStore is an in-memory UserStore
type fakeUserStore struct {
	users map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*models.User)}
}

func (f *fakeUserStore) Create(_ context.Context, user *models.User) error {
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user %w", repository.ErrNotFound)
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user %w", repository.ErrNotFound)
}

func (f *fakeUserStore) UsernameExists(_ context.Context, username string) (bool, error) {
	for _, user := range f.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) PhoneExists(_ context.Context, phoneNo string) (bool, error) {
	for _, user := range f.users {
		if user.PhoneNo == phoneNo {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, userID string, upd *repository.ProfileUpdate) error {
	user, ok := f.users[userID]
	if !ok {
		return fmt.Errorf("user %w", repository.ErrNotFound)
	}
	if upd.Username != nil {
		user.Username = *upd.Username
	}
	if upd.FullName != nil {
		user.FullName = *upd.FullName
	}
	if upd.Birthday != nil {
		user.Birthday = *upd.Birthday
	}
	if upd.PhoneNo != nil {
		user.PhoneNo = *upd.PhoneNo
	}
	if upd.PasswordHash != nil {
		user.PasswordHash = *upd.PasswordHash
	}
	return nil
}

func (f *fakeUserStore) UpdateProfilePicURL(_ context.Context, userID string, url *string) error {
	user, ok := f.users[userID]
	if !ok {
		return fmt.Errorf("user %w", repository.ErrNotFound)
	}
	user.ProfilePicURL = url
	return nil
}

func (f *fakeUserStore) UpdateDeviceToken(_ context.Context, userID string, token *string) error {
	user, ok := f.users[userID]
	if !ok {
		return fmt.Errorf("user %w", repository.ErrNotFound)
	}
	user.DeviceToken = token
	return nil
}

func (f *fakeUserStore) SetPhoneVerified(_ context.Context, userID string) error {
	user, ok := f.users[userID]
	if !ok {
		return fmt.Errorf("user %w", repository.ErrNotFound)
	}
	user.PhoneVerified = true
	return nil
}

func (f *fakeUserStore) Search(_ context.Context, query string, limit int) ([]*models.Profile, error) {
	var profiles []*models.Profile
	for _, user := range f.users {
		if strings.Contains(strings.ToLower(user.Username), strings.ToLower(query)) ||
			strings.Contains(strings.ToLower(user.FullName), strings.ToLower(query)) {
			profiles = append(profiles, user.Profile())
		}
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Username < profiles[j].Username })
	if len(profiles) > limit {
		profiles = profiles[:limit]
	}
	return profiles, nil
}

// fakeFriendshipStore is an in-memory FriendshipStore backed by the
// user store for profile lookups
type fakeFriendshipStore struct {
	users *fakeUserStore
	edges []*models.Friendship
}

func newFakeFriendshipStore(users *fakeUserStore) *fakeFriendshipStore {
	return &fakeFriendshipStore{users: users}
}

func (f *fakeFriendshipStore) find(a, b string) *models.Friendship {
	for _, e := range f.edges {
		if (e.SourceID == a && e.TargetID == b) || (e.SourceID == b && e.TargetID == a) {
			return e
		}
	}
	return nil
}

func (f *fakeFriendshipStore) Insert(_ context.Context, edge *models.Friendship) (bool, error) {
	if f.find(edge.SourceID, edge.TargetID) != nil {
		return false, nil
	}
	copied := *edge
	f.edges = append(f.edges, &copied)
	return true, nil
}

func (f *fakeFriendshipStore) GetBetween(_ context.Context, a, b string) (*models.Friendship, error) {
	edge := f.find(a, b)
	if edge == nil {
		return nil, nil
	}
	copied := *edge
	return &copied, nil
}

func (f *fakeFriendshipStore) Accept(_ context.Context, source, target string) (bool, error) {
	for _, e := range f.edges {
		if e.SourceID == source && e.TargetID == target && e.Status == models.FriendStatusPending {
			e.Status = models.FriendStatusAccepted
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFriendshipStore) Delete(_ context.Context, a, b string) (bool, error) {
	for i, e := range f.edges {
		if (e.SourceID == a && e.TargetID == b) || (e.SourceID == b && e.TargetID == a) {
			f.edges = append(f.edges[:i], f.edges[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFriendshipStore) friendIDs(userID string) []string {
	var ids []string
	for _, e := range f.edges {
		if e.Status != models.FriendStatusAccepted {
			continue
		}
		if e.SourceID == userID {
			ids = append(ids, e.TargetID)
		} else if e.TargetID == userID {
			ids = append(ids, e.SourceID)
		}
	}
	return ids
}

func (f *fakeFriendshipStore) ListFriends(_ context.Context, userID string) ([]*models.Profile, error) {
	var profiles []*models.Profile
	for _, id := range f.friendIDs(userID) {
		if user, ok := f.users.users[id]; ok {
			profiles = append(profiles, user.Profile())
		}
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Username < profiles[j].Username })
	return profiles, nil
}

func (f *fakeFriendshipStore) ListIncoming(_ context.Context, userID string) ([]*models.Profile, error) {
	var profiles []*models.Profile
	for _, e := range f.edges {
		if e.TargetID == userID && e.Status == models.FriendStatusPending {
			if user, ok := f.users.users[e.SourceID]; ok {
				profiles = append(profiles, user.Profile())
			}
		}
	}
	return profiles, nil
}

func (f *fakeFriendshipStore) Recommend(_ context.Context, userID string, limit int) ([]*models.Recommendation, error) {
	counts := make(map[string]int)
	for _, friendID := range f.friendIDs(userID) {
		for _, candidateID := range f.friendIDs(friendID) {
			if candidateID != userID && f.find(userID, candidateID) == nil {
				counts[candidateID]++
			}
		}
	}

	var recs []*models.Recommendation
	for id, count := range counts {
		if user, ok := f.users.users[id]; ok {
			recs = append(recs, &models.Recommendation{Profile: user.Profile(), MutualCount: count})
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].MutualCount != recs[j].MutualCount {
			return recs[i].MutualCount > recs[j].MutualCount
		}
		return recs[i].Profile.Username < recs[j].Profile.Username
	})
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// fakePinStore is an in-memory PinStore. Feed queries delegate to the
// friendship store the same way the SQL joins do.
type fakePinStore struct {
	users       *fakeUserStore
	friendships *fakeFriendshipStore
	pins        []*models.Pin
}

func newFakePinStore(users *fakeUserStore, friendships *fakeFriendshipStore) *fakePinStore {
	return &fakePinStore{users: users, friendships: friendships}
}

func (f *fakePinStore) Create(_ context.Context, pin *models.Pin) error {
	copied := *pin
	f.pins = append([]*models.Pin{&copied}, f.pins...)
	return nil
}

func (f *fakePinStore) ExistsAt(_ context.Context, ownerID string, lat, lng float64) (bool, error) {
	for _, p := range f.pins {
		if p.UserID == ownerID && p.Latitude == lat && p.Longitude == lng {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePinStore) lookup(ownerID, pinID string) *models.Pin {
	for _, p := range f.pins {
		if p.ID == pinID && (ownerID == "" || p.UserID == ownerID) {
			return p
		}
	}
	return nil
}

func (f *fakePinStore) GetByOwner(_ context.Context, ownerID, pinID string) (*models.Pin, error) {
	pin := f.lookup(ownerID, pinID)
	if pin == nil {
		return nil, fmt.Errorf("pin %w", repository.ErrNotFound)
	}
	copied := *pin
	return &copied, nil
}

func (f *fakePinStore) Get(_ context.Context, pinID string) (*models.Pin, error) {
	pin := f.lookup("", pinID)
	if pin == nil {
		return nil, fmt.Errorf("pin %w", repository.ErrNotFound)
	}
	copied := *pin
	return &copied, nil
}

func (f *fakePinStore) ListByOwner(_ context.Context, ownerID string) ([]*models.Pin, error) {
	var pins []*models.Pin
	for _, p := range f.pins {
		if p.UserID == ownerID {
			copied := *p
			pins = append(pins, &copied)
		}
	}
	return pins, nil
}

func (f *fakePinStore) Update(_ context.Context, pin *models.Pin) error {
	existing := f.lookup(pin.UserID, pin.ID)
	if existing == nil {
		return fmt.Errorf("pin %w", repository.ErrNotFound)
	}
	*existing = *pin
	return nil
}

func (f *fakePinStore) UpdateLocation(_ context.Context, ownerID, pinID string, lat, lng float64) error {
	pin := f.lookup(ownerID, pinID)
	if pin == nil {
		return fmt.Errorf("pin %w", repository.ErrNotFound)
	}
	pin.Latitude = lat
	pin.Longitude = lng
	return nil
}

func (f *fakePinStore) Delete(_ context.Context, ownerID, pinID string) (bool, error) {
	for i, p := range f.pins {
		if p.ID == pinID && p.UserID == ownerID {
			f.pins = append(f.pins[:i], f.pins[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePinStore) ListFriendFeed(_ context.Context, viewerID string) ([]*models.FriendPin, error) {
	friends := make(map[string]bool)
	for _, id := range f.friendships.friendIDs(viewerID) {
		friends[id] = true
	}
	var feed []*models.FriendPin
	for _, p := range f.pins {
		if friends[p.UserID] && p.Visibility >= models.VisibilityFriends {
			copied := *p
			feed = append(feed, &models.FriendPin{
				Pin:    &copied,
				Author: f.users.users[p.UserID].Profile(),
			})
		}
	}
	return feed, nil
}

func (f *fakePinStore) ListDiscoverable(_ context.Context, viewerID string) ([]*models.Pin, error) {
	friends := make(map[string]bool)
	for _, id := range f.friendships.friendIDs(viewerID) {
		friends[id] = true
	}
	var pins []*models.Pin
	for _, p := range f.pins {
		if p.Visibility == models.VisibilityPublic && p.UserID != viewerID && !friends[p.UserID] {
			copied := *p
			pins = append(pins, &copied)
		}
	}
	return pins, nil
}

func (f *fakePinStore) ListTagged(_ context.Context, userID string) ([]*models.Pin, error) {
	var pins []*models.Pin
	for _, p := range f.pins {
		for _, tag := range p.UserTags {
			if tag == userID {
				copied := *p
				pins = append(pins, &copied)
				break
			}
		}
	}
	return pins, nil
}

// fakeLikeStore is an in-memory LikeStore
type fakeLikeStore struct {
	users *fakeUserStore
	likes map[string][]string // pin id -> liker ids in like order
}

func newFakeLikeStore(users *fakeUserStore) *fakeLikeStore {
	return &fakeLikeStore{users: users, likes: make(map[string][]string)}
}

func (f *fakeLikeStore) Add(_ context.Context, pinID, userID string) error {
	for _, id := range f.likes[pinID] {
		if id == userID {
			return nil
		}
	}
	f.likes[pinID] = append(f.likes[pinID], userID)
	return nil
}

func (f *fakeLikeStore) Remove(_ context.Context, pinID, userID string) error {
	likers := f.likes[pinID]
	for i, id := range likers {
		if id == userID {
			f.likes[pinID] = append(likers[:i], likers[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeLikeStore) ListByPin(_ context.Context, pinID string) ([]*models.Profile, error) {
	var profiles []*models.Profile
	for _, id := range f.likes[pinID] {
		if user, ok := f.users.users[id]; ok {
			profiles = append(profiles, user.Profile())
		}
	}
	return profiles, nil
}

// fakePhotoStore records uploads and deletes in call order
type fakePhotoStore struct {
	objects   map[string][]byte // url -> data
	ops       []string          // "upload <url>" / "delete <url>"
	uploadErr error
	deleteErr error
}

func newFakePhotoStore() *fakePhotoStore {
	return &fakePhotoStore{objects: make(map[string][]byte)}
}

func (f *fakePhotoStore) Upload(_ context.Context, key, _ string, data []byte) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	url := "https://photos.test/" + key
	f.objects[url] = data
	f.ops = append(f.ops, "upload "+url)
	return url, nil
}

func (f *fakePhotoStore) Delete(_ context.Context, photoURL string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.objects[photoURL]; !ok {
		return errors.New("object not found: " + photoURL)
	}
	delete(f.objects, photoURL)
	f.ops = append(f.ops, "delete "+photoURL)
	return nil
}

// fakeNotifier records pushes
type fakeNotifier struct {
	pushes []string // "token|title|body"
	err    error
}

func (f *fakeNotifier) Push(_ context.Context, deviceToken, title, body string) error {
	if f.err != nil {
		return f.err
	}
	f.pushes = append(f.pushes, deviceToken+"|"+title+"|"+body)
	return nil
}

// fakeSMSVerifier accepts one hard-coded code
type fakeSMSVerifier struct {
	sent    []string
	code    string
	sendErr error
}

func (f *fakeSMSVerifier) SendCode(_ context.Context, phoneNo string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, phoneNo)
	return nil
}

func (f *fakeSMSVerifier) CheckCode(_ context.Context, _, code string) (bool, error) {
	return code == f.code, nil
}
