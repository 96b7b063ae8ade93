package inventory

import (
	"context"
	"sync"
	"time"

	"fleet-sync/core/failure"
	"fleet-sync/core/snipeit"
)

// fakeTarget is an in-memory target that behaves like the real system for the
// calls the engine makes.
type fakeTarget struct {
	mu     sync.Mutex
	nextID int
	models map[string]snipeit.Model
	users  map[string]snipeit.User
	assets map[string]snipeit.Asset
	calls  map[string]int

	createAssetErr map[string]error
	createUserErr  error
	// lookupDelay slows user and asset lookups to widen races between workers.
	lookupDelay time.Duration
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{
		nextID:         100,
		models:         make(map[string]snipeit.Model),
		users:          make(map[string]snipeit.User),
		assets:         make(map[string]snipeit.Asset),
		calls:          make(map[string]int),
		createAssetErr: make(map[string]error),
	}
}

func (f *fakeTarget) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeTarget) resetCalls() {
	f.mu.Lock()
	f.calls = make(map[string]int)
	f.mu.Unlock()
}

func (f *fakeTarget) id() int {
	f.nextID++
	return f.nextID
}

func (f *fakeTarget) FindUserByEmail(_ context.Context, email string) (snipeit.User, bool, error) {
	time.Sleep(f.lookupDelay)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["FindUserByEmail"]++
	u, ok := f.users[email]
	return u, ok, nil
}

func (f *fakeTarget) CreateUser(_ context.Context, req snipeit.UserRequest) (snipeit.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CreateUser"]++
	if f.createUserErr != nil {
		return snipeit.User{}, f.createUserErr
	}
	if _, taken := f.users[req.Email]; taken {
		return snipeit.User{}, failure.NewLogical("create user", "username: The username has already been taken.")
	}
	u := snipeit.User{ID: f.id(), Email: req.Email, Username: req.Username, FirstName: req.FirstName, LastName: req.LastName}
	f.users[req.Email] = u
	return u, nil
}

func (f *fakeTarget) FindModelByName(_ context.Context, name string) (snipeit.Model, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["FindModelByName"]++
	m, ok := f.models[name]
	return m, ok, nil
}

func (f *fakeTarget) CreateModel(_ context.Context, req snipeit.ModelRequest) (snipeit.Model, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CreateModel"]++
	m := snipeit.Model{ID: f.id(), Name: req.Name}
	f.models[req.Name] = m
	return m, nil
}

func (f *fakeTarget) FindAssetBySerial(_ context.Context, serial string) (snipeit.Asset, bool, error) {
	time.Sleep(f.lookupDelay)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["FindAssetBySerial"]++
	a, ok := f.assets[serial]
	return a, ok, nil
}

func (f *fakeTarget) CreateAsset(_ context.Context, req snipeit.AssetRequest) (snipeit.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CreateAsset"]++
	if err := f.createAssetErr[req.Serial]; err != nil {
		return snipeit.Asset{}, err
	}
	if _, taken := f.assets[req.Serial]; taken {
		return snipeit.Asset{}, failure.NewLogical("create asset", "serial: The serial must be unique.")
	}
	a := snipeit.Asset{ID: f.id(), Name: req.Name, AssetTag: req.AssetTag, Serial: req.Serial, Notes: req.Notes}
	f.assets[req.Serial] = a
	return a, nil
}

func (f *fakeTarget) UpdateAsset(_ context.Context, id int, req snipeit.AssetRequest) (snipeit.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["UpdateAsset"]++
	a := f.assets[req.Serial]
	a.ID = id
	a.Name, a.AssetTag, a.Notes = req.Name, req.AssetTag, req.Notes
	f.assets[req.Serial] = a
	return a, nil
}

func (f *fakeTarget) CheckinAsset(_ context.Context, id int, _ snipeit.CheckinRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CheckinAsset"]++
	for serial, a := range f.assets {
		if a.ID != id {
			continue
		}
		if a.AssignedTo == nil {
			return failure.NewLogical("checkin asset", "That asset is already checked in.")
		}
		a.AssignedTo = nil
		f.assets[serial] = a
		return nil
	}
	return failure.NewLogical("checkin asset", "Asset does not exist.")
}

func (f *fakeTarget) CheckoutAsset(_ context.Context, id int, req snipeit.CheckoutRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CheckoutAsset"]++
	for serial, a := range f.assets {
		if a.ID == id {
			a.AssignedTo = &snipeit.Assignee{ID: req.AssignedUser, Type: req.CheckoutToType}
			f.assets[serial] = a
			return nil
		}
	}
	return failure.NewLogical("checkout asset", "Asset does not exist.")
}
