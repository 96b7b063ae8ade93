package mocks

import (
	"context"

	"fleet-sync/core/reconcile"
	"fleet-sync/core/snipeit"

	"github.com/stretchr/testify/mock"
)

// Target is a mock implementation of inventory.Target
type Target struct {
	mock.Mock
}

func (m *Target) FindUserByEmail(ctx context.Context, email string) (snipeit.User, bool, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(snipeit.User), args.Bool(1), args.Error(2)
}

func (m *Target) CreateUser(ctx context.Context, req snipeit.UserRequest) (snipeit.User, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(snipeit.User), args.Error(1)
}

func (m *Target) FindModelByName(ctx context.Context, name string) (snipeit.Model, bool, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(snipeit.Model), args.Bool(1), args.Error(2)
}

func (m *Target) CreateModel(ctx context.Context, req snipeit.ModelRequest) (snipeit.Model, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(snipeit.Model), args.Error(1)
}

func (m *Target) FindAssetBySerial(ctx context.Context, serial string) (snipeit.Asset, bool, error) {
	args := m.Called(ctx, serial)
	return args.Get(0).(snipeit.Asset), args.Bool(1), args.Error(2)
}

func (m *Target) CreateAsset(ctx context.Context, req snipeit.AssetRequest) (snipeit.Asset, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(snipeit.Asset), args.Error(1)
}

func (m *Target) UpdateAsset(ctx context.Context, id int, req snipeit.AssetRequest) (snipeit.Asset, error) {
	args := m.Called(ctx, id, req)
	return args.Get(0).(snipeit.Asset), args.Error(1)
}

func (m *Target) CheckinAsset(ctx context.Context, id int, req snipeit.CheckinRequest) error {
	args := m.Called(ctx, id, req)
	return args.Error(0)
}

func (m *Target) CheckoutAsset(ctx context.Context, id int, req snipeit.CheckoutRequest) error {
	args := m.Called(ctx, id, req)
	return args.Error(0)
}

// Source is a mock implementation of inventory.Source
type Source struct {
	mock.Mock
}

func (m *Source) ListDevices(ctx context.Context, class reconcile.DeviceClass) ([]reconcile.Device, error) {
	args := m.Called(ctx, class)
	if devices, ok := args.Get(0).([]reconcile.Device); ok {
		return devices, args.Error(1)
	}
	return nil, args.Error(1)
}
