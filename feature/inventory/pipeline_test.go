package inventory

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"fleet-sync/core/failure"
	"fleet-sync/core/reconcile"
	"fleet-sync/core/snipeit"
	"fleet-sync/feature/inventory/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testOptions() Options {
	return Options{
		ManufacturerID:  1,
		SupplierID:      2,
		DefaultStatusID: 3,
		CreateUsers:     true,
		CheckoutDevices: true,
		RateLimit:       time.Second,
		Classes:         []ClassProfile{IOSProfile(10), MacProfile(11), TVOSProfile(12)},
	}
}

func newTestPipeline(source Source, target Target, opts Options) (*Pipeline, *atomic.Int32) {
	p := NewPipeline(source, target, opts, zap.NewNop())
	pauses := new(atomic.Int32)
	p.pause = func(ctx context.Context, _ time.Duration) error {
		pauses.Add(1)
		return ctx.Err()
	}
	return p, pauses
}

func sourceWith(class reconcile.DeviceClass, devices ...reconcile.Device) *mocks.Source {
	source := new(mocks.Source)
	source.On("ListDevices", mock.Anything, class).Return(devices, nil)
	return source
}

func iPad(serial, owner, email string) reconcile.Device {
	return reconcile.Device{
		SerialNumber: serial,
		Name:         "iPad " + serial,
		ModelName:    "iPad Air",
		ModelNumber:  "iPad13,1",
		AssetTag:     "T-" + serial,
		Link:         "https://mosyle.example/devices/" + serial,
		OwnerName:    owner,
		OwnerEmail:   email,
	}
}

func TestPipeline_IdempotentSecondRun(t *testing.T) {
	target := newFakeTarget()
	source := sourceWith(reconcile.ClassIOS,
		iPad("S1", "Ann Lee", "ann@example.com"),
		iPad("S2", "", ""),
	)
	p, _ := newTestPipeline(source, target, testOptions())

	first, err := p.Run(context.Background(), IOSProfile(10))
	require.NoError(t, err)
	assert.Equal(t, 2, first.Summary.Created)
	assert.Equal(t, 1, first.Summary.CheckedOut)
	assert.Equal(t, 1, target.count("CreateModel"))
	assert.Equal(t, 1, target.count("CreateUser"))

	target.resetCalls()
	second, err := p.Run(context.Background(), IOSProfile(10))
	require.NoError(t, err)

	assert.Equal(t, 2, second.Summary.Unchanged)
	assert.Equal(t, 0, second.Summary.CheckedOut)
	for _, call := range []string{"CreateModel", "CreateUser", "CreateAsset", "UpdateAsset", "CheckoutAsset"} {
		assert.Zero(t, target.count(call), call)
	}
	assert.Equal(t, reconcile.CheckoutKept, second.Devices[0].Checkout)
}

func TestPipeline_PerDeviceIsolation(t *testing.T) {
	target := newFakeTarget()
	target.createAssetErr["S1"] = failure.NewLogical("create asset S1", "asset_tag: The asset tag must be unique.")
	source := sourceWith(reconcile.ClassMac, iPad("S1", "", ""), iPad("S2", "", ""))

	p, _ := newTestPipeline(source, target, testOptions())
	report, err := p.Run(context.Background(), MacProfile(11))
	require.NoError(t, err)
	require.Len(t, report.Devices, 2)

	assert.Equal(t, reconcile.ActionFailed, report.Devices[0].Action)
	assert.Equal(t, string(failure.KindLogical), report.Devices[0].ErrorKind)
	assert.Contains(t, report.Devices[0].Reason, "must be unique")

	assert.Equal(t, reconcile.ActionCreated, report.Devices[1].Action)
	assert.Equal(t, reconcile.CheckoutCheckedIn, report.Devices[1].Checkout)
	assert.Equal(t, 1, report.Summary.Failed)
	assert.Equal(t, 1, report.Summary.Created)
	assert.False(t, report.Aborted)
}

func TestPipeline_SkipsDevicesWithoutModel(t *testing.T) {
	target := newFakeTarget()
	unclassified := iPad("S9", "", "")
	unclassified.ModelName = ""
	source := sourceWith(reconcile.ClassIOS, unclassified, iPad("S1", "", ""))

	p, pauses := newTestPipeline(source, target, testOptions())
	report, err := p.Run(context.Background(), IOSProfile(10))
	require.NoError(t, err)

	assert.Equal(t, reconcile.ActionSkipped, report.Devices[0].Action)
	assert.Equal(t, reasonNoModel, report.Devices[0].Reason)
	assert.Equal(t, reconcile.ActionCreated, report.Devices[1].Action)
	assert.Equal(t, 1, target.count("CreateAsset"))
	assert.Equal(t, int32(1), pauses.Load())
}

func TestPipeline_WarmupFailureAbortsClass(t *testing.T) {
	target := new(mocks.Target)
	target.On("FindModelByName", mock.Anything, "iPad Air").
		Return(snipeit.Model{}, false, failure.NewTransport("find model iPad Air", 500, "")).Once()
	source := sourceWith(reconcile.ClassIOS, iPad("S1", "", ""), iPad("S2", "", ""))

	p, _ := newTestPipeline(source, target, testOptions())
	report, err := p.Run(context.Background(), IOSProfile(10))

	require.Error(t, err)
	assert.ErrorIs(t, err, failure.ErrTransport)
	assert.True(t, report.Aborted)
	assert.Contains(t, report.Error, "model warm-up")
	assert.Equal(t, 2, report.Summary.Skipped)
	target.AssertNotCalled(t, "FindAssetBySerial", mock.Anything, mock.Anything)
}

func TestPipeline_ListFailureAbortsClass(t *testing.T) {
	source := new(mocks.Source)
	source.On("ListDevices", mock.Anything, reconcile.ClassIOS).Return(nil, failure.NewTransport("list ios devices", 401, ""))

	p, _ := newTestPipeline(source, newFakeTarget(), testOptions())
	report, err := p.Run(context.Background(), IOSProfile(10))
	assert.ErrorIs(t, err, failure.ErrTransport)
	assert.True(t, report.Aborted)
	assert.Empty(t, report.Devices)
}

func TestPipeline_TVOSHasNoCheckout(t *testing.T) {
	target := newFakeTarget()
	source := sourceWith(reconcile.ClassTVOS, iPad("S1", "Ann Lee", "ann@example.com"))

	p, pauses := newTestPipeline(source, target, testOptions())
	report, err := p.Run(context.Background(), TVOSProfile(12))
	require.NoError(t, err)

	assert.Equal(t, reconcile.ActionCreated, report.Devices[0].Action)
	assert.Equal(t, reconcile.CheckoutNone, report.Devices[0].Checkout)
	assert.Equal(t, int32(1), pauses.Load())
	for _, call := range []string{"FindUserByEmail", "CheckinAsset", "CheckoutAsset"} {
		assert.Zero(t, target.count(call), call)
	}
}

func TestPipeline_CheckoutDisabled(t *testing.T) {
	target := newFakeTarget()
	source := sourceWith(reconcile.ClassIOS, iPad("S1", "Ann Lee", "ann@example.com"))
	opts := testOptions()
	opts.CheckoutDevices = false

	p, _ := newTestPipeline(source, target, opts)
	_, err := p.Run(context.Background(), IOSProfile(10))
	require.NoError(t, err)
	assert.Zero(t, target.count("CheckinAsset"))
	assert.Zero(t, target.count("CheckoutAsset"))
}

func TestPipeline_DuplicateSerialsAreReported(t *testing.T) {
	target := newFakeTarget()
	source := sourceWith(reconcile.ClassIOS, iPad("S1", "", ""), iPad("S2", "", ""), iPad("S1", "", ""))

	p, _ := newTestPipeline(source, target, testOptions())
	report, err := p.Run(context.Background(), IOSProfile(10))
	require.NoError(t, err)

	assert.Equal(t, []string{"S1"}, report.DuplicateSerials)
	assert.Equal(t, reconcile.ActionCreated, report.Devices[0].Action)
	assert.Equal(t, reconcile.ActionUnchanged, report.Devices[2].Action)
}

func TestPipeline_UserCreationFailureAbortsRun(t *testing.T) {
	target := newFakeTarget()
	target.createUserErr = failure.NewLogical("create user", "username: The username has already been taken.")
	source := sourceWith(reconcile.ClassIOS,
		iPad("S1", "Ann Lee", "ann@example.com"),
		iPad("S2", "", ""),
	)

	p, _ := newTestPipeline(source, target, testOptions())
	report, err := p.Run(context.Background(), IOSProfile(10))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRunAborted)
	assert.True(t, report.Aborted)
	assert.Equal(t, reconcile.ActionFailed, report.Devices[0].Action)
	assert.Equal(t, reconcile.ActionSkipped, report.Devices[1].Action)
	assert.Contains(t, report.Devices[1].Reason, "run aborted")
	assert.Equal(t, 1, target.count("CreateAsset"))
}

func TestPipeline_WorkerPoolKeepsOrder(t *testing.T) {
	target := newFakeTarget()
	var devices []reconcile.Device
	for i := 0; i < 12; i++ {
		devices = append(devices, iPad(fmt.Sprintf("S%02d", i), "", ""))
	}
	source := sourceWith(reconcile.ClassMac, devices...)
	opts := testOptions()
	opts.Workers = 4

	p, pauses := newTestPipeline(source, target, opts)
	report, err := p.Run(context.Background(), MacProfile(11))
	require.NoError(t, err)

	require.Len(t, report.Devices, 12)
	for i, r := range report.Devices {
		assert.Equal(t, devices[i].SerialNumber, r.SerialNumber)
		assert.Equal(t, reconcile.ActionCreated, r.Action)
	}
	assert.Equal(t, int32(12), pauses.Load())
	assert.Equal(t, 1, target.count("CreateModel"))
}

func TestPipeline_WorkersShareNewOwner(t *testing.T) {
	target := newFakeTarget()
	target.lookupDelay = 20 * time.Millisecond
	source := sourceWith(reconcile.ClassIOS,
		iPad("S1", "Ann Lee", "ann@example.com"),
		iPad("S2", "Ann Lee", "ann@example.com"),
		iPad("S3", "", ""),
	)
	opts := testOptions()
	opts.Workers = 4

	p, _ := newTestPipeline(source, target, opts)
	report, err := p.Run(context.Background(), IOSProfile(10))
	require.NoError(t, err)
	assert.False(t, report.Aborted)

	assert.Equal(t, 1, target.count("CreateUser"))
	assert.Equal(t, reconcile.CheckoutAssigned, report.Devices[0].Checkout)
	assert.Equal(t, reconcile.CheckoutAssigned, report.Devices[1].Checkout)
	assert.Equal(t, report.Devices[0].UserID, report.Devices[1].UserID)
	assert.Zero(t, report.Summary.Failed)
}

func TestPipeline_WorkersSerialiseDuplicateSerials(t *testing.T) {
	target := newFakeTarget()
	target.lookupDelay = 20 * time.Millisecond
	source := sourceWith(reconcile.ClassIOS,
		iPad("S1", "Ann Lee", "ann@example.com"),
		iPad("S1", "Ann Lee", "ann@example.com"),
	)
	opts := testOptions()
	opts.Workers = 4

	p, _ := newTestPipeline(source, target, opts)
	report, err := p.Run(context.Background(), IOSProfile(10))
	require.NoError(t, err)

	assert.Equal(t, []string{"S1"}, report.DuplicateSerials)
	assert.Equal(t, 1, target.count("CreateAsset"))
	assert.Equal(t, 1, report.Summary.Created)
	assert.Equal(t, 1, report.Summary.Unchanged)
	assert.Zero(t, report.Summary.Failed)
	assert.Equal(t, 1, target.count("CheckoutAsset"))
}

func TestSleep_HonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleep(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleep(context.Background(), 0))
	assert.NoError(t, sleep(context.Background(), time.Millisecond))
}
