// README: Ride service unit tests covering the lifecycle state machine.
package ride

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gocab/internal/modules/fleet"
	"gocab/internal/types"
)

// fixedFare is a test double for FareEstimator.
type fixedFare struct {
	fare float64
	err  error
}

func (f fixedFare) EstimateFor(_ context.Context, _, _ string, _ fleet.VehicleType) (float64, error) {
	return f.fare, f.err
}

func newTestService(t *testing.T) (*Service, *MemStore) {
	t.Helper()
	store := NewMemStore()
	return NewService(store, fixedFare{fare: 123.45}), store
}

func createTestRide(t *testing.T, svc *Service, userID types.ID) *Ride {
	t.Helper()
	r, err := svc.Create(context.Background(), CreateCommand{
		UserID:      userID,
		Pickup:      "MG Road, Bengaluru",
		Destination: "Kempegowda Airport",
		VehicleType: fleet.VehicleCar,
	})
	if err != nil {
		t.Fatalf("create ride: %v", err)
	}
	return r
}

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusOngoing},
		{StatusConfirmed, StatusCancelled},
		{StatusOngoing, StatusCompleted},
	}
	for _, tr := range allowed {
		if !CanTransition(tr.from, tr.to) {
			t.Errorf("expected %s -> %s to be allowed", tr.from, tr.to)
		}
	}

	denied := []struct{ from, to Status }{
		{StatusPending, StatusOngoing},
		{StatusPending, StatusCompleted},
		{StatusConfirmed, StatusCompleted},
		{StatusOngoing, StatusCancelled},
		{StatusCompleted, StatusCancelled},
		{StatusCancelled, StatusPending},
		{StatusCompleted, StatusOngoing},
	}
	for _, tr := range denied {
		if CanTransition(tr.from, tr.to) {
			t.Errorf("expected %s -> %s to be denied", tr.from, tr.to)
		}
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []CreateCommand{
		{Pickup: "a", Destination: "b", VehicleType: fleet.VehicleCar},                      // no user
		{UserID: "u1", Destination: "b", VehicleType: fleet.VehicleCar},                     // no pickup
		{UserID: "u1", Pickup: "a", VehicleType: fleet.VehicleCar},                          // no destination
		{UserID: "u1", Pickup: "a", Destination: "b"},                                      // no vehicle type
		{UserID: "u1", Pickup: "a", Destination: "b", VehicleType: fleet.VehicleType("x")}, // unknown vehicle type
	}
	for i, cmd := range cases {
		if _, err := svc.Create(ctx, cmd); !errors.Is(err, ErrBadRequest) {
			t.Errorf("case %d: expected ErrBadRequest, got %v", i, err)
		}
	}
}

func TestCreate_FareFailurePropagates(t *testing.T) {
	boom := errors.New("route lookup failed")
	svc := NewService(NewMemStore(), fixedFare{err: boom})
	_, err := svc.Create(context.Background(), CreateCommand{
		UserID: "u1", Pickup: "a", Destination: "b", VehicleType: fleet.VehicleCar,
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected estimator error to propagate, got %v", err)
	}
}

func TestCreate_PendingWithFareAndOTP(t *testing.T) {
	svc, store := newTestService(t)
	r := createTestRide(t, svc, "u1")

	if r.Status != StatusPending {
		t.Errorf("expected pending, got %s", r.Status)
	}
	if r.Fare != 123.45 {
		t.Errorf("expected fare 123.45, got %f", r.Fare)
	}
	if len(r.OTP) != 6 {
		t.Errorf("expected 6-digit otp, got %q", r.OTP)
	}
	for _, c := range r.OTP {
		if c < '0' || c > '9' {
			t.Errorf("otp contains non-digit: %q", r.OTP)
		}
	}
	if r.CaptainID != nil {
		t.Errorf("expected no captain on a fresh ride")
	}

	events := store.Events()
	if len(events) != 1 || events[0].FromStatus != StatusNone || events[0].ToStatus != StatusPending {
		t.Errorf("expected a single none->pending audit event, got %v", events)
	}
}

func TestLifecycle_HappyPath(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	r := createTestRide(t, svc, "u1")
	fare := r.Fare

	r, err := svc.Confirm(ctx, r.ID, "c1")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if r.Status != StatusConfirmed {
		t.Fatalf("expected confirmed, got %s", r.Status)
	}
	if r.CaptainID == nil || *r.CaptainID != "c1" {
		t.Fatalf("expected captain c1 assigned, got %v", r.CaptainID)
	}
	if r.ConfirmedAt == nil {
		t.Error("expected confirmed_at to be set")
	}

	r, err = svc.Start(ctx, r.ID, "c1", r.OTP)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if r.Status != StatusOngoing {
		t.Fatalf("expected ongoing, got %s", r.Status)
	}
	if r.StartedAt == nil {
		t.Error("expected started_at to be set")
	}

	r, err = svc.End(ctx, r.ID, "c1")
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if r.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", r.Status)
	}
	if r.CompletedAt == nil {
		t.Error("expected completed_at to be set")
	}
	if r.Fare != fare {
		t.Errorf("fare changed across lifecycle: %f -> %f", fare, r.Fare)
	}

	events := store.Events()
	want := []Status{StatusPending, StatusConfirmed, StatusOngoing, StatusCompleted}
	if len(events) != len(want) {
		t.Fatalf("expected %d audit events, got %d", len(want), len(events))
	}
	for i, e := range events {
		if e.ToStatus != want[i] {
			t.Errorf("event %d: expected to=%s, got %s", i, want[i], e.ToStatus)
		}
	}
}

func TestConfirm_SecondCaptainRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	r := createTestRide(t, svc, "u1")

	if _, err := svc.Confirm(ctx, r.ID, "c1"); err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	if _, err := svc.Confirm(ctx, r.ID, "c2"); !errors.Is(err, ErrAlreadyConfirmed) {
		t.Fatalf("expected ErrAlreadyConfirmed, got %v", err)
	}

	got, err := svc.Get(ctx, r.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CaptainID == nil || *got.CaptainID != "c1" {
		t.Errorf("expected captain to remain c1, got %v", got.CaptainID)
	}
}

func TestConfirm_UnknownRide(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.Confirm(context.Background(), "missing", "c1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStart_Guards(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	r := createTestRide(t, svc, "u1")

	// Not yet confirmed.
	if _, err := svc.Start(ctx, r.ID, "c1", r.OTP); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("start before confirm: expected ErrInvalidState, got %v", err)
	}

	if _, err := svc.Confirm(ctx, r.ID, "c1"); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	// Wrong captain.
	if _, err := svc.Start(ctx, r.ID, "c2", r.OTP); !errors.Is(err, ErrWrongCaptain) {
		t.Fatalf("expected ErrWrongCaptain, got %v", err)
	}

	// Wrong OTP leaves the ride confirmed.
	wrong := "000000"
	if wrong == r.OTP {
		wrong = "000001"
	}
	if _, err := svc.Start(ctx, r.ID, "c1", wrong); !errors.Is(err, ErrOTPMismatch) {
		t.Fatalf("expected ErrOTPMismatch, got %v", err)
	}
	got, _ := svc.Get(ctx, r.ID)
	if got.Status != StatusConfirmed {
		t.Fatalf("failed start must not move the ride, got %s", got.Status)
	}

	// Correct OTP succeeds.
	if _, err := svc.Start(ctx, r.ID, "c1", r.OTP); err != nil {
		t.Fatalf("start with correct otp: %v", err)
	}

	// Start is not repeatable.
	if _, err := svc.Start(ctx, r.ID, "c1", r.OTP); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("double start: expected ErrInvalidState, got %v", err)
	}
}

func TestEnd_Guards(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	r := createTestRide(t, svc, "u1")

	if _, err := svc.End(ctx, r.ID, "c1"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("end pending ride: expected ErrInvalidState, got %v", err)
	}

	if _, err := svc.Confirm(ctx, r.ID, "c1"); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := svc.End(ctx, r.ID, "c1"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("end confirmed ride: expected ErrInvalidState, got %v", err)
	}

	if _, err := svc.Start(ctx, r.ID, "c1", r.OTP); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.End(ctx, r.ID, "c2"); !errors.Is(err, ErrWrongCaptain) {
		t.Fatalf("expected ErrWrongCaptain, got %v", err)
	}
	if _, err := svc.End(ctx, r.ID, "c1"); err != nil {
		t.Fatalf("end: %v", err)
	}
}

func TestCancel_RiderFromPending(t *testing.T) {
	svc, _ := newTestService(t)
	r := createTestRide(t, svc, "u1")

	got, err := svc.Cancel(context.Background(), r.ID, Actor{ID: "u1", Role: "rider"})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", got.Status)
	}
	if got.CancelledAt == nil {
		t.Error("expected cancelled_at to be set")
	}
}

func TestCancel_RiderFromConfirmed(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	r := createTestRide(t, svc, "u1")
	if _, err := svc.Confirm(ctx, r.ID, "c1"); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	got, err := svc.Cancel(ctx, r.ID, Actor{ID: "u1", Role: "rider"})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", got.Status)
	}
}

func TestCancel_RiderNotOwner(t *testing.T) {
	svc, _ := newTestService(t)
	r := createTestRide(t, svc, "u1")
	if _, err := svc.Cancel(context.Background(), r.ID, Actor{ID: "u2", Role: "rider"}); !errors.Is(err, ErrNotRideOwner) {
		t.Fatalf("expected ErrNotRideOwner, got %v", err)
	}
}

func TestCancel_CaptainRules(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	r := createTestRide(t, svc, "u1")

	// A captain cannot cancel a ride they were never assigned.
	if _, err := svc.Cancel(ctx, r.ID, Actor{ID: "c1", Role: "captain"}); !errors.Is(err, ErrWrongCaptain) {
		t.Fatalf("cancel pending as captain: expected ErrWrongCaptain, got %v", err)
	}

	if _, err := svc.Confirm(ctx, r.ID, "c1"); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := svc.Cancel(ctx, r.ID, Actor{ID: "c2", Role: "captain"}); !errors.Is(err, ErrWrongCaptain) {
		t.Fatalf("cancel as other captain: expected ErrWrongCaptain, got %v", err)
	}

	got, err := svc.Cancel(ctx, r.ID, Actor{ID: "c1", Role: "captain"})
	if err != nil {
		t.Fatalf("cancel as assigned captain: %v", err)
	}
	if got.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", got.Status)
	}
}

func TestCancel_OngoingAndTerminalRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	r := createTestRide(t, svc, "u1")
	if _, err := svc.Confirm(ctx, r.ID, "c1"); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := svc.Start(ctx, r.ID, "c1", r.OTP); err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := svc.Cancel(ctx, r.ID, Actor{ID: "u1", Role: "rider"}); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("cancel ongoing: expected ErrInvalidState, got %v", err)
	}

	if _, err := svc.End(ctx, r.ID, "c1"); err != nil {
		t.Fatalf("end: %v", err)
	}
	if _, err := svc.Cancel(ctx, r.ID, Actor{ID: "u1", Role: "rider"}); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("cancel completed: expected ErrInvalidState, got %v", err)
	}
}

func TestView_OTPVisibility(t *testing.T) {
	cid := types.ID("c1")
	r := &Ride{ID: "r1", UserID: "u1", CaptainID: &cid, OTP: "123456", Status: StatusConfirmed}

	if v := r.View(true); v.OTP != "123456" {
		t.Errorf("expected otp in privileged view")
	}
	if v := r.View(false); v.OTP != "" {
		t.Errorf("expected otp stripped from public view, got %q", v.OTP)
	}

	if !r.OTPVisibleTo("u1", "rider") {
		t.Error("owner rider must see the otp")
	}
	if r.OTPVisibleTo("u2", "rider") {
		t.Error("other riders must not see the otp")
	}
	if !r.OTPVisibleTo("c1", "captain") {
		t.Error("assigned captain must see the otp")
	}
	if r.OTPVisibleTo("c2", "captain") {
		t.Error("other captains must not see the otp")
	}
}

func TestGenerateOTP(t *testing.T) {
	for _, n := range []int{4, 6} {
		otp, err := generateOTP(n)
		if err != nil {
			t.Fatalf("generateOTP(%d): %v", n, err)
		}
		if len(otp) != n {
			t.Errorf("expected %d digits, got %q", n, otp)
		}
		if strings.Trim(otp, "0123456789") != "" {
			t.Errorf("otp contains non-digits: %q", otp)
		}
	}
}
