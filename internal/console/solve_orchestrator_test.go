package console

import (
	"context"
	"delivery-route-console/internal/domain"
	"delivery-route-console/internal/ports"
	"errors"
	"reflect"
	"testing"
)

func TestSolveErrorLeavesRoutes(t *testing.T) {
	m, widget, _ := newTestMapSync()
	seg := domain.Segment{{Lat: 50, Lon: 30}, {Lat: 50.1, Lon: 30.1}}

	store := &fakeStore{}
	store.solveFn = func(context.Context, ports.SolveRequest) ([]domain.Route, error) {
		return []domain.Route{route("V1", seg), route("V2", seg)}, nil
	}
	s := NewSolveOrchestrator(store, m)

	if _, err := s.Solve(context.Background(), false, []int64{1, 2}); err != nil {
		t.Fatalf("Solve: %v", err)
	}
	before := widget.Layers()
	beforeCards := m.Cards()

	store.solveFn = func(context.Context, ports.SolveRequest) ([]domain.Route, error) {
		return nil, &ports.AppError{Op: "remote.Solve", Status: 400, Message: "no orders"}
	}
	_, err := s.Solve(context.Background(), false, []int64{1, 2})

	var appErr *ports.AppError
	if !errors.As(err, &appErr) || appErr.Message != "no orders" {
		t.Fatalf("err = %v, want AppError(no orders)", err)
	}

	after := widget.Layers()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("route layers changed after failed solve: %v -> %v", before, after)
	}
	if !reflect.DeepEqual(beforeCards, m.Cards()) {
		t.Fatal("route cards changed after failed solve")
	}
}

func TestSolveSendsSelection(t *testing.T) {
	m, _, _ := newTestMapSync()

	var got ports.SolveRequest
	store := &fakeStore{solveFn: func(_ context.Context, req ports.SolveRequest) ([]domain.Route, error) {
		got = req
		return nil, nil
	}}
	s := NewSolveOrchestrator(store, m)

	if _, err := s.Solve(context.Background(), true, []int64{3, 1}); err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !got.ForceAll || !reflect.DeepEqual(got.VehicleIDs, []int64{3, 1}) {
		t.Fatalf("request = %+v", got)
	}
}

func TestSolveRejectsConcurrentCall(t *testing.T) {
	m, _, _ := newTestMapSync()

	entered := make(chan struct{})
	release := make(chan struct{})
	store := &fakeStore{solveFn: func(context.Context, ports.SolveRequest) ([]domain.Route, error) {
		close(entered)
		<-release
		return nil, nil
	}}
	s := NewSolveOrchestrator(store, m)

	done := make(chan error)
	go func() {
		_, err := s.Solve(context.Background(), false, nil)
		done <- err
	}()
	<-entered

	if !s.InFlight() {
		t.Fatal("InFlight = false during a solve")
	}
	if _, err := s.Solve(context.Background(), false, nil); !errors.Is(err, ErrSolveInProgress) {
		t.Fatalf("err = %v, want ErrSolveInProgress", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first Solve: %v", err)
	}
	if s.InFlight() {
		t.Fatal("InFlight = true after the solve finished")
	}
}
