package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/medisync/hospital-api/internal/model"
	"github.com/medisync/hospital-api/internal/repository"
	"github.com/medisync/hospital-api/internal/service"
)

// fakeAppointmentStore implements service.AppointmentStore in memory.
// FindBySlot honors the real semantics: cancelled appointments do not
// occupy their slot.
type fakeAppointmentStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*model.Appointment
	today  string // injectable "current date" for relation queries
}

func newFakeAppointmentStore() *fakeAppointmentStore {
	return &fakeAppointmentStore{
		rows:  map[int64]*model.Appointment{},
		today: time.Now().Format("2006-01-02"),
	}
}

func (f *fakeAppointmentStore) Create(_ context.Context, a *model.Appointment) (*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	cp := *a
	cp.ID = f.nextID
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	f.rows[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeAppointmentStore) FindByID(_ context.Context, id int64) (*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAppointmentStore) FindBySlot(_ context.Context, doctorID int64, date, tm string) (*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.rows {
		if a.DoctorID == doctorID && a.Date == date && a.Time == tm && a.Status != model.StatusCancelled {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAppointmentStore) UpdateStatus(_ context.Context, id int64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Status = status
	a.UpdatedAt = time.Now()
	return nil
}

func (f *fakeAppointmentStore) SetCancelConfirm(_ context.Context, id int64, confirmed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.CancelConfirm = confirmed
	return nil
}

func (f *fakeAppointmentStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeAppointmentStore) filter(keep func(*model.Appointment) bool) []model.Appointment {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Appointment{}
	for _, a := range f.rows {
		if keep(a) {
			out = append(out, *a)
		}
	}
	return out
}

func (f *fakeAppointmentStore) ListAll(context.Context) ([]model.Appointment, error) {
	return f.filter(func(*model.Appointment) bool { return true }), nil
}

func (f *fakeAppointmentStore) ListByDoctor(_ context.Context, doctorID int64) ([]model.Appointment, error) {
	return f.filter(func(a *model.Appointment) bool { return a.DoctorID == doctorID }), nil
}

func (f *fakeAppointmentStore) ListByPatient(_ context.Context, patientID int64) ([]model.Appointment, error) {
	return f.filter(func(a *model.Appointment) bool { return a.PatientID == patientID }), nil
}

func (f *fakeAppointmentStore) ListByStatus(_ context.Context, status string) ([]model.Appointment, error) {
	return f.filter(func(a *model.Appointment) bool { return a.Status == status }), nil
}

func (f *fakeAppointmentStore) ListByDate(_ context.Context, date string) ([]model.Appointment, error) {
	return f.filter(func(a *model.Appointment) bool { return a.Date == date }), nil
}

func (f *fakeAppointmentStore) ListByDoctorAndDate(_ context.Context, doctorID int64, date string) ([]model.Appointment, error) {
	return f.filter(func(a *model.Appointment) bool { return a.DoctorID == doctorID && a.Date == date }), nil
}

func (f *fakeAppointmentStore) ListByDoctorRelativeToToday(_ context.Context, doctorID int64, rel model.DateRelation) ([]model.Appointment, error) {
	// ISO dates compare correctly as strings, same as the DATE column.
	return f.filter(func(a *model.Appointment) bool {
		if a.DoctorID != doctorID {
			return false
		}
		switch rel {
		case model.RelationPast:
			return a.Date < f.today
		case model.RelationUpcoming:
			return a.Date > f.today
		default:
			return a.Date == f.today
		}
	}), nil
}

func (f *fakeAppointmentStore) DistinctPatientsByDoctor(_ context.Context, doctorID int64) ([]model.Principal, error) {
	seen := map[int64]bool{}
	out := []model.Principal{}
	for _, a := range f.filter(func(a *model.Appointment) bool { return a.DoctorID == doctorID }) {
		if !seen[a.PatientID] {
			seen[a.PatientID] = true
			out = append(out, model.Principal{ID: a.PatientID, Kind: model.KindPatient})
		}
	}
	return out, nil
}

func newAppointmentService(store *fakeAppointmentStore) *service.AppointmentService {
	return service.NewAppointmentService(store, service.NewMutexSlotLocker(), service.NopNotifier{})
}

func TestCheckAvailability(t *testing.T) {
	store := newFakeAppointmentStore()
	svc := newAppointmentService(store)
	ctx := context.Background()

	free, err := svc.CheckAvailability(ctx, 1, "2024-06-01", "10:00:00")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !free {
		t.Fatal("empty slot should be available")
	}

	booked, err := svc.Book(ctx, &model.Appointment{
		DoctorID: 1, PatientID: 7, Date: "2024-06-01", Time: "10:00:00",
	})
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if booked.Status != model.StatusPending {
		t.Errorf("new appointment status: got %q", booked.Status)
	}

	free, _ = svc.CheckAvailability(ctx, 1, "2024-06-01", "10:00:00")
	if free {
		t.Fatal("slot with a PENDING appointment must not be available")
	}

	// Adjacent slots stay free.
	free, _ = svc.CheckAvailability(ctx, 1, "2024-06-01", "10:30:00")
	if !free {
		t.Fatal("different time should be available")
	}
	free, _ = svc.CheckAvailability(ctx, 2, "2024-06-01", "10:00:00")
	if !free {
		t.Fatal("different doctor should be available")
	}

	// Cancelling releases the slot.
	if _, err := svc.UpdateStatus(ctx, booked.ID, model.StatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	free, _ = svc.CheckAvailability(ctx, 1, "2024-06-01", "10:00:00")
	if !free {
		t.Fatal("slot with only a CANCELLED appointment should be available")
	}
}

func TestBookRejectsTakenSlot(t *testing.T) {
	svc := newAppointmentService(newFakeAppointmentStore())
	ctx := context.Background()

	if _, err := svc.Book(ctx, &model.Appointment{DoctorID: 1, PatientID: 7, Date: "2024-06-01", Time: "10:00:00"}); err != nil {
		t.Fatalf("first book: %v", err)
	}
	_, err := svc.Book(ctx, &model.Appointment{DoctorID: 1, PatientID: 8, Date: "2024-06-01", Time: "10:00:00"})
	if !errors.Is(err, service.ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
}

func TestConcurrentBookingSameSlot(t *testing.T) {
	store := newFakeAppointmentStore()
	svc := newAppointmentService(store)

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Book(context.Background(), &model.Appointment{
				DoctorID: 1, PatientID: int64(100 + i), Date: "2024-06-01", Time: "10:00:00",
			})
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, service.ErrSlotTaken) || errors.Is(err, service.ErrSlotBusy):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won != 1 {
		t.Fatalf("expected exactly one booking to win, got %d", won)
	}
	if n := len(store.rows); n != 1 {
		t.Fatalf("expected one stored appointment, got %d", n)
	}
}

func TestUpdateStatus(t *testing.T) {
	svc := newAppointmentService(newFakeAppointmentStore())
	ctx := context.Background()

	booked, err := svc.Book(ctx, &model.Appointment{DoctorID: 1, PatientID: 7, Date: "2024-06-01", Time: "10:00:00"})
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	updated, err := svc.UpdateStatus(ctx, booked.ID, model.StatusConfirmed)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != model.StatusConfirmed {
		t.Errorf("status: got %q", updated.Status)
	}

	// Any known status may follow any other.
	if _, err := svc.UpdateStatus(ctx, booked.ID, model.StatusPending); err != nil {
		t.Errorf("confirmed -> pending should be accepted: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, booked.ID, "SHIPPED"); !errors.Is(err, service.ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, 9999, model.StatusCancelled); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestDateRelationQueries(t *testing.T) {
	store := newFakeAppointmentStore()
	store.today = "2024-06-15"
	svc := newAppointmentService(store)
	ctx := context.Background()

	for _, d := range []string{"2024-06-10", "2024-06-15", "2024-06-20"} {
		if _, err := svc.Book(ctx, &model.Appointment{DoctorID: 1, PatientID: 7, Date: d, Time: "09:00:00"}); err != nil {
			t.Fatalf("book %s: %v", d, err)
		}
	}

	past, _ := svc.Past(ctx, 1)
	if len(past) != 1 || past[0].Date != "2024-06-10" {
		t.Errorf("past: got %+v", past)
	}
	today, _ := svc.Today(ctx, 1)
	if len(today) != 1 || today[0].Date != "2024-06-15" {
		t.Errorf("today: got %+v", today)
	}
	upcoming, _ := svc.Upcoming(ctx, 1)
	if len(upcoming) != 1 || upcoming[0].Date != "2024-06-20" {
		t.Errorf("upcoming: got %+v", upcoming)
	}
}

func TestConfirmCancel(t *testing.T) {
	svc := newAppointmentService(newFakeAppointmentStore())
	ctx := context.Background()

	booked, err := svc.Book(ctx, &model.Appointment{DoctorID: 1, PatientID: 7, Date: "2024-06-01", Time: "10:00:00"})
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	updated, err := svc.ConfirmCancel(ctx, booked.ID)
	if err != nil {
		t.Fatalf("confirm cancel: %v", err)
	}
	if !updated.CancelConfirm {
		t.Error("cancel_confirm flag should be set")
	}
	if _, err := svc.ConfirmCancel(ctx, 9999); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
