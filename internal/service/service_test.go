package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medexa/internal/domain"
	"medexa/internal/repository"
	"medexa/internal/repository/sqlite"
)

type services struct {
	medicines    MedicineService
	logs         HealthLogService
	appointments AppointmentService
}

func setupServices(t *testing.T) services {
	t.Helper()
	db, err := sqlite.Open(sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	medRepo := sqlite.NewMedicineRepository(db)
	timeRepo := sqlite.NewReminderTimeRepository(db)
	logRepo := sqlite.NewHealthLogRepository(db)
	apptRepo := sqlite.NewAppointmentRepository(db)
	for _, initFn := range []func(context.Context) error{medRepo.Init, timeRepo.Init, logRepo.Init, apptRepo.Init} {
		require.NoError(t, initFn(ctx))
	}

	return services{
		medicines:    NewMedicineService(medRepo, timeRepo, quietLogger()),
		logs:         NewHealthLogService(logRepo),
		appointments: NewAppointmentService(apptRepo),
	}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func validMedicine() MedicineInput {
	return MedicineInput{
		Name:   " Bacteria Drying ",
		Dosage: "750 mg",
		Form:   domain.MedicineFormSyrup,
		Times:  []string{"7:00 AM", "5:00 PM"},
	}
}

func TestMedicineService_CreateAppliesDefaults(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	m, err := s.medicines.Create(ctx, "user_1", validMedicine())
	require.NoError(t, err)
	assert.Equal(t, "Bacteria Drying", m.Name)
	assert.Equal(t, domain.MealAfterDinner, m.Meal)
	assert.Equal(t, domain.FrequencyDaily, m.Frequency)
	require.Len(t, m.Times, 2)
	assert.Equal(t, "7:00 AM", m.Times[0].Label)
	assert.Equal(t, "5:00 PM", m.Times[1].Label)
}

func TestMedicineService_Validation(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	cases := map[string]func(*MedicineInput){
		"missing name":   func(in *MedicineInput) { in.Name = "  " },
		"missing dosage": func(in *MedicineInput) { in.Dosage = "" },
		"bad form":       func(in *MedicineInput) { in.Form = "Injection" },
		"bad meal":       func(in *MedicineInput) { in.Meal = "Midnight" },
		"bad frequency":  func(in *MedicineInput) { in.Frequency = "Hourly" },
		"no times":       func(in *MedicineInput) { in.Times = nil },
		"bad time":       func(in *MedicineInput) { in.Times = []string{"25:00 AM"} },
		"hour past noon": func(in *MedicineInput) { in.Times = []string{"8:00 AM", "13:00 AM"} },
		"24h time":       func(in *MedicineInput) { in.Times = []string{"17:00"} },
		"duplicate time": func(in *MedicineInput) { in.Times = []string{"8:00 AM", " 8:00 AM"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validMedicine()
			mutate(&in)
			_, err := s.medicines.Create(ctx, "user_1", in)
			require.ErrorIs(t, err, ErrValidation)
		})
	}

	list, err := s.medicines.List(ctx, "user_1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMedicineService_OwnerIsolation(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	m, err := s.medicines.Create(ctx, "user_1", validMedicine())
	require.NoError(t, err)

	_, err = s.medicines.Get(ctx, "user_2", m.ID)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.medicines.ReplaceTimes(ctx, "user_2", m.ID, []string{"9:00 AM"})
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, s.medicines.Delete(ctx, "user_2", m.ID), ErrNotFound)

	got, err := s.medicines.Get(ctx, "user_1", m.ID)
	require.NoError(t, err)
	assert.Len(t, got.Times, 2)
}

func TestMedicineService_ReplaceTimesAndDelete(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	m, err := s.medicines.Create(ctx, "user_1", validMedicine())
	require.NoError(t, err)

	updated, err := s.medicines.ReplaceTimes(ctx, "user_1", m.ID, []string{"9:00 PM"})
	require.NoError(t, err)
	require.Len(t, updated.Times, 1)
	assert.Equal(t, "9:00 PM", updated.Times[0].Label)

	_, err = s.medicines.ReplaceTimes(ctx, "user_1", m.ID, nil)
	require.ErrorIs(t, err, ErrValidation)

	require.NoError(t, s.medicines.Delete(ctx, "user_1", m.ID))
	_, err = s.medicines.Get(ctx, "user_1", m.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

// failingTimes fails every replace, to exercise cleanup of the half-created medicine.
type failingTimes struct {
	repository.ReminderTimeRepository
}

func (failingTimes) ReplaceForMedicine(context.Context, int64, []domain.ReminderTime) error {
	return errors.New("disk full")
}

func TestMedicineService_CreateCleansUpOnTimeFailure(t *testing.T) {
	db, err := sqlite.Open(sqlite.MemoryPath)
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	medRepo := sqlite.NewMedicineRepository(db)
	timeRepo := sqlite.NewReminderTimeRepository(db)
	require.NoError(t, medRepo.Init(ctx))
	require.NoError(t, timeRepo.Init(ctx))

	svc := NewMedicineService(medRepo, failingTimes{timeRepo}, quietLogger())
	_, err = svc.Create(ctx, "user_1", validMedicine())
	require.Error(t, err)

	list, err := medRepo.ListByUser(ctx, "user_1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestHealthLogService(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	_, err := s.logs.Create(ctx, "user_1", HealthLogInput{Type: "Glucose (Fasting)"})
	require.ErrorIs(t, err, ErrValidation)
	_, err = s.logs.Create(ctx, "user_1", HealthLogInput{Value: "95 mg/dL"})
	require.ErrorIs(t, err, ErrValidation)

	log, err := s.logs.Create(ctx, "user_1", HealthLogInput{
		Type:       "Glucose (Fasting)",
		Value:      "95 mg/dL",
		RecordedAt: time.Date(2024, 11, 2, 7, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.ErrorIs(t, s.logs.Delete(ctx, "user_2", log.ID), ErrNotFound)

	logs, err := s.logs.List(ctx, "user_1")
	require.NoError(t, err)
	require.Len(t, logs, 1)

	require.NoError(t, s.logs.Delete(ctx, "user_1", log.ID))
	require.ErrorIs(t, s.logs.Delete(ctx, "user_1", log.ID), ErrNotFound)
}

func TestAppointmentService_StatusTransitions(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	_, err := s.appointments.Create(ctx, "user_1", AppointmentInput{Doctor: "Dr. S. Khan"})
	require.ErrorIs(t, err, ErrValidation)

	appt, err := s.appointments.Create(ctx, "user_1", AppointmentInput{
		Doctor:      "Dr. S. Khan",
		Specialty:   "Diabetologist",
		ScheduledAt: time.Date(2024, 12, 5, 14, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentStatusUpcoming, appt.Status)

	_, err = s.appointments.SetStatus(ctx, "user_1", appt.ID, domain.AppointmentStatusUpcoming)
	require.ErrorIs(t, err, ErrValidation)
	_, err = s.appointments.SetStatus(ctx, "user_2", appt.ID, domain.AppointmentStatusCompleted)
	require.ErrorIs(t, err, ErrNotFound)

	done, err := s.appointments.SetStatus(ctx, "user_1", appt.ID, domain.AppointmentStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentStatusCompleted, done.Status)

	_, err = s.appointments.SetStatus(ctx, "user_1", appt.ID, domain.AppointmentStatusCancelled)
	require.ErrorIs(t, err, ErrValidation)

	require.ErrorIs(t, s.appointments.Delete(ctx, "user_2", appt.ID), ErrNotFound)
	require.NoError(t, s.appointments.Delete(ctx, "user_1", appt.ID))

	list, err := s.appointments.List(ctx, "user_1")
	require.NoError(t, err)
	assert.Empty(t, list)
}
