package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"medexa/internal/domain"
	"medexa/internal/repository"
)

type AppointmentInput struct {
	Doctor      string
	Specialty   string
	ScheduledAt time.Time
}

// AppointmentService tracks doctor and lab visits.
type AppointmentService interface {
	Create(ctx context.Context, userID string, in AppointmentInput) (*domain.Appointment, error)
	List(ctx context.Context, userID string) ([]domain.Appointment, error)
	SetStatus(ctx context.Context, userID string, id int64, status domain.AppointmentStatus) (*domain.Appointment, error)
	Delete(ctx context.Context, userID string, id int64) error
}

type appointmentService struct {
	appointments repository.AppointmentRepository
}

func NewAppointmentService(appointments repository.AppointmentRepository) AppointmentService {
	return &appointmentService{appointments: appointments}
}

func (s *appointmentService) Create(ctx context.Context, userID string, in AppointmentInput) (*domain.Appointment, error) {
	appt := &domain.Appointment{
		UserID:      userID,
		Doctor:      strings.TrimSpace(in.Doctor),
		Specialty:   strings.TrimSpace(in.Specialty),
		ScheduledAt: in.ScheduledAt,
		Status:      domain.AppointmentStatusUpcoming,
	}
	if appt.Doctor == "" {
		return nil, invalid("doctor", "is required")
	}
	if appt.ScheduledAt.IsZero() {
		return nil, invalid("scheduled_at", "is required")
	}

	if _, err := s.appointments.Create(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

func (s *appointmentService) List(ctx context.Context, userID string) ([]domain.Appointment, error) {
	return s.appointments.ListByUser(ctx, userID)
}

// SetStatus moves an upcoming appointment to completed or cancelled.
func (s *appointmentService) SetStatus(ctx context.Context, userID string, id int64, status domain.AppointmentStatus) (*domain.Appointment, error) {
	switch status {
	case domain.AppointmentStatusCompleted, domain.AppointmentStatusCancelled:
	default:
		return nil, invalid("status", fmt.Sprintf("%q is not a target status", status))
	}

	appt, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != domain.AppointmentStatusUpcoming {
		return nil, invalid("status", fmt.Sprintf("appointment is already %s", strings.ToLower(string(appt.Status))))
	}

	if err := s.appointments.UpdateStatus(ctx, id, status); err != nil {
		return nil, mapRepoErr(err)
	}
	return s.owned(ctx, userID, id)
}

func (s *appointmentService) Delete(ctx context.Context, userID string, id int64) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return mapRepoErr(s.appointments.Delete(ctx, id))
}

func (s *appointmentService) owned(ctx context.Context, userID string, id int64) (*domain.Appointment, error) {
	appt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if appt.UserID != userID {
		return nil, ErrNotFound
	}
	return appt, nil
}
