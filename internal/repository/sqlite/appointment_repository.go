package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"medexa/internal/domain"
	"medexa/internal/repository"
)

const createAppointmentsTable = `
CREATE TABLE IF NOT EXISTS appointments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	doctor TEXT NOT NULL,
	specialty TEXT NOT NULL DEFAULT '',
	scheduled_at DATETIME NOT NULL,
	status TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_appointments_user_id ON appointments(user_id);
`

const appointmentColumns = `id, user_id, doctor, specialty, scheduled_at, status, created_at, updated_at`

type AppointmentRepository struct {
	db *sql.DB
}

func NewAppointmentRepository(db *sql.DB) repository.AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createAppointmentsTable); err != nil {
		return fmt.Errorf("create appointments table: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) Create(ctx context.Context, appt *domain.Appointment) (int64, error) {
	now := time.Now().UTC()
	appt.CreatedAt = now
	appt.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO appointments (user_id, doctor, specialty, scheduled_at, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		appt.UserID,
		appt.Doctor,
		appt.Specialty,
		appt.ScheduledAt.UTC(),
		string(appt.Status),
		appt.CreatedAt,
		appt.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert appointment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}
	appt.ID = id
	return id, nil
}

func (r *AppointmentRepository) Get(ctx context.Context, id int64) (*domain.Appointment, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+appointmentColumns+`
FROM appointments
WHERE id=?`,
		id,
	)
	return scanAppointment(row)
}

// ListByUser returns the user's appointments in schedule order.
func (r *AppointmentRepository) ListByUser(ctx context.Context, userID string) ([]domain.Appointment, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+appointmentColumns+`
FROM appointments
WHERE user_id=?
ORDER BY scheduled_at ASC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query appointments: %w", err)
	}
	defer rows.Close()

	appts := []domain.Appointment{}
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, *appt)
	}

	return appts, rows.Err()
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE appointments
SET status=?, updated_at=?
WHERE id=?`,
		string(status),
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("appointment update rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("appointment %d: %w", id, repository.ErrNotFound)
	}
	return nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("appointment delete rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("appointment %d: %w", id, repository.ErrNotFound)
	}
	return nil
}

func scanAppointment(scanner rowScanner) (*domain.Appointment, error) {
	var (
		appt        domain.Appointment
		status      string
		scheduledAt time.Time
		createdAt   time.Time
		updatedAt   time.Time
	)
	if err := scanner.Scan(
		&appt.ID,
		&appt.UserID,
		&appt.Doctor,
		&appt.Specialty,
		&scheduledAt,
		&status,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("appointment: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan appointment: %w", err)
	}
	appt.Status = domain.AppointmentStatus(status)
	appt.ScheduledAt = scheduledAt.UTC()
	appt.CreatedAt = createdAt.UTC()
	appt.UpdatedAt = updatedAt.UTC()
	return &appt, nil
}
