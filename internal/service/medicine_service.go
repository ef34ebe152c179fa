package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"medexa/internal/domain"
	"medexa/internal/repository"
)

var reminderLabelPattern = regexp.MustCompile(`^(1[0-2]|[1-9]):[0-5][0-9] (AM|PM)$`)

// MedicineInput carries the fields a client supplies when adding a medicine.
type MedicineInput struct {
	Name      string
	Dosage    string
	Duration  string
	Form      domain.MedicineForm
	Meal      domain.MealTiming
	Frequency domain.Frequency
	Times     []string
}

// MedicineService manages an account's medicines and their reminder times.
type MedicineService interface {
	Create(ctx context.Context, userID string, in MedicineInput) (*domain.Medicine, error)
	Get(ctx context.Context, userID string, id int64) (*domain.Medicine, error)
	List(ctx context.Context, userID string) ([]domain.Medicine, error)
	ReplaceTimes(ctx context.Context, userID string, id int64, times []string) (*domain.Medicine, error)
	Delete(ctx context.Context, userID string, id int64) error
}

type medicineService struct {
	medicines repository.MedicineRepository
	times     repository.ReminderTimeRepository
	logger    *logrus.Logger
}

func NewMedicineService(medicines repository.MedicineRepository, times repository.ReminderTimeRepository, logger *logrus.Logger) MedicineService {
	if logger == nil {
		logger = logrus.New()
	}
	return &medicineService{
		medicines: medicines,
		times:     times,
		logger:    logger,
	}
}

func (s *medicineService) Create(ctx context.Context, userID string, in MedicineInput) (*domain.Medicine, error) {
	medicine, err := buildMedicine(userID, in)
	if err != nil {
		return nil, err
	}
	times, err := parseReminderTimes(in.Times)
	if err != nil {
		return nil, err
	}

	if _, err := s.medicines.Create(ctx, medicine); err != nil {
		return nil, err
	}
	if err := s.times.ReplaceForMedicine(ctx, medicine.ID, times); err != nil {
		if delErr := s.medicines.Delete(ctx, medicine.ID); delErr != nil {
			s.logger.WithError(delErr).Warnf("remove medicine %d after failed reminder insert", medicine.ID)
		}
		return nil, fmt.Errorf("save reminder times: %w", err)
	}

	return s.withTimes(ctx, medicine)
}

func (s *medicineService) Get(ctx context.Context, userID string, id int64) (*domain.Medicine, error) {
	medicine, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.withTimes(ctx, medicine)
}

func (s *medicineService) List(ctx context.Context, userID string) ([]domain.Medicine, error) {
	medicines, err := s.medicines.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range medicines {
		times, err := s.times.ListByMedicine(ctx, medicines[i].ID)
		if err != nil {
			return nil, err
		}
		medicines[i].Times = times
	}
	return medicines, nil
}

func (s *medicineService) ReplaceTimes(ctx context.Context, userID string, id int64, labels []string) (*domain.Medicine, error) {
	times, err := parseReminderTimes(labels)
	if err != nil {
		return nil, err
	}
	medicine, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.times.ReplaceForMedicine(ctx, id, times); err != nil {
		return nil, err
	}
	return s.withTimes(ctx, medicine)
}

func (s *medicineService) Delete(ctx context.Context, userID string, id int64) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return mapRepoErr(s.medicines.Delete(ctx, id))
}

func (s *medicineService) owned(ctx context.Context, userID string, id int64) (*domain.Medicine, error) {
	medicine, err := s.medicines.Get(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if medicine.UserID != userID {
		return nil, ErrNotFound
	}
	return medicine, nil
}

func (s *medicineService) withTimes(ctx context.Context, medicine *domain.Medicine) (*domain.Medicine, error) {
	times, err := s.times.ListByMedicine(ctx, medicine.ID)
	if err != nil {
		return nil, err
	}
	medicine.Times = times
	return medicine, nil
}

func buildMedicine(userID string, in MedicineInput) (*domain.Medicine, error) {
	m := &domain.Medicine{
		UserID:    userID,
		Name:      strings.TrimSpace(in.Name),
		Dosage:    strings.TrimSpace(in.Dosage),
		Duration:  strings.TrimSpace(in.Duration),
		Form:      in.Form,
		Meal:      in.Meal,
		Frequency: in.Frequency,
	}
	if m.Name == "" {
		return nil, invalid("name", "is required")
	}
	if m.Dosage == "" {
		return nil, invalid("dosage", "is required")
	}

	if m.Form == "" {
		m.Form = domain.MedicineFormTablet
	}
	if m.Meal == "" {
		m.Meal = domain.MealAfterDinner
	}
	if m.Frequency == "" {
		m.Frequency = domain.FrequencyDaily
	}

	switch m.Form {
	case domain.MedicineFormTablet, domain.MedicineFormCapsule, domain.MedicineFormSyrup, domain.MedicineFormDrop:
	default:
		return nil, invalid("form", fmt.Sprintf("%q is not supported", m.Form))
	}
	switch m.Meal {
	case domain.MealBeforeBreakfast, domain.MealAfterBreakfast, domain.MealBeforeLunch, domain.MealAfterDinner:
	default:
		return nil, invalid("meal", fmt.Sprintf("%q is not supported", m.Meal))
	}
	switch m.Frequency {
	case domain.FrequencyDaily, domain.FrequencyWeekly, domain.FrequencyMonthly:
	default:
		return nil, invalid("frequency", fmt.Sprintf("%q is not supported", m.Frequency))
	}
	return m, nil
}

func parseReminderTimes(labels []string) ([]domain.ReminderTime, error) {
	if len(labels) == 0 {
		return nil, invalid("times", "must contain at least one reminder time")
	}
	seen := make(map[string]struct{}, len(labels))
	times := make([]domain.ReminderTime, 0, len(labels))
	for i, raw := range labels {
		label := strings.TrimSpace(raw)
		if !reminderLabelPattern.MatchString(label) {
			return nil, invalid("times", fmt.Sprintf("%q is not a clock time like 8:00 AM", raw))
		}
		if _, dup := seen[label]; dup {
			return nil, invalid("times", fmt.Sprintf("%q is listed twice", label))
		}
		seen[label] = struct{}{}
		times = append(times, domain.ReminderTime{Label: label, Position: i})
	}
	return times, nil
}
