// Package contact содержит прием сообщений формы обратной связи, их выгрузку в CSV и сводку по дням.
package contact

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/documind-api/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/documind-api/internal/lib/sl"
	"github.com/magabrotheeeer/documind-api/internal/models"
)

// DefaultListLimit — сколько последних сообщений отдает List.
const DefaultListLimit = 50

// Форматы дат.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
	fileLayout = "2006-01-02_15-04-05"
)

// ErrInvalidDateRange — диапазон дат не разобран или from позже to.
var ErrInvalidDateRange = errors.New("invalid date range")

// CSVHeader — заголовок выгрузки.
var CSVHeader = []string{"ID", "Name", "Email", "Company", "Role", "Message", "Status", "Submission Date", "Submission Time"}

// Repository описывает контракт хранилища сообщений.
type Repository interface {
	CreateContact(ctx context.Context, c *models.Contact) (primitive.ObjectID, error)
	ListContacts(ctx context.Context, limit int) ([]*models.Contact, error)
	ListContactsByDate(ctx context.Context, r models.DateRange) ([]*models.Contact, error)
}

// Publisher публикует события в брокер.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Service — сервис сообщений обратной связи.
type Service struct {
	repo      Repository
	publisher Publisher
	log       *slog.Logger
	now       func() time.Time
}

// NewService создает сервис. publisher может быть nil, тогда события не публикуются.
func NewService(log *slog.Logger, repo Repository, publisher Publisher) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Save нормализует и сохраняет сообщение, затем публикует contact.submitted.
// Ошибка публикации не отменяет сохранение.
func (s *Service) Save(ctx context.Context, in models.ContactInput) (*models.Contact, error) {
	const op = "contact.Save"

	now := s.now()
	c := &models.Contact{
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Company:   strings.TrimSpace(in.Company),
		Role:      strings.TrimSpace(in.Role),
		Message:   strings.TrimSpace(in.Message),
		Status:    models.ContactStatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.repo.CreateContact(ctx, c); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.publisher != nil {
		event := models.ContactSubmittedEvent{
			EventID:   uuid.NewString(),
			ContactID: c.ID.Hex(),
			Name:      c.Name,
			Email:     c.Email,
			Company:   c.Company,
			Role:      c.Role,
			Message:   c.Message,
			CreatedAt: c.CreatedAt,
		}
		if err := s.publisher.Publish(ctx, rabbitmq.ContactRoutingKey, event); err != nil {
			s.log.Error("failed to publish contact event",
				slog.String("op", op), slog.String("contact_id", event.ContactID), sl.Err(err))
		}
	}
	return c, nil
}

// List возвращает последние сообщения, новые первыми.
func (s *Service) List(ctx context.Context, limit int) ([]*models.Contact, error) {
	const op = "contact.List"
	if limit <= 0 {
		limit = DefaultListLimit
	}
	contacts, err := s.repo.ListContacts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return contacts, nil
}

// ParseDateRange разбирает даты YYYY-MM-DD в включительный диапазон UTC:
// от начала дня from до конца дня to.
func ParseDateRange(from, to string) (models.DateRange, error) {
	const op = "contact.ParseDateRange"
	start, err := time.Parse(DateLayout, strings.TrimSpace(from))
	if err != nil {
		return models.DateRange{}, fmt.Errorf("%s: from: %w", op, ErrInvalidDateRange)
	}
	end, err := time.Parse(DateLayout, strings.TrimSpace(to))
	if err != nil {
		return models.DateRange{}, fmt.Errorf("%s: to: %w", op, ErrInvalidDateRange)
	}
	if end.Before(start) {
		return models.DateRange{}, fmt.Errorf("%s: from after to: %w", op, ErrInvalidDateRange)
	}
	return models.DateRange{
		From: start,
		To:   end.Add(24*time.Hour - time.Millisecond),
	}, nil
}

// ExportAll пишет все сообщения в w в формате CSV и возвращает число записей.
func (s *Service) ExportAll(ctx context.Context, w io.Writer) (int, error) {
	const op = "contact.ExportAll"
	contacts, err := s.repo.ListContacts(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err = WriteCSV(w, contacts); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return len(contacts), nil
}

// ExportByDate пишет в w сообщения из диапазона r.
func (s *Service) ExportByDate(ctx context.Context, w io.Writer, r models.DateRange) (int, error) {
	const op = "contact.ExportByDate"
	contacts, err := s.repo.ListContactsByDate(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err = WriteCSV(w, contacts); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return len(contacts), nil
}

// Summary группирует сообщения по дням, новые дни первыми.
// Без диапазона учитываются все сообщения.
func (s *Service) Summary(ctx context.Context, r *models.DateRange) ([]models.ContactDaySummary, error) {
	const op = "contact.Summary"
	var (
		contacts []*models.Contact
		err      error
	)
	if r == nil {
		contacts, err = s.repo.ListContacts(ctx, 0)
	} else {
		contacts, err = s.repo.ListContactsByDate(ctx, *r)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return SummarizeByDate(contacts), nil
}

// SummarizeByDate группирует сообщения по дате создания (UTC).
// Внутри дня сохраняется порядок входного среза.
func SummarizeByDate(contacts []*models.Contact) []models.ContactDaySummary {
	index := make(map[string]int)
	result := make([]models.ContactDaySummary, 0)
	for _, c := range contacts {
		created := c.CreatedAt.UTC()
		date := created.Format(DateLayout)
		i, ok := index[date]
		if !ok {
			i = len(result)
			index[date] = i
			result = append(result, models.ContactDaySummary{Date: date, Contacts: []models.ContactBrief{}})
		}
		result[i].Count++
		result[i].Contacts = append(result[i].Contacts, models.ContactBrief{
			Name:    c.Name,
			Email:   c.Email,
			Company: c.Company,
			Time:    created.Format(TimeLayout),
		})
	}
	slices.SortStableFunc(result, func(a, b models.ContactDaySummary) int {
		return strings.Compare(b.Date, a.Date)
	})
	return result
}

// WriteCSV пишет сообщения в формате CSV с заголовком CSVHeader.
func WriteCSV(w io.Writer, contacts []*models.Contact) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, c := range contacts {
		status := c.Status
		if status == "" {
			status = models.ContactStatusNew
		}
		created := c.CreatedAt.UTC()
		record := []string{
			c.ID.Hex(),
			csvCell(c.Name),
			csvCell(c.Email),
			csvCell(c.Company),
			csvCell(c.Role),
			csvCell(c.Message),
			status,
			created.Format(DateLayout),
			created.Format(TimeLayout),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// csvCell экранирует значения, которые табличный редактор принял бы за формулу.
func csvCell(v string) string {
	if v != "" && strings.ContainsRune("=+-@\t\r", rune(v[0])) {
		return "'" + v
	}
	return v
}

// ExportFilename возвращает имя файла выгрузки. r == nil — выгрузка без диапазона.
func ExportFilename(r *models.DateRange, at time.Time) string {
	var b strings.Builder
	b.WriteString("contact_submissions")
	if r != nil {
		b.WriteString("_" + r.From.Format(DateLayout) + "_to_" + r.To.Format(DateLayout))
	}
	b.WriteString("_" + at.UTC().Format(fileLayout) + ".csv")
	return b.String()
}
