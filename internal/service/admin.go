package service

import (
	"context"
	"fmt"
	"time"

	"vipbot/internal/domain"
	"vipbot/internal/repository"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const exportSheet = "Sheet1"

var exportHeader = []interface{}{
	"Chat ID", "Username", "First name", "Name", "Age", "City", "Region", "Gender",
	"Job", "Goal", "Phone", "AI questions", "Score", "Level", "Registered at",
}

// Resetter drops and recreates the schema
type Resetter interface {
	Reset(ctx context.Context) error
}

// AdminService serves the admin panel: statistics, export and reset
type AdminService struct {
	users    repository.UserRepository
	vips     repository.VipRepository
	resetter Resetter
	now      func() time.Time
	logger   *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(
	users repository.UserRepository,
	vips repository.VipRepository,
	resetter Resetter,
	logger *zap.Logger,
) *AdminService {
	return &AdminService{
		users:    users,
		vips:     vips,
		resetter: resetter,
		now:      time.Now,
		logger:   logger,
	}
}

// Stats returns total users and active VIP members
func (s *AdminService) Stats(ctx context.Context) (domain.Stats, error) {
	total, err := s.users.CountUsers(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("count users: %w", err)
	}
	active, err := s.vips.CountActive(ctx, s.now())
	if err != nil {
		return domain.Stats{}, fmt.Errorf("count vip: %w", err)
	}
	return domain.Stats{TotalUsers: total, ActiveVIP: active}, nil
}

// ResetDatabase drops every table and recreates the schema
func (s *AdminService) ResetDatabase(ctx context.Context) error {
	s.logger.Warn("Resetting database")
	if err := s.resetter.Reset(ctx); err != nil {
		return fmt.Errorf("reset database: %w", err)
	}
	s.logger.Info("Database reset completed")
	return nil
}

// ExportUsers builds an xlsx workbook with one row per user
func (s *AdminService) ExportUsers(ctx context.Context) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	row := 2
	for offset := 0; ; offset += audiencePageSize {
		users, err := s.users.ListUsers(ctx, audiencePageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		for _, u := range users {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return nil, err
			}
			values := exportRow(u)
			if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
				return nil, fmt.Errorf("write row %d: %w", row, err)
			}
			row++
		}
		if len(users) < audiencePageSize {
			break
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("Users exported", zap.Int("rows", row-2))
	return buf.Bytes(), nil
}

func exportRow(u domain.User) []interface{} {
	p := u.Profile()
	var age interface{} = ""
	if u.Age != nil {
		age = *u.Age
	}
	return []interface{}{
		u.ChatID,
		deref(u.Username),
		deref(u.FirstName),
		p.Value(domain.FieldName),
		age,
		p.Value(domain.FieldCity),
		p.Value(domain.FieldRegion),
		p.Value(domain.FieldGender),
		p.Value(domain.FieldJob),
		p.Value(domain.FieldGoal),
		p.Value(domain.FieldPhone),
		u.AIQuestionsUsed,
		u.Score,
		u.Level(),
		u.RegisteredAt.Format("2006-01-02 15:04"),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
