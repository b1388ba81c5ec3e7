package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/SmartEdu-Labs/network-service/internal/genai"
	"github.com/SmartEdu-Labs/network-service/internal/models"
	"github.com/SmartEdu-Labs/network-service/internal/repositories"
)

// mockStudents backs the directory when the identity platform is down.
var mockStudents = []*models.User{
	{ID: "mock-1", Name: "Ananya Rao", Email: "ananya@smartedu.dev", Role: models.RoleStudent, XP: 4200, Level: 6, StudyLevel: "Undergraduate", GrowthRate: 12, Avatar: "https://api.dicebear.com/7.x/avataaars/svg?seed=ananya"},
	{ID: "mock-2", Name: "Dev Patel", Email: "dev@smartedu.dev", Role: models.RoleStudent, XP: 3650, Level: 5, StudyLevel: "Undergraduate", GrowthRate: 9, Avatar: "https://api.dicebear.com/7.x/avataaars/svg?seed=dev"},
	{ID: "mock-3", Name: "Sara Iqbal", Email: "sara@smartedu.dev", Role: models.RoleStudent, XP: 2980, Level: 4, StudyLevel: "Postgraduate", GrowthRate: 15, Avatar: "https://api.dicebear.com/7.x/avataaars/svg?seed=sara"},
}

// directoryService serves the ranked student directory, mentor matching,
// and the admin Excel export.
type directoryService struct {
	repo   repositories.Repository
	ai     *genai.Client
	logger *slog.Logger
}

func NewDirectoryService(repo repositories.Repository, ai *genai.Client, logger *slog.Logger) DirectoryService {
	return &directoryService{
		repo:   repo,
		ai:     ai,
		logger: logger,
	}
}

func (s *directoryService) ListStudents(ctx context.Context, filters repositories.UserFilters) (*DirectoryResponse, error) {
	role := models.RoleStudent
	if filters.Role == nil {
		filters.Role = &role
	}

	students, total, err := s.repo.User().List(ctx, filters)
	if err != nil {
		s.logger.Warn("directory fetch failed, serving mock list", "error", err)
		return &DirectoryResponse{Students: mockStudents, Total: int64(len(mockStudents)), Fallback: true}, nil
	}

	return &DirectoryResponse{Students: students, Total: total}, nil
}

// RecommendMentor matches the user's interests against the mentor pool.
func (s *directoryService) RecommendMentor(ctx context.Context, userID string) (string, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load user: %w", err)
	}

	meta, err := s.repo.User().GetMetadata(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load user metadata: %w", err)
	}
	interests := stringSlice(meta["interests"])

	mentorRole := models.RoleMentor
	mentors, _, err := s.repo.User().List(ctx, repositories.UserFilters{Role: &mentorRole, Limit: 50})
	if err != nil {
		return "", fmt.Errorf("failed to load mentor pool: %w", err)
	}
	if len(mentors) == 0 {
		return "", ErrNotFound
	}

	summaries := make([]string, 0, len(mentors))
	for _, m := range mentors {
		summary := m.Name
		if m.Tagline != nil && *m.Tagline != "" {
			summary = fmt.Sprintf("%s - %s", m.Name, *m.Tagline)
		}
		summaries = append(summaries, summary)
	}

	match, err := s.ai.MentorMatch(ctx, interests, summaries)
	if err != nil {
		return "", fmt.Errorf("mentor match failed: %w", err)
	}

	s.logger.Info("mentor recommended", "user_id", user.ID, "pool_size", len(mentors))
	return match, nil
}

// ExportStudents builds the admin directory workbook.
func (s *directoryService) ExportStudents(ctx context.Context) (*excelize.File, error) {
	resp, err := s.ListStudents(ctx, repositories.UserFilters{Limit: 100})
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const sheet = "Students"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Name", "Email", "Level", "XP", "Study Level", "Growth Rate"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to build header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, student := range resp.Students {
		values := []interface{}{
			student.Name,
			student.Email,
			student.Level,
			student.XP,
			student.StudyLevel,
			student.GrowthRate,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, fmt.Errorf("failed to build cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row+2, err)
			}
		}
	}

	return f, nil
}

// stringSlice coerces a metadata value into a string slice.
func stringSlice(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
