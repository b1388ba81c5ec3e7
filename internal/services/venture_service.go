package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SmartEdu-Labs/network-service/internal/genai"
	"github.com/SmartEdu-Labs/network-service/internal/models"
	"github.com/SmartEdu-Labs/network-service/internal/validator"
)

// ventureService runs the AI venture analysis and files the result as a
// pitch on the user's profile.
type ventureService struct {
	ai        *genai.Client
	profile   ProfileService
	validator *validator.Validator
	logger    *slog.Logger
}

func NewVentureService(ai *genai.Client, profile ProfileService, v *validator.Validator, logger *slog.Logger) VentureService {
	return &ventureService{
		ai:        ai,
		profile:   profile,
		validator: v,
		logger:    logger,
	}
}

func (s *ventureService) AnalyzeVenture(ctx context.Context, userID string, req AnalyzeVentureRequest) (*models.VentureAnalysis, error) {
	if err := s.validator.Validate(&req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	analysis, err := s.ai.VentureAnalysis(ctx, req.Concept)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAnalysisFailed, err.Error())
	}

	pitch := models.VentureAnalysis{
		ID:       uuid.NewString(),
		Concept:  req.Concept,
		Analysis: analysis,
		Date:     time.Now().Format(time.RFC3339),
	}

	// The visual is best-effort; analysis text alone is a valid result
	if req.WithVisual {
		visual, err := s.ai.VentureVisual(ctx, req.Concept)
		if err != nil {
			s.logger.Warn("venture visual generation failed", "user_id", userID, "error", err)
		} else {
			pitch.VisualURL = visual
		}
	}

	if _, err := s.profile.SavePitch(ctx, userID, pitch); err != nil {
		return nil, err
	}
	if _, err := s.profile.AddXP(ctx, userID, xpVentureAnalyzed, "venture analysis"); err != nil {
		s.logger.Error("venture xp grant failed", "user_id", userID, "error", err)
	}

	s.logger.Info("venture analyzed", "user_id", userID, "with_visual", req.WithVisual)
	return &pitch, nil
}
