package service

import (
	"context"

	"reverie/internal/functions"
	"reverie/internal/models"
)

// AnalysisService asks the remote symbol-analysis function to interpret a
// dream's text.
type AnalysisService struct {
	dreams *DreamService
	fns    *functions.Client
}

// NewAnalysisService creates an analysis service.
func NewAnalysisService(dreams *DreamService, fns *functions.Client) *AnalysisService {
	return &AnalysisService{dreams: dreams, fns: fns}
}

// AnalyzeDream runs symbol analysis on one dream. Visibility rules are the
// same as reading the dream.
func (s *AnalysisService) AnalyzeDream(ctx context.Context, dreamID string, viewerID uint) (*functions.SymbolAnalysis, error) {
	dream, err := s.dreams.GetDream(ctx, dreamID, viewerID)
	if err != nil {
		return nil, err
	}

	analysis, err := s.fns.AnalyzeSymbols(ctx, dream.Body)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return analysis, nil
}
