package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	config "github.com/postdock/postdock/configs"
	"github.com/postdock/postdock/internal/transfer"
)

// AIService is the contract with the external drafting collaborator. Only the
// request/response shapes are owned here; the model behind the endpoint is
// not this service's concern.
type AIService interface {
	Generate(ctx context.Context, req *transfer.AIGenerateRequest) (*transfer.AIGenerateResponse, error)
}

type aiService struct {
	cfg    config.Config
	client *http.Client
}

func NewAIService(cfg config.Config) AIService {
	return &aiService{
		cfg:    cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *aiService) Generate(ctx context.Context, genReq *transfer.AIGenerateRequest) (*transfer.AIGenerateResponse, error) {
	if s.cfg.AIServiceURL == "" {
		return nil, errors.New("AI service is not configured")
	}

	body, err := json.Marshal(genReq)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.AIServiceURL+"/generate", bytes.NewReader(body))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.AIServiceToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.AIServiceToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info("AI service returned non-200 status")
		return nil, errors.New("AI service returned non-200 status")
	}

	var genResp transfer.AIGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode AI response: %w", err)
	}

	return &genResp, nil
}
