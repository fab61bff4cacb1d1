package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shadowlurkers-backend/internal/domain"
	"shadowlurkers-backend/internal/logger"
	"shadowlurkers-backend/internal/repository"
)

// assistantService relays free text and /forge prompts to an external
// text-generation API. It holds no conversation state; each call is a single
// request/response pass-through.
type assistantService struct {
	settingRepo repository.ChatSettingRepository
	baseURL     string
	apiKey      string
	model       string
	client      *http.Client
}

func NewAssistantService(settingRepo repository.ChatSettingRepository, baseURL, apiKey, model string) AssistantService {
	return &assistantService{
		settingRepo: settingRepo,
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *assistantService) SetEnabled(ctx context.Context, chatID int64, enabled bool, actor domain.Actor) error {
	return s.settingRepo.Upsert(ctx, &domain.ChatSetting{
		ChatID:           chatID,
		AssistantEnabled: enabled,
		EnabledBy:        actor.ID,
	})
}

// Enabled defaults to off for chats that never toggled the assistant.
func (s *assistantService) Enabled(ctx context.Context, chatID int64) (bool, error) {
	setting, err := s.settingRepo.Get(ctx, chatID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return setting.AssistantEnabled, nil
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

func (s *assistantService) Ask(ctx context.Context, prompt string) (string, error) {
	return s.generate(ctx, prompt)
}

// Forge prefixes a code-generation instruction; otherwise the same passthrough.
func (s *assistantService) Forge(ctx context.Context, prompt string) (string, error) {
	return s.generate(ctx, "Write code for the following request. Reply with code only.\n\n"+prompt)
}

func (s *assistantService) generate(ctx context.Context, prompt string) (string, error) {
	if s.baseURL == "" {
		return "", fmt.Errorf("oracle not configured: %w", domain.ErrUpstream)
	}

	payload, err := json.Marshal(generateRequest{Model: s.model, Prompt: prompt})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/generate", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	logger.ExternalServiceCall("oracle", "generate", "model", s.model)
	resp, err := s.client.Do(req)
	if err != nil {
		logger.ExternalServiceResult("oracle", "generate", err)
		return "", fmt.Errorf("oracle call failed: %w", domain.ErrUpstream)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		err := fmt.Errorf("oracle returned status %d: %w", resp.StatusCode, domain.ErrUpstream)
		logger.ExternalServiceResult("oracle", "generate", err)
		return "", err
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("oracle response unreadable: %w", domain.ErrUpstream)
	}
	if out.Error != "" {
		return "", fmt.Errorf("oracle error %q: %w", out.Error, domain.ErrUpstream)
	}
	logger.ExternalServiceResult("oracle", "generate", nil)
	return strings.TrimSpace(out.Text), nil
}
