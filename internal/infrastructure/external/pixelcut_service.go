package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"tryon-web/internal/domain/entities"
	"tryon-web/model"
)

const apiKeyHeader = "X-API-KEY"

// PixelcutService calls the Pixelcut try-on endpoint. The API key lives
// only in the server configuration.
type PixelcutService struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewPixelcutService builds the client; a zero timeout leaves the call unbounded.
func NewPixelcutService(endpoint, apiKey string, timeout time.Duration, logger *zap.Logger) *PixelcutService {
	return &PixelcutService{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (s *PixelcutService) GenerateTryOn(ctx context.Context, request *entities.TryOnRequest) (*entities.TryOnResult, error) {
	if !request.HasReferences() {
		return nil, fmt.Errorf("image references are not resolved")
	}

	reqBody, err := json.Marshal(model.PixelcutTryOnRequest{
		PersonImageURL:  request.PersonImageRef(),
		GarmentImageURL: request.GarmentImageRef(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	s.logger.Debug("pixelcut request",
		zap.String("endpoint", s.endpoint),
		zap.String("request_id", string(request.ID())),
		zap.Int("person_ref_len", len(request.PersonImageRef())),
		zap.Int("garment_ref_len", len(request.GarmentImageRef())),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(apiKeyHeader, s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, truncate(respBody, 512))
	}

	fields, err := parseObject(respBody)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return entities.NewTryOnResult(request.ID(), fields), nil
}

func (s *PixelcutService) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}

// parseObject decodes a JSON object keeping numbers as json.Number so
// pass-through fields render exactly as received.
func parseObject(data []byte) (map[string]any, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var fields map[string]any
	if err := decoder.Decode(&fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, fmt.Errorf("response is not a JSON object")
	}
	return fields, nil
}

func truncate(body []byte, limit int) string {
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit]) + "..."
}
