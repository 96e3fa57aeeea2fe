package external

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"cloud.google.com/go/auth"
	"cloud.google.com/go/auth/oauth2adapt"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/genai"

	"tryon-web/internal/domain/entities"
	"tryon-web/internal/domain/valueobjects"
	"tryon-web/model"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// VertexAIService calls the Vertex AI virtual try-on model, either over
// the REST :predict endpoint or through the genai SDK. Both send the raw
// image bytes and turn the first generated image into a data URL
// result_url.
type VertexAIService struct {
	projectID   string
	location    string
	vtoModel    string
	baseURL     string
	tokenSource oauth2.TokenSource
	httpClient  *http.Client
	genAIClient *genai.Client
	useSDK      bool
	timeout     time.Duration
	logger      *zap.Logger
}

func NewVertexAIService(ctx context.Context, projectID, location, vtoModel string, useSDK bool, timeout time.Duration, logger *zap.Logger) (*VertexAIService, error) {
	creds, err := google.FindDefaultCredentials(ctx, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("failed to find default credentials: %w", err)
	}

	baseURL := fmt.Sprintf("https://%s-aiplatform.googleapis.com", location)
	return newVertexAIService(ctx, projectID, location, vtoModel, baseURL, creds.TokenSource, useSDK, timeout, logger)
}

func newVertexAIService(
	ctx context.Context,
	projectID, location, vtoModel, baseURL string,
	tokenSource oauth2.TokenSource,
	useSDK bool,
	timeout time.Duration,
	logger *zap.Logger,
) (*VertexAIService, error) {
	tokenSource = oauth2.ReuseTokenSource(nil, tokenSource)

	s := &VertexAIService{
		projectID:   projectID,
		location:    location,
		vtoModel:    vtoModel,
		baseURL:     baseURL,
		tokenSource: tokenSource,
		httpClient:  &http.Client{Timeout: timeout},
		useSDK:      useSDK,
		timeout:     timeout,
		logger:      logger,
	}

	if useSDK {
		client, err := newGenAIClient(ctx, projectID, location, baseURL, tokenSource)
		if err != nil {
			return nil, err
		}
		s.genAIClient = client
	}

	return s, nil
}

// newGenAIClient builds a Vertex-backed genai client that authenticates
// with the same token source as the REST path.
func newGenAIClient(ctx context.Context, projectID, location, baseURL string, tokenSource oauth2.TokenSource) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend:  genai.BackendVertexAI,
		Project:  projectID,
		Location: location,
		Credentials: auth.NewCredentials(&auth.CredentialsOptions{
			TokenProvider: oauth2adapt.TokenProviderFromTokenSource(tokenSource),
		}),
		HTTPClient:  oauth2.NewClient(ctx, tokenSource),
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL + "/"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return client, nil
}

func (s *VertexAIService) GenerateTryOn(ctx context.Context, request *entities.TryOnRequest) (*entities.TryOnResult, error) {
	if s.useSDK {
		return s.generateWithSDK(ctx, request)
	}
	return s.generateWithREST(ctx, request)
}

func (s *VertexAIService) generateWithSDK(ctx context.Context, request *entities.TryOnRequest) (*entities.TryOnResult, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.logger.Debug("vertex sdk request",
		zap.String("model", s.vtoModel),
		zap.String("request_id", string(request.ID())),
	)

	source := &genai.RecontextImageSource{
		PersonImage: &genai.Image{
			ImageBytes: request.PersonImage().Data(),
			MIMEType:   request.PersonImage().MimeType(),
		},
		ProductImages: []*genai.ProductImage{
			{
				ProductImage: &genai.Image{
					ImageBytes: request.GarmentImage().Data(),
					MIMEType:   request.GarmentImage().MimeType(),
				},
			},
		},
	}

	response, err := s.genAIClient.Models.RecontextImage(ctx, s.vtoModel, source, &genai.RecontextImageConfig{
		NumberOfImages: genai.Ptr[int32](1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to recontext image: %w", err)
	}

	for _, generated := range response.GeneratedImages {
		if generated == nil || generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
			continue
		}
		return s.buildResult(request, generated.Image.ImageBytes, generated.Image.MIMEType, len(response.GeneratedImages))
	}

	return nil, fmt.Errorf("no image found in response")
}

func (s *VertexAIService) generateWithREST(ctx context.Context, request *entities.TryOnRequest) (*entities.TryOnResult, error) {
	token, err := s.tokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	apiRequest := map[string]interface{}{
		"instances": []map[string]interface{}{
			{
				"personImage": map[string]interface{}{
					"image": map[string]interface{}{
						"bytesBase64Encoded": request.PersonImage().ToBase64(),
					},
				},
				"productImages": []map[string]interface{}{
					{
						"image": map[string]interface{}{
							"bytesBase64Encoded": request.GarmentImage().ToBase64(),
						},
					},
				},
			},
		},
		"parameters": map[string]interface{}{
			"sampleCount": 1,
		},
	}

	reqBody, err := json.Marshal(apiRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/projects/%s/locations/%s/publishers/google/models/%s:predict",
		s.baseURL, s.projectID, s.location, s.vtoModel)

	s.logger.Debug("vertex request",
		zap.String("url", url),
		zap.String("request_id", string(request.ID())),
		zap.Int("person_bytes", request.PersonImage().Size()),
		zap.Int("garment_bytes", request.GarmentImage().Size()),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, truncate(respBody, 512))
	}

	var predResp model.VirtualTryOnResponse
	if err := json.Unmarshal(respBody, &predResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	prediction, ok := predResp.FirstImage()
	if !ok {
		return nil, fmt.Errorf("no image found in response")
	}

	imageBytes, err := base64.StdEncoding.DecodeString(prediction.BytesBase64Encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode prediction: %w", err)
	}

	return s.buildResult(request, imageBytes, prediction.MimeType, len(predResp.Predictions))
}

func (s *VertexAIService) buildResult(request *entities.TryOnRequest, imageBytes []byte, mimeType string, predictions int) (*entities.TryOnResult, error) {
	output, err := valueobjects.NewImagePayload(imageBytes, mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to create image payload: %w", err)
	}

	fields := map[string]any{
		entities.ResultURLField: output.DataURL(),
		"mime_type":             output.MimeType(),
		"predictions":           predictions,
		"model":                 s.vtoModel,
	}

	return entities.NewTryOnResult(request.ID(), fields), nil
}

func (s *VertexAIService) Close() error {
	s.httpClient.CloseIdleConnections()
	// genai clients hold no resources of their own.
	s.genAIClient = nil
	return nil
}
