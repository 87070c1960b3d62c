package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-summarizer/errors"
	"github.com/johnquangdev/meeting-summarizer/internal/domain/entities"
	"github.com/johnquangdev/meeting-summarizer/pkg/config"
)

// Client is a minimal HTTP client for the meeting-summarizer job API.
// Timeouts are generous because the backend performs slow transcription and
// summarization work inline on some endpoints.
type Client struct {
	baseURL     string
	client      *http.Client
	audioClient *http.Client
	logger      *zap.Logger
}

// NewClient creates a job API client using the provided config.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:     cfg.API.BaseURL,
		client:      &http.Client{Timeout: cfg.API.RequestTimeout},
		audioClient: &http.Client{Timeout: cfg.API.AudioUploadTimeout},
		logger:      logger,
	}
}

// fallbackLanguages keeps the language picker usable when the languages
// endpoint is down. Auto-detect must stay first.
var fallbackLanguages = []entities.Language{
	{Code: "auto", Name: "Auto-detect"},
	{Code: "en", Name: "English"},
	{Code: "hi", Name: "Hindi"},
	{Code: "es", Name: "Spanish"},
	{Code: "fr", Name: "French"},
	{Code: "de", Name: "German"},
	{Code: "zh", Name: "Chinese"},
	{Code: "ja", Name: "Japanese"},
	{Code: "ru", Name: "Russian"},
	{Code: "ar", Name: "Arabic"},
}

// GetLanguages fetches the supported languages. It never fails: on any
// error it returns the hard-coded fallback list instead.
func (c *Client) GetLanguages(ctx context.Context) []entities.Language {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/languages", nil)
	if err != nil {
		return fallbackLanguages
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("failed to fetch languages, using fallback list", zap.Error(err))
		return fallbackLanguages
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		c.logger.Warn("languages endpoint returned error, using fallback list",
			zap.Int("status", resp.StatusCode))
		return fallbackLanguages
	}

	var langs []entities.Language
	if err := json.NewDecoder(resp.Body).Decode(&langs); err != nil || len(langs) == 0 {
		return fallbackLanguages
	}
	return langs
}

// UploadAudioResponse is the upload-audio envelope.
type UploadAudioResponse struct {
	JobID string `json:"job_id"`
}

// UploadAudio uploads an audio file as multipart form data and returns the
// issued job id. The language field is omitted entirely for the "auto"
// sentinel; the long-recording flag is always sent.
func (c *Client) UploadAudio(ctx context.Context, path, language string, isLongRecording bool) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writeFilePart(writer, "file", path); err != nil {
		return "", err
	}
	if language != "" && language != entities.LanguageAuto {
		if err := writer.WriteField("language", language); err != nil {
			return "", apperrors.ErrInternal(err)
		}
	}
	if err := writer.WriteField("is_long_recording", strconv.FormatBool(isLongRecording)); err != nil {
		return "", apperrors.ErrInternal(err)
	}
	if err := writer.Close(); err != nil {
		return "", apperrors.ErrInternal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload-audio", &body)
	if err != nil {
		return "", apperrors.ErrInternal(err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c.logger.Info("uploading audio",
		zap.String("file", filepath.Base(path)),
		zap.String("language", language),
		zap.Bool("is_long_recording", isLongRecording))

	resp, err := c.audioClient.Do(req)
	if err != nil {
		return "", apperrors.ErrNetwork(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", serverError(resp)
	}

	var out UploadAudioResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", apperrors.ErrPayload(err)
	}
	return out.JobID, nil
}

// UploadTextResponse is the upload-text envelope.
type UploadTextResponse struct {
	Transcript   string   `json:"transcript"`
	Participants []string `json:"participants,omitempty"`
}

// UploadText uploads a transcript text file as multipart form data.
func (c *Client) UploadText(ctx context.Context, path string) (*UploadTextResponse, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writeFilePart(writer, "file", path); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, apperrors.ErrInternal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload-text", &body)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.ErrNetwork(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, serverError(resp)
	}

	var out UploadTextResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, apperrors.ErrPayload(err)
	}
	return &out, nil
}

// extractParticipantsRequest is the payload for /api/extract-participants.
type extractParticipantsRequest struct {
	Transcript   string   `json:"transcript"`
	Participants []string `json:"participants"`
	Language     *string  `json:"language"`
}

// ExtractParticipants asks the backend to detect participant names in a
// transcript. Used only when the user supplied no participants.
func (c *Client) ExtractParticipants(ctx context.Context, transcript string, participants []string, language string) ([]string, error) {
	payload := extractParticipantsRequest{
		Transcript:   transcript,
		Participants: participants,
		Language:     wireLanguage(language),
	}

	var names []string
	if err := c.postJSON(ctx, "/api/extract-participants", payload, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// summarizeRequest is the payload for /api/summarize.
type summarizeRequest struct {
	Transcript        string   `json:"transcript"`
	Participants      []string `json:"participants"`
	Language          *string  `json:"language"`
	IsLongRecording   bool     `json:"is_long_recording"`
	AdditionalContext string   `json:"additional_context,omitempty"`
}

// SummarizeResponse carries either a job id to poll or an immediate result.
type SummarizeResponse struct {
	JobID  string
	Result *entities.RawResult
}

// GenerateSummary requests a summary for a transcript. Participants must
// already be normalized to a list; the "auto" language sentinel is
// translated to null before transmission.
func (c *Client) GenerateSummary(ctx context.Context, transcript string, participants []string, language string, isLongRecording bool, additionalContext string) (*SummarizeResponse, error) {
	payload := summarizeRequest{
		Transcript:        transcript,
		Participants:      participants,
		Language:          wireLanguage(language),
		IsLongRecording:   isLongRecording,
		AdditionalContext: additionalContext,
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/summarize", bytes.NewReader(b))
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.ErrNetwork(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, serverError(resp)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.ErrPayload(err)
	}

	// The backend answers with {job_id} when it queued a job, or with the
	// finished RawResult when it summarized inline.
	var envelope struct {
		JobID string `json:"job_id"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, apperrors.ErrPayload(err)
	}
	if envelope.JobID != "" {
		return &SummarizeResponse{JobID: envelope.JobID}, nil
	}

	var result entities.RawResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, apperrors.ErrPayload(err)
	}
	return &SummarizeResponse{Result: &result}, nil
}

// CheckJobStatus polls one job. An empty job id is a synchronous validation
// error; no request is attempted.
func (c *Client) CheckJobStatus(ctx context.Context, jobID string) (*entities.JobStatusResponse, error) {
	if jobID == "" {
		return nil, apperrors.ErrMissingJobID()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/job/"+jobID, nil)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.ErrNetwork(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, serverError(resp)
	}

	var status entities.JobStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, apperrors.ErrPayload(err)
	}
	return &status, nil
}

// CheckHealth probes the backend. Best effort: failures are reported to the
// caller but never block interaction.
func (c *Client) CheckHealth(ctx context.Context) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.ErrBackendUnreachable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, apperrors.ErrBackendUnreachable(fmt.Errorf("health endpoint returned status %d", resp.StatusCode))
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		// An opaque but 2xx body still counts as healthy.
		return map[string]interface{}{}, nil
	}
	return payload, nil
}

// postJSON posts payload and decodes the JSON response into out.
func (c *Client) postJSON(ctx context.Context, endpoint string, payload, out interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return apperrors.ErrInternal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(b))
	if err != nil {
		return apperrors.ErrInternal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return apperrors.ErrNetwork(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return serverError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.ErrPayload(err)
	}
	return nil
}

// serverError maps a non-2xx response to an AppError, surfacing the
// backend's structured detail message verbatim when one exists.
func serverError(resp *http.Response) error {
	if resp.StatusCode == http.StatusRequestEntityTooLarge {
		return apperrors.ErrFileTooLarge()
	}

	var detail struct {
		Detail string `json:"detail"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&detail)
	return apperrors.ErrServer(resp.StatusCode, detail.Detail)
}

// wireLanguage translates the client-only "auto" sentinel to null.
func wireLanguage(language string) *string {
	if language == "" || language == entities.LanguageAuto {
		return nil
	}
	return &language
}

func writeFilePart(writer *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return apperrors.ErrInvalidArgument(fmt.Sprintf("cannot open file: %v", err))
	}
	defer f.Close()

	part, err := writer.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return apperrors.ErrInternal(err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return apperrors.ErrInternal(err)
	}
	return nil
}
