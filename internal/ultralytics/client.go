package ultralytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Fixed inference parameters understood by the hosted endpoint.
const (
	ImageSize     = 640
	ConfThreshold = 0.25
	IouThreshold  = 0.45

	requestTimeout = 60 * time.Second
)

// Client calls the hosted Ultralytics detection endpoint. It is safe for
// concurrent use; each Predict call is a single attempt with no retry.
type Client struct {
	apiURL   string
	modelURL string
	apiKey   string
	http     *resty.Client
	logger   *zap.Logger
}

// NewClient builds a client for the given endpoint and model.
func NewClient(apiURL, modelURL, apiKey string, logger *zap.Logger) *Client {
	return &Client{
		apiURL:   apiURL,
		modelURL: modelURL,
		apiKey:   apiKey,
		http:     resty.New().SetTimeout(requestTimeout),
		logger:   logger.Named("ultralytics_client"),
	}
}

// Predict uploads the image and returns the parsed detection response.
// A missing credential fails before any network activity.
func (c *Client) Predict(ctx context.Context, imageBytes []byte) (*InferenceResult, error) {
	if c.apiKey == "" {
		return nil, &ConfigError{Err: ErrMissingAPIKey}
	}

	// Declare the true content type of the upload instead of assuming JPEG,
	// so PNG uploads are not mislabeled on the wire.
	mtype := mimetype.Detect(imageBytes)
	fileName := "upload" + mtype.Extension()

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("x-api-key", c.apiKey).
		SetFormData(map[string]string{
			"model": c.modelURL,
			"imgsz": strconv.Itoa(ImageSize),
			"conf":  fmt.Sprintf("%g", ConfThreshold),
			"iou":   fmt.Sprintf("%g", IouThreshold),
		}).
		SetMultipartField("file", fileName, mtype.String(), bytes.NewReader(imageBytes)).
		Post(c.apiURL)
	if err != nil {
		c.logger.Error("inference request failed", zap.Error(err))
		return nil, &TransportError{Err: err}
	}

	if resp.IsError() {
		c.logger.Error("inference service error",
			zap.Int("status", resp.StatusCode()),
			zap.String("body", resp.String()))
		return nil, &APIError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	body := resp.Body()
	result := &InferenceResult{Raw: append([]byte(nil), body...)}
	if err := json.Unmarshal(body, result); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("decode response: %w", err)}
	}

	c.logger.Info("inference completed",
		zap.Int("status", resp.StatusCode()),
		zap.Int("image_groups", len(result.Images)),
		zap.String("content_type", mtype.String()))
	return result, nil
}
