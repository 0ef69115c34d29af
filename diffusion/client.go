package diffusion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client defines the interface to the diffusion backend.
//
// Implementations handle the wire protocol; the Pipeline above them owns
// device selection and adapter handling.
type Client interface {
	// Txt2Img renders images from a text prompt. The response carries
	// base64-encoded image data.
	Txt2Img(ctx context.Context, request Txt2ImgRequest) (*Txt2ImgResponse, error)

	// DeviceInfo reports the compute device the backend runs on.
	DeviceInfo(ctx context.Context) (*DeviceInfo, error)

	// Adapters lists the style adapters available on the backend.
	Adapters(ctx context.Context) ([]AdapterInfo, error)
}

// Txt2ImgRequest is the JSON body for a txt2img call.
type Txt2ImgRequest struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt,omitempty"`
	Steps          int     `json:"steps"`
	CFGScale       float64 `json:"cfg_scale"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
}

// Txt2ImgResponse is the JSON response from a txt2img call.
type Txt2ImgResponse struct {
	Images []string `json:"images"`
}

// HTTPClient is the Client implementation speaking the txt2img HTTP API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check.
var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient for the backend at baseURL. No
// request timeout is set; callers impose deadlines via context.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// Txt2Img posts a generation request and returns the response envelope.
func (c *HTTPClient) Txt2Img(ctx context.Context, request Txt2ImgRequest) (*Txt2ImgResponse, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to encode txt2img request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sdapi/v1/txt2img", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("txt2img request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("txt2img returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out Txt2ImgResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode txt2img response: %w", err)
	}
	return &out, nil
}

// DeviceInfo queries the backend's compute device.
func (c *HTTPClient) DeviceInfo(ctx context.Context) (*DeviceInfo, error) {
	var out DeviceInfo
	if err := c.getJSON(ctx, "/sdapi/v1/device", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Adapters lists the style adapters the backend has available.
func (c *HTTPClient) Adapters(ctx context.Context) ([]AdapterInfo, error) {
	var out []AdapterInfo
	if err := c.getJSON(ctx, "/sdapi/v1/loras", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// NullClient is a Client that always fails. Useful as a default when the
// backend is not configured and in tests.
type NullClient struct{}

var _ Client = (*NullClient)(nil)

func (*NullClient) Txt2Img(ctx context.Context, request Txt2ImgRequest) (*Txt2ImgResponse, error) {
	return nil, fmt.Errorf("%w: no diffusion backend configured", ErrGenerationFailed)
}

func (*NullClient) DeviceInfo(ctx context.Context) (*DeviceInfo, error) {
	return nil, fmt.Errorf("%w: no diffusion backend configured", ErrPipelineInit)
}

func (*NullClient) Adapters(ctx context.Context) ([]AdapterInfo, error) {
	return nil, fmt.Errorf("no diffusion backend configured")
}
