package detect

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sipsense/go-sipsense/internal/httpc"
	"github.com/sipsense/go-sipsense/pkg/geometry"
)

// RemoteConfig holds configuration for a hosted inference backend.
// The endpoint follows the Roboflow hosted-detection convention: the JPEG
// is posted base64-encoded and predictions come back with center-form
// pixel boxes.
type RemoteConfig struct {
	Endpoint string // Full model endpoint URL
	APIKey   string
}

// RemoteDetector runs object detection against a hosted inference service.
// It satisfies ObjectDetector so the pipeline cannot tell it apart from
// the local YOLO backend.
type RemoteDetector struct {
	config RemoteConfig
	client *http.Client
}

// NewRemote creates a detector backed by a hosted inference service.
func NewRemote(cfg RemoteConfig) (*RemoteDetector, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("remote detector requires an endpoint")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("remote detector requires an API key")
	}

	return &RemoteDetector{
		config: cfg,
		client: httpc.Client,
	}, nil
}

// remotePrediction is one detection in the service response.
type remotePrediction struct {
	X          float64 `json:"x"` // Center x, pixels
	Y          float64 `json:"y"` // Center y, pixels
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

// remoteResponse is the hosted inference response envelope.
type remoteResponse struct {
	Predictions []remotePrediction `json:"predictions"`
}

// DetectObjects posts the JPEG to the inference service and parses the
// returned predictions.
func (d *RemoteDetector) DetectObjects(jpeg []byte) ([]Object, error) {
	endpoint := d.config.Endpoint
	if u, err := url.Parse(endpoint); err == nil {
		q := u.Query()
		q.Set("api_key", d.config.APIKey)
		u.RawQuery = q.Encode()
		endpoint = u.String()
	}

	body := base64.StdEncoding.EncodeToString(jpeg)
	resp, err := d.client.Post(endpoint, "application/x-www-form-urlencoded", strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("inference request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("inference service returned %d: %s", resp.StatusCode, string(data))
	}

	var parsed remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode inference response: %w", err)
	}

	var detections []Object
	for _, p := range parsed.Predictions {
		detections = append(detections, Object{
			Box: geometry.Box{
				X: p.X,
				Y: p.Y,
				W: p.Width,
				H: p.Height,
			},
			Confidence: p.Confidence,
			ClassID:    -1, // Hosted models carry their own taxonomy
			ClassName:  p.Class,
		})
	}

	return detections, nil
}

// Close is a no-op for the remote backend.
func (d *RemoteDetector) Close() error {
	return nil
}
