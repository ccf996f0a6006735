package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ImageSavedPayload notifies the recognizer that an image slot was persisted
// so it can compute and store the embedding for that exact slot. ImageIndex
// correctness is a strict contract — mis-tagging breaks backend-side
// correspondence between slots and vectors.
type ImageSavedPayload struct {
	Event      string `json:"event"` // always "image_saved"
	ImageURL   string `json:"image_url"`
	ItemID     string `json:"item_id"`
	ShopID     string `json:"shop_id"`
	CategoryID string `json:"category_id"`
	ImageIndex int    `json:"image_index"`
	Timestamp  int64  `json:"timestamp"`
}

// VectorizeResponse is returned by the recognizer after embedding an image.
type VectorizeResponse struct {
	Status          string `json:"status"`
	EmbeddingLength int    `json:"embedding_length"`
}

// ItemEmbedPayload is the flattened item snapshot sent after an edit-save of
// a fully captured, fully priced item. Best-effort; response is logged only.
type ItemEmbedPayload struct {
	ShopID       string             `json:"shopId"`
	ItemName     string             `json:"itemName"`
	CategoryPath string             `json:"categoryPath"`
	BuyingPrice  decimal.Decimal    `json:"buyingPrice"`
	SellingPrice decimal.Decimal    `json:"sellingPrice"`
	Images       []string           `json:"images"`
	TextVector   []float64          `json:"textVector"`
	ImageVectors map[string][]float64 `json:"imageVectors"`
	UpdatedAt    string             `json:"updatedAt"`
}

// ScanMatchResult is the recognizer's best visual match for a frame within
// one shop. Score is cosine similarity; the confidence threshold lives on the
// recognizer side, so a non-nil match is always presentable.
type ScanMatchResult struct {
	ItemID     string  `json:"item_id"`
	CategoryID string  `json:"category_id"`
	Name       string  `json:"name"`
	Score      float64 `json:"score"`
	Thumbnail  string  `json:"thumbnail"`
	SellPrice  float64 `json:"sellPrice"`
}

type scanEnvelope struct {
	Match *ScanMatchResult `json:"match"`
}

// RecognizerClient talks to the embedding/recognition sidecar. All visual
// intelligence is delegated there; this client only moves JSON. Every call
// passes through a circuit breaker so a downed sidecar fast-fails instead of
// eating the full HTTP timeout per request.
type RecognizerClient struct {
	baseURL    string
	httpClient *http.Client
	cb         *CircuitBreaker
}

func NewRecognizerClient(baseURL string) *RecognizerClient {
	return &RecognizerClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cb:         NewCircuitBreaker(DefaultCBConfig()),
	}
}

// BreakerState exposes the breaker position for the health endpoint.
func (c *RecognizerClient) BreakerState() string { return c.cb.State().String() }

func (c *RecognizerClient) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	return c.cb.Execute(func() error {
		return c.doPost(ctx, path, payload, out)
	})
}

func (c *RecognizerClient) doPost(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("recognizer: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("recognizer: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("recognizer: unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("recognizer: %s returned %d", path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("recognizer: decode response: %w", err)
	}
	return nil
}

// Scan sends one base64 frame and the shop identity; a nil result means the
// recognizer found no match above its threshold in this shop.
func (c *RecognizerClient) Scan(ctx context.Context, shopID, frame string) (*ScanMatchResult, error) {
	// Camera frames arrive as data URLs; the recognizer accepts both forms,
	// but strip the prefix here so the payload stays small and uniform.
	if i := strings.IndexByte(frame, ','); i >= 0 && strings.HasPrefix(frame, "data:image") {
		frame = frame[i+1:]
	}

	var env scanEnvelope
	err := c.post(ctx, "/sales", map[string]string{"shop_id": shopID, "frame": frame}, &env)
	if err != nil {
		return nil, err
	}
	return env.Match, nil
}

// VectorizeItem asks the recognizer to embed one persisted image slot.
func (c *RecognizerClient) VectorizeItem(ctx context.Context, payload ImageSavedPayload) (*VectorizeResponse, error) {
	var out VectorizeResponse
	if err := c.post(ctx, "/vectorize-item", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EmbedItem pushes the flattened item snapshot to the item-embedder hook.
func (c *RecognizerClient) EmbedItem(ctx context.Context, payload ItemEmbedPayload) error {
	return c.post(ctx, "/itemEmbeder", payload, nil)
}
