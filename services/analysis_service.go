package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mealsnap/models"
	"mealsnap/utils"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const defaultConfidence = "medium"

// LabelDetector suggests what is in a picture. Its labels are forwarded to the
// webhook as hints.
type LabelDetector interface {
	DetectLabels(ctx context.Context, image []byte) ([]string, error)
}

type AnalysisResult struct {
	MealType   models.MealType   `json:"meal_type"`
	Foods      []models.FoodItem `json:"foods"`
	Totals     models.Totals     `json:"totals"`
	Confidence string            `json:"confidence"`
	Notes      string            `json:"notes,omitempty"`
}

type AnalysisService struct {
	webhookURL string
	client     *http.Client
	labels     LabelDetector
	clock      utils.Clock
	log        *zap.Logger
}

// NewAnalysisService builds the webhook client. labels may be nil.
func NewAnalysisService(webhookURL string, timeout time.Duration, labels LabelDetector, clock utils.Clock, log *zap.Logger) *AnalysisService {
	return &AnalysisService{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: timeout},
		labels:     labels,
		clock:      clock,
		log:        log.Named("analysis"),
	}
}

type analysisRequest struct {
	Image     string   `json:"image"`
	MealType  string   `json:"mealType"`
	Timestamp string   `json:"timestamp"`
	Hints     []string `json:"hints,omitempty"`
}

// Analyze sends the photo to the estimation webhook and normalizes the reply.
// Transport failures and non-2xx replies wrap ErrAnalysisFailed.
func (s *AnalysisService) Analyze(ctx context.Context, imageBase64 string, mealType models.MealType) (*AnalysisResult, error) {
	if imageBase64 == "" {
		return nil, fmt.Errorf("%w: image is required", ErrInvalidMeal)
	}
	if !mealType.Valid() {
		return nil, fmt.Errorf("%w: unknown meal type %q", ErrInvalidMeal, mealType)
	}

	payload := analysisRequest{
		Image:     imageBase64,
		MealType:  string(mealType),
		Timestamp: s.clock.Now().UTC().Format(time.RFC3339),
		Hints:     s.hints(ctx, imageBase64),
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrAnalysisFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.log.Warn("analysis webhook error", zap.Int("status", resp.StatusCode), zap.ByteString("body", truncate(body, 200)))
		return nil, fmt.Errorf("%w: %s", ErrAnalysisFailed, http.StatusText(resp.StatusCode))
	}

	var raw any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: response is not JSON", ErrAnalysisFailed)
	}

	res := NormalizeAnalysis(raw)
	res.MealType = mealType
	s.log.Info("meal analysed",
		zap.String("meal_type", string(mealType)),
		zap.Int("foods", len(res.Foods)),
		zap.Float64("calories", res.Totals.Calories))
	return res, nil
}

func (s *AnalysisService) hints(ctx context.Context, imageBase64 string) []string {
	if s.labels == nil {
		return nil
	}
	img, err := DecodeImage(imageBase64)
	if err != nil {
		s.log.Debug("skipping label hints", zap.Error(err))
		return nil
	}
	labels, err := s.labels.DetectLabels(ctx, img)
	if err != nil {
		s.log.Warn("label detection failed", zap.Error(err))
		return nil
	}
	return labels
}

// envelopeStrategies locate the payload object inside the webhook reply, in
// priority order. The bare reply is the last resort.
var envelopeStrategies = []func(map[string]any) (map[string]any, bool){
	fieldObject("output"),
	fieldObject("data"),
	func(m map[string]any) (map[string]any, bool) { return m, true },
}

// foodListKeys are tried in order; the first key holding a list wins.
var foodListKeys = []string{"food", "foods", "detectedFoods"}

// NormalizeAnalysis turns any accepted reply shape into an AnalysisResult.
// Totals are always recomputed from the food list.
func NormalizeAnalysis(raw any) *AnalysisResult {
	if list, ok := raw.([]any); ok && len(list) > 0 {
		raw = list[0]
	}
	root, _ := raw.(map[string]any)
	if root == nil {
		root = map[string]any{}
	}

	var payload map[string]any
	for _, extract := range envelopeStrategies {
		if p, ok := extract(root); ok {
			payload = p
			break
		}
	}

	foods := []models.FoodItem{}
	for _, key := range foodListKeys {
		items, ok := payload[key].([]any)
		if !ok {
			continue
		}
		for _, it := range items {
			if f, ok := parseFoodItem(it); ok {
				foods = append(foods, f)
			}
		}
		break
	}

	confidence := asString(payload["confidence"])
	if confidence == "" {
		confidence = defaultConfidence
	}
	return &AnalysisResult{
		Foods:      foods,
		Totals:     models.SumFoods(foods),
		Confidence: confidence,
		Notes:      asString(payload["notes"]),
	}
}

// fieldObject selects m[key] whenever it holds a non-empty value. A JSON
// document inside a string is unpacked; any other value yields an empty
// payload instead of falling through to the next strategy.
func fieldObject(key string) func(map[string]any) (map[string]any, bool) {
	return func(m map[string]any) (map[string]any, bool) {
		switch v := m[key].(type) {
		case nil:
			return nil, false
		case map[string]any:
			return v, true
		case string:
			if v == "" {
				return nil, false
			}
			// agents sometimes return the JSON document as a string
			var inner map[string]any
			dec := json.NewDecoder(strings.NewReader(v))
			dec.UseNumber()
			if err := dec.Decode(&inner); err == nil && inner != nil {
				return inner, true
			}
			return map[string]any{}, true
		case bool:
			if !v {
				return nil, false
			}
		case json.Number:
			if f, err := v.Float64(); err == nil && f == 0 {
				return nil, false
			}
		}
		return map[string]any{}, true
	}
}

// rawFoodItem accepts the field aliases seen in webhook replies. Text fields
// are weakly typed so numeric names or quantities still come through.
type rawFoodItem struct {
	Name     string `mapstructure:"name"`
	Item     string `mapstructure:"item"`
	Quantity string `mapstructure:"quantity"`
	Portion  string `mapstructure:"portion"`
	Calories any    `mapstructure:"calories"`
	Protein  any    `mapstructure:"protein"`
	Carbs    any    `mapstructure:"carbs"`
	Fat      any    `mapstructure:"fat"`
}

func parseFoodItem(v any) (models.FoodItem, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return models.FoodItem{}, false
	}
	var raw rawFoodItem
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &raw,
	})
	if err != nil {
		return models.FoodItem{}, false
	}
	// fields that fail to decode stay empty; the rest is kept
	_ = dec.Decode(m)

	name := strings.TrimSpace(raw.Name)
	if name == "" {
		name = strings.TrimSpace(raw.Item)
	}
	quantity := strings.TrimSpace(raw.Quantity)
	if quantity == "" {
		quantity = strings.TrimSpace(raw.Portion)
	}
	return models.FoodItem{
		Name:     name,
		Quantity: quantity,
		Calories: nonNegative(raw.Calories),
		Protein:  nonNegative(raw.Protein),
		Carbs:    nonNegative(raw.Carbs),
		Fat:      nonNegative(raw.Fat),
	}, true
}

func nonNegative(v any) float64 {
	var f float64
	switch n := v.(type) {
	case json.Number:
		f, _ = n.Float64()
	case float64:
		f = n
	case int:
		f = float64(n)
	case string:
		f, _ = strconv.ParseFloat(strings.TrimSpace(n), 64)
	}
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	}
	return ""
}

// DecodeImage accepts raw base64 or a data URI.
func DecodeImage(imageBase64 string) ([]byte, error) {
	data := imageBase64
	if strings.HasPrefix(data, "data:") {
		i := strings.Index(data, ",")
		if i < 0 {
			return nil, fmt.Errorf("invalid data URI")
		}
		data = data[i+1:]
	}
	return base64.StdEncoding.DecodeString(data)
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
