package detection

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapPredictions(t *testing.T) {
	preds := []Prediction{
		{Class: "Banana", Score: 0.91},
		{Class: "person", Score: 0.99},
		{Class: "pizza", Score: 0.8},
		{Class: "cake", Score: 0.7},
		{Class: "carrot", Score: 0.5},
		{Class: "mixed nuts", Score: 0.66},
		{Class: "laptop", Score: 0.95},
	}

	got := MapPredictions(preds, 0.5)
	assert.Equal(t, []Ingredient{
		{Name: "banana", Confidence: 91, Label: "banana"},
		{Name: "flour", Confidence: 80, Label: "pizza"},
		{Name: "mixed nuts", Confidence: 66, Label: "mixed nuts"},
	}, got)
	assert.Equal(t, []string{"banana", "flour", "mixed nuts"}, Names(got))

	assert.Empty(t, MapPredictions(nil, 0.5))
}

func pngDataURI(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 7 {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func newDetectionConfig(endpoint string) config.DetectionConfig {
	return config.DetectionConfig{
		Endpoint:            endpoint,
		Timeout:             5 * time.Second,
		ConfidenceThreshold: 0.5,
		MaxDimension:        256,
		MaxSizeBytes:        5 << 20,
	}
}

func TestDetect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Image string `json:"image"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.True(t, strings.HasPrefix(body.Image, "data:image/jpeg;base64,"))

		raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(body.Image, "data:image/jpeg;base64,"))
		if assert.NoError(t, err) {
			img, err := jpeg.Decode(bytes.NewReader(raw))
			if assert.NoError(t, err) {
				assert.Equal(t, 256, img.Bounds().Dx())
				assert.Equal(t, 128, img.Bounds().Dy())
			}
		}

		_, _ = w.Write([]byte(`[{"class":"broccoli","score":0.87,"bbox":[1,2,3,4]},{"class":"cow","score":0.3}]`))
	}))
	defer srv.Close()

	svc := NewService(newDetectionConfig(srv.URL))
	res, err := svc.Detect(context.Background(), pngDataURI(t, 512, 256))
	require.NoError(t, err)
	assert.Equal(t, []Ingredient{{Name: "broccoli", Confidence: 87, Label: "broccoli"}}, res.Ingredients)
	assert.Len(t, res.RawPredictions, 2)
}

func TestDetectDisabled(t *testing.T) {
	svc := NewService(newDetectionConfig(""))
	assert.False(t, svc.Enabled())

	_, err := svc.Detect(context.Background(), pngDataURI(t, 4, 4))
	assert.ErrorIs(t, err, common.ErrDetectorDisabled)
}

func TestDetectRejectsBadImages(t *testing.T) {
	svc := NewService(newDetectionConfig("http://127.0.0.1:1"))

	_, err := svc.Detect(context.Background(), "not an image")
	assert.ErrorIs(t, err, common.ErrInvalidImageFormat)

	_, err = svc.Detect(context.Background(), "data:image/png;base64,aGVsbG8=")
	assert.ErrorIs(t, err, common.ErrInvalidImageFormat)

	small := NewService(config.DetectionConfig{Endpoint: "http://127.0.0.1:1", MaxSizeBytes: 10})
	_, err = small.Detect(context.Background(), pngDataURI(t, 16, 16))
	assert.ErrorIs(t, err, common.ErrInvalidImageSize)
}
