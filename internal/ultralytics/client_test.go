package ultralytics

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func encodeTestPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 30), uint8(y * 30), 100, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestPredictSendsMultipartRequest(t *testing.T) {
	imageBytes := encodeTestPNG(t)

	var gotAPIKey, gotModel, gotImgsz, gotConf, gotIou string
	var gotFileType string
	var gotFile []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("x-api-key")
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Errorf("failed to parse multipart form: %v", err)
		}
		gotModel = r.FormValue("model")
		gotImgsz = r.FormValue("imgsz")
		gotConf = r.FormValue("conf")
		gotIou = r.FormValue("iou")

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file part: %v", err)
		} else {
			defer file.Close()
			gotFileType = header.Header.Get("Content-Type")
			buf := new(bytes.Buffer)
			if _, err := buf.ReadFrom(file); err != nil {
				t.Errorf("failed to read file part: %v", err)
			}
			gotFile = buf.Bytes()
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"images":[{"results":[{"name":"Stone","confidence":0.9,"box":{"x1":10,"y1":10,"x2":50,"y2":50}}]}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "https://hub.example.com/models/abc", "secret-key", zap.NewNop())
	result, err := client.Predict(context.Background(), imageBytes)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if gotAPIKey != "secret-key" {
		t.Errorf("expected x-api-key header, got %q", gotAPIKey)
	}
	if gotModel != "https://hub.example.com/models/abc" {
		t.Errorf("unexpected model field: %q", gotModel)
	}
	if gotImgsz != "640" || gotConf != "0.25" || gotIou != "0.45" {
		t.Errorf("unexpected inference params imgsz=%q conf=%q iou=%q", gotImgsz, gotConf, gotIou)
	}
	if gotFileType != "image/png" {
		t.Errorf("expected sniffed image/png part, got %q", gotFileType)
	}
	if !bytes.Equal(gotFile, imageBytes) {
		t.Errorf("uploaded bytes differ from input (%d vs %d bytes)", len(gotFile), len(imageBytes))
	}

	if len(result.Images) != 1 || len(result.Images[0].Results) != 1 {
		t.Fatalf("unexpected result shape: %+v", result.Images)
	}
	det := result.Images[0].Results[0]
	if det.Name != "Stone" || det.Confidence != 0.9 {
		t.Errorf("unexpected detection: %+v", det)
	}
	if !det.Box.Complete() {
		t.Errorf("expected complete box, got %+v", det.Box)
	}
	if len(result.Raw) == 0 {
		t.Error("expected raw body to be retained")
	}
}

func TestPredictMissingAPIKeySkipsNetwork(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	client := NewClient(server.URL, "model", "", zap.NewNop())
	_, err := client.Predict(context.Background(), []byte("img"))
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %T: %v", err, err)
	}
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey in chain, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected zero network calls, got %d", calls)
	}
}

func TestPredictServiceErrorCarriesStatusAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "model", "key", zap.NewNop())
	_, err := client.Predict(context.Background(), encodeTestPNG(t))
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", apiErr.StatusCode)
	}
	if !bytes.Contains([]byte(apiErr.Body), []byte("model exploded")) {
		t.Errorf("expected body to carry diagnostics, got %q", apiErr.Body)
	}
}

func TestPredictConnectionFailureIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, "model", "key", zap.NewNop())
	_, err := client.Predict(context.Background(), []byte("img"))
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %T: %v", err, err)
	}
}
