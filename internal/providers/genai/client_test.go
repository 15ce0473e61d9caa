package genai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"jewelshot/internal/domain"
	"jewelshot/internal/imagegen"
)

func testCall() imagegen.Call {
	return imagegen.Call{
		VariantID: "catalog-main",
		Images: []domain.ReferenceImage{
			{Name: "a.png", MIMEType: "image/png", Data: []byte("front")},
			{Name: "b.jpg", MIMEType: "image/jpeg", Data: []byte("side")},
		},
		Prompt: "render it",
	}
}

func TestSynthesizeSendsReferencesAndPrompt(t *testing.T) {
	var captured geminiGenerateContentRequest
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[
			{"text":"here you go"},
			{"inlineData":{"mimeType":"image/jpeg","data":"`+base64.StdEncoding.EncodeToString([]byte("out"))+`"}}
		]}}]}`)
	}))
	defer srv.Close()

	client := NewClient(Options{APIKey: "secret", BaseURL: srv.URL})
	payload, err := client.Synthesize(context.Background(), testCall())
	if err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}
	if payload == nil {
		t.Fatalf("expected payload")
	}
	if payload.VariantID != "catalog-main" || payload.MIMEType != "image/jpeg" || string(payload.Data) != "out" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if gotPath != "/models/"+DefaultModel+":generateContent" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotKey != "secret" {
		t.Fatalf("key = %q", gotKey)
	}
	if len(captured.Contents) != 1 {
		t.Fatalf("contents = %d, want 1", len(captured.Contents))
	}
	parts := captured.Contents[0].Parts
	if len(parts) != 3 {
		t.Fatalf("parts = %d, want 3", len(parts))
	}
	if parts[0].InlineData == nil || parts[0].InlineData.MimeType != "image/png" {
		t.Fatalf("first part should carry the first reference: %+v", parts[0])
	}
	if parts[1].InlineData == nil || parts[1].InlineData.MimeType != "image/jpeg" {
		t.Fatalf("second part should carry the second reference: %+v", parts[1])
	}
	if parts[2].Text != "render it" {
		t.Fatalf("last part should be the prompt, got %+v", parts[2])
	}
}

func TestSynthesizeWithoutInlineImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"I cannot do that"}]}}]}`)
	}))
	defer srv.Close()

	payload, err := NewClient(Options{APIKey: "k", BaseURL: srv.URL}).Synthesize(context.Background(), testCall())
	if err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}
	if payload != nil {
		t.Fatalf("expected nil payload, got %+v", payload)
	}
}

func TestSynthesizeNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"candidates":[]}`)
	}))
	defer srv.Close()

	payload, err := NewClient(Options{APIKey: "k", BaseURL: srv.URL}).Synthesize(context.Background(), testCall())
	if err != nil || payload != nil {
		t.Fatalf("expected nil payload and error, got %+v, %v", payload, err)
	}
}

func TestSynthesizeSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`)
	}))
	defer srv.Close()

	_, err := NewClient(Options{APIKey: "k", BaseURL: srv.URL}).Synthesize(context.Background(), testCall())
	if err == nil || !strings.Contains(err.Error(), "API key not valid") {
		t.Fatalf("expected api error message, got %v", err)
	}
	if errors.Is(err, domain.ErrNetworkUnavailable) {
		t.Fatalf("api errors are not network failures: %v", err)
	}
}

func TestSynthesizeUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	client := NewClient(Options{APIKey: "k", BaseURL: baseURL, HTTPClient: &http.Client{Timeout: 2 * time.Second}})
	_, err := client.Synthesize(context.Background(), testCall())
	if !errors.Is(err, domain.ErrNetworkUnavailable) {
		t.Fatalf("expected ErrNetworkUnavailable, got %v", err)
	}
}

func TestSynthesizeMissingKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL})
	if !errors.Is(client.Ready(), domain.ErrMissingCredential) {
		t.Fatalf("Ready should report the missing key")
	}
	if _, err := client.Synthesize(context.Background(), testCall()); !errors.Is(err, domain.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
	if called {
		t.Fatalf("no request expected without a key")
	}
}

func TestSynthesizeDownloadsFileData(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/files/out.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = io.WriteString(w, "filebytes")
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"fileData":{"fileUri":"files/out.png"}}]}}]}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	payload, err := NewClient(Options{APIKey: "k", BaseURL: srv.URL}).Synthesize(context.Background(), testCall())
	if err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}
	if payload == nil || string(payload.Data) != "filebytes" || payload.MIMEType != "image/png" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(Options{APIKey: " k ", Model: "  "})
	if client.Model() != DefaultModel {
		t.Fatalf("model = %q", client.Model())
	}
	if client.baseURL != DefaultBaseURL {
		t.Fatalf("baseURL = %q", client.baseURL)
	}
	if client.Ready() != nil {
		t.Fatalf("trimmed key should be accepted")
	}
}

func TestSDKSynthesizerWithoutKey(t *testing.T) {
	s, err := NewSDKSynthesizer(context.Background(), Options{})
	if err != nil {
		t.Fatalf("NewSDKSynthesizer error: %v", err)
	}
	if !errors.Is(s.Ready(), domain.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential")
	}
	if _, err := s.Synthesize(context.Background(), testCall()); !errors.Is(err, domain.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
}
