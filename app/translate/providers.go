package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Provider is one translation backend. At least two independently
// configured providers back the fallback chain.
type Provider interface {
	Name() string
	Translate(ctx context.Context, text, target string) (string, error)
}

// GoogleProvider calls the public Google translate web endpoint.
type GoogleProvider struct {
	client   *http.Client
	endpoint string
}

var _ Provider = (*GoogleProvider)(nil)

func NewGoogleProvider(client *http.Client) *GoogleProvider {
	return &GoogleProvider{
		client:   client,
		endpoint: "https://translate.googleapis.com/translate_a/single",
	}
}

func (p *GoogleProvider) Name() string {
	return "google"
}

func (p *GoogleProvider) Translate(ctx context.Context, text, target string) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", "auto")
	params.Set("tl", target)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("google translate error: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	return parseGoogleResponse(body)
}

// parseGoogleResponse extracts the translated segments from the
// endpoint's nested-array response:
// [[["translated","original",...],...],...]
func parseGoogleResponse(body []byte) (string, error) {
	var outer []json.RawMessage
	if err := json.Unmarshal(body, &outer); err != nil {
		return "", fmt.Errorf("unexpected response shape: %w", err)
	}
	if len(outer) == 0 {
		return "", fmt.Errorf("empty response")
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(outer[0], &segments); err != nil {
		return "", fmt.Errorf("unexpected segment shape: %w", err)
	}

	var sb strings.Builder
	for _, segment := range segments {
		if len(segment) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(segment[0], &part); err == nil {
			sb.WriteString(part)
		}
	}

	translated := sb.String()
	if translated == "" {
		return "", fmt.Errorf("no translated segments in response")
	}

	return translated, nil
}

// MyMemoryProvider calls the MyMemory translation API, the secondary
// leg of the fallback chain.
type MyMemoryProvider struct {
	client   *http.Client
	endpoint string
}

var _ Provider = (*MyMemoryProvider)(nil)

func NewMyMemoryProvider(client *http.Client) *MyMemoryProvider {
	return &MyMemoryProvider{
		client:   client,
		endpoint: "https://api.mymemory.translated.net/get",
	}
}

func (p *MyMemoryProvider) Name() string {
	return "mymemory"
}

func (p *MyMemoryProvider) Translate(ctx context.Context, text, target string) (string, error) {
	params := url.Values{}
	params.Set("q", text)
	params.Set("langpair", "Autodetect|"+target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("mymemory error: %s", resp.Status)
	}

	var payload struct {
		ResponseData struct {
			TranslatedText string `json:"translatedText"`
		} `json:"responseData"`
		ResponseStatus int `json:"responseStatus"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if payload.ResponseStatus != http.StatusOK {
		return "", fmt.Errorf("mymemory status %d", payload.ResponseStatus)
	}
	if payload.ResponseData.TranslatedText == "" {
		return "", fmt.Errorf("empty translation in response")
	}

	return payload.ResponseData.TranslatedText, nil
}
