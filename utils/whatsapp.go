package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// WaConfig is a fully-resolved WhatsApp gateway configuration, produced by the
// layered resolver (tenant override -> global settings -> environment).
type WaConfig struct {
	BaseURL string
	APIKey  string
	Sender  string
}

// WaError represents a WhatsApp gateway error
type WaError struct {
	Code     string
	Message  string
	HTTPCode int
}

func (e *WaError) Error() string {
	return fmt.Sprintf("whatsapp error [%s]: %s", e.Code, e.Message)
}

type waSendRequest struct {
	Sender string `json:"sender"`
	Number string `json:"number"`
	Text   string `json:"message"`
}

type waSendResponse struct {
	Status  bool   `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// waHTTPTimeout bounds each delivery attempt so a hung gateway cannot stall
// the dispatcher's retry loop.
const waHTTPTimeout = 10 * time.Second

// SendWhatsApp performs a single delivery attempt against the gateway.
// A nil return is the only success signal the dispatcher relies on.
func SendWhatsApp(cfg WaConfig, phone, message string) error {
	if cfg.BaseURL == "" || cfg.APIKey == "" {
		return fmt.Errorf("whatsapp gateway not configured")
	}

	reqBody := waSendRequest{
		Sender: cfg.Sender,
		Number: NormalizeDigits(phone),
		Text:   message,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", cfg.BaseURL+"/v1/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	client := &http.Client{Timeout: waHTTPTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var waResp waSendResponse
	if err := json.Unmarshal(body, &waResp); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !waResp.Status {
		return &WaError{
			Code:     waResp.Code,
			Message:  waResp.Message,
			HTTPCode: resp.StatusCode,
		}
	}

	return nil
}
