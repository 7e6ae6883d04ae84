package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"cart-recovery-service/internal/config"
)

// VapiClient places outbound recovery calls through the Vapi voice API.
//
// MakeCall never returns an error: any transport failure, non-2xx status or
// undecodable body is captured as a failed CallResult so the scheduler can
// record the attempt either way.
type VapiClient interface {
	MakeCall(ctx context.Context, req *CallRequest) *CallResult
}

type CallRequest struct {
	PhoneNumber   string
	CustomerName  string
	CustomerEmail string
	ProductNames  string // titles of the cart's own line items
	CheckoutURL   string // abandoned checkout recovery link
	AllProducts   string // active catalog summary for assistant context
}

type CallResult struct {
	Success bool   `json:"success"`
	CallID  string `json:"call_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

type vapiClientImpl struct {
	httpClient        *http.Client
	baseApiURL        string
	apiKey            string
	assistantID       string
	twilioPhoneNumber string
	twilioAccountSID  string
	twilioAuthToken   string
}

func NewVapiClient(vapiCfg *config.Vapi) VapiClient {
	return &vapiClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL:        vapiCfg.BaseApiURL,
		apiKey:            vapiCfg.APIKey,
		assistantID:       vapiCfg.AssistantID,
		twilioPhoneNumber: vapiCfg.TwilioPhoneNumber,
		twilioAccountSID:  vapiCfg.TwilioAccountSID,
		twilioAuthToken:   vapiCfg.TwilioAuthToken,
	}
}

type vapiPhoneNumber struct {
	TwilioPhoneNumber string `json:"twilioPhoneNumber"`
	TwilioAccountSid  string `json:"twilioAccountSid"`
	TwilioAuthToken   string `json:"twilioAuthToken"`
}

type vapiCustomer struct {
	Number string `json:"number"`
}

type vapiVariableValues struct {
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	ProductName   string `json:"productName"`
	CheckoutURL   string `json:"checkoutUrl"`
	AllProducts   string `json:"allProducts"`
}

type vapiAssistantOverrides struct {
	VariableValues vapiVariableValues `json:"variableValues"`
}

type vapiCallPayload struct {
	AssistantID        string                 `json:"assistantId"`
	PhoneNumber        vapiPhoneNumber        `json:"phoneNumber"`
	Customer           vapiCustomer           `json:"customer"`
	AssistantOverrides vapiAssistantOverrides `json:"assistantOverrides"`
}

type vapiCallResult struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

func (c *vapiClientImpl) MakeCall(ctx context.Context, call *CallRequest) *CallResult {
	payload := vapiCallPayload{
		AssistantID: c.assistantID,
		PhoneNumber: vapiPhoneNumber{
			TwilioPhoneNumber: c.twilioPhoneNumber,
			TwilioAccountSid:  c.twilioAccountSID,
			TwilioAuthToken:   c.twilioAuthToken,
		},
		Customer: vapiCustomer{
			Number: call.PhoneNumber,
		},
		AssistantOverrides: vapiAssistantOverrides{
			VariableValues: vapiVariableValues{
				CustomerName:  call.CustomerName,
				CustomerEmail: call.CustomerEmail,
				ProductName:   call.ProductNames,
				CheckoutURL:   call.CheckoutURL,
				AllProducts:   call.AllProducts,
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return &CallResult{Success: false, Error: "marshal call payload: " + err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/call/phone", bytes.NewBuffer(body))
	if err != nil {
		return &CallResult{Success: false, Error: "build call request: " + err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &CallResult{Success: false, Error: "vapi request failed: " + err.Error()}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	var result vapiCallResult
	if err := json.Unmarshal(respBody, &result); err != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &CallResult{Success: false, Error: "decode vapi response: " + err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := result.Message
		if message == "" {
			message = string(respBody)
		}
		if message == "" {
			message = "failed to make call"
		}
		return &CallResult{Success: false, Error: message}
	}

	return &CallResult{Success: true, CallID: result.ID}
}
