package paytm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pankajcr7/flipkart-clone/infra/config"
	"github.com/pankajcr7/flipkart-clone/provider"
)

const (
	// API URLs
	apiSandboxURL    = "https://securegw-stage.paytm.in"
	apiProductionURL = "https://securegw.paytm.in"

	// API Endpoints
	endpointOrderStatus = "/v3/order/status"

	// Parameter and response field names on the Paytm wire
	fieldChecksum = "CHECKSUMHASH"
	fieldOrderID  = "ORDERID"

	// Order status results
	resultTxnSuccess = "TXN_SUCCESS"

	orderIDPrefix  = "oid"
	defaultTimeout = 30 * time.Second
)

// PaytmGateway implements the provider.Gateway interface for Paytm's
// hosted redirect flow
type PaytmGateway struct {
	mid          string
	merchantKey  string
	website      string
	channelID    string
	industryType string
	custID       string
	callbackURL  string
	baseURL      string
	isProduction bool
	client       *provider.GatewayHTTPClient
}

// NewGateway creates a new Paytm payment gateway
func NewGateway() provider.Gateway {
	return &PaytmGateway{}
}

// Initialize sets up the Paytm gateway with merchant credentials
func (p *PaytmGateway) Initialize(conf map[string]string) error {
	p.mid = conf["merchantId"]
	p.merchantKey = conf["merchantKey"]

	if p.mid == "" || p.merchantKey == "" {
		return errors.New("paytm: merchantId and merchantKey are required")
	}

	p.website = conf["website"]
	if p.website == "" {
		p.website = "WEBSTAGING"
	}
	p.channelID = conf["channelId"]
	if p.channelID == "" {
		p.channelID = "WEB"
	}
	p.industryType = conf["industryType"]
	if p.industryType == "" {
		p.industryType = "Retail"
	}
	p.custID = conf["custId"]

	if callbackURL, ok := conf["callbackUrl"]; ok && callbackURL != "" {
		p.callbackURL = callbackURL
	} else {
		p.callbackURL = config.GetEnv("APP_URL", "http://localhost:4000") + "/api/v1/callback"
	}

	p.isProduction = conf["environment"] == "production"
	if p.isProduction {
		p.baseURL = apiProductionURL
	} else {
		p.baseURL = apiSandboxURL
	}
	if baseURL, ok := conf["baseUrl"]; ok && baseURL != "" {
		p.baseURL = baseURL
	}

	p.client = provider.NewGatewayHTTPClient(provider.CreateHTTPClientConfig(p.baseURL, p.isProduction, defaultTimeout))

	return nil
}

// Initiate builds the signed parameter set for Paytm's hosted payment
// form. The client posts these to the Paytm process endpoint and the
// shopper completes payment there.
func (p *PaytmGateway) Initiate(_ context.Context, request provider.InitiateRequest) (*provider.InitiateResponse, error) {
	if request.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be greater than zero", provider.ErrProviderRejected)
	}

	orderID := orderIDPrefix + uuid.New().String()

	custID := p.custID
	if request.Customer.Email != "" {
		custID = request.Customer.Email
	}

	params := map[string]string{
		"MID":              p.mid,
		"WEBSITE":          p.website,
		"CHANNEL_ID":       p.channelID,
		"INDUSTRY_TYPE_ID": p.industryType,
		"ORDER_ID":         orderID,
		"CUST_ID":          custID,
		"TXN_AMOUNT":       strconv.FormatFloat(request.Amount, 'f', 2, 64),
		"CALLBACK_URL":     p.callbackURL,
		"EMAIL":            request.Customer.Email,
		"MOBILE_NO":        request.Customer.PhoneNumber,
	}

	checksum, err := GenerateChecksum(params, p.merchantKey)
	if err != nil {
		return nil, fmt.Errorf("paytm: failed to generate checksum: %w", err)
	}
	params[fieldChecksum] = checksum

	return &provider.InitiateResponse{
		Provider: "paytm",
		OrderID:  orderID,
		Params:   params,
	}, nil
}

// orderStatusRequest is the signed envelope for the order status API
type orderStatusRequest struct {
	Body orderStatusBody `json:"body"`
	Head orderStatusHead `json:"head"`
}

type orderStatusBody struct {
	MID     string `json:"mid"`
	OrderID string `json:"orderId"`
}

type orderStatusHead struct {
	Signature string `json:"signature"`
}

// orderStatusResponse mirrors the fields of the order status API we use
type orderStatusResponse struct {
	Body struct {
		ResultInfo struct {
			ResultStatus string `json:"resultStatus"`
			ResultCode   string `json:"resultCode"`
			ResultMsg    string `json:"resultMsg"`
		} `json:"resultInfo"`
		TxnID     string `json:"txnId"`
		OrderID   string `json:"orderId"`
		TxnAmount string `json:"txnAmount"`
	} `json:"body"`
}

// Reconcile verifies the signed callback parameters and confirms the
// transaction against Paytm's order status API. The callback alone is
// never trusted: the authoritative verdict comes from the status call.
func (p *PaytmGateway) Reconcile(ctx context.Context, data map[string]string) (*provider.Outcome, error) {
	checksum, ok := data[fieldChecksum]
	if !ok || checksum == "" {
		return nil, fmt.Errorf("%w: missing checksum", provider.ErrVerificationFailed)
	}

	params := make(map[string]string, len(data))
	for key, value := range data {
		if key == fieldChecksum {
			continue
		}
		params[key] = value
	}

	if !VerifyChecksum(params, p.merchantKey, checksum) {
		return nil, fmt.Errorf("%w: checksum mismatch", provider.ErrVerificationFailed)
	}

	orderID := data[fieldOrderID]
	if orderID == "" {
		return nil, fmt.Errorf("%w: missing order id", provider.ErrVerificationFailed)
	}

	status, err := p.fetchOrderStatus(ctx, orderID)
	if err != nil {
		return nil, err
	}

	amount, err := strconv.ParseFloat(status.Body.TxnAmount, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: order status response has malformed transaction amount %q", provider.ErrNetworkFailure, status.Body.TxnAmount)
	}

	outcomeStatus := provider.StatusFailed
	if status.Body.ResultInfo.ResultStatus == resultTxnSuccess {
		outcomeStatus = provider.StatusSuccess
	}

	return &provider.Outcome{
		Provider: "paytm",
		OrderID:  status.Body.OrderID,
		TxnID:    status.Body.TxnID,
		Status:   outcomeStatus,
		Amount:   amount,
		Currency: config.GetEnv("HOME_CURRENCY", "INR"),
		ResultInfo: provider.ResultInfo{
			ResultStatus: status.Body.ResultInfo.ResultStatus,
			ResultCode:   status.Body.ResultInfo.ResultCode,
			ResultMsg:    status.Body.ResultInfo.ResultMsg,
		},
		Raw: status.Body,
	}, nil
}

func (p *PaytmGateway) fetchOrderStatus(ctx context.Context, orderID string) (*orderStatusResponse, error) {
	body := orderStatusBody{MID: p.mid, OrderID: orderID}
	bodyJSON, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("paytm: failed to marshal status request: %w", err)
	}

	signature, err := GenerateChecksumFromString(string(bodyJSON), p.merchantKey)
	if err != nil {
		return nil, fmt.Errorf("paytm: failed to sign status request: %w", err)
	}

	resp, err := p.client.SendJSON(ctx, &provider.HTTPRequest{
		Method:   "POST",
		Endpoint: endpointOrderStatus,
		Body: orderStatusRequest{
			Body: body,
			Head: orderStatusHead{Signature: signature},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: order status request: %v", provider.ErrNetworkFailure, err)
	}

	var status orderStatusResponse
	if err := p.client.ParseJSONResponse(resp, &status); err != nil {
		return nil, fmt.Errorf("%w: malformed order status response: %v", provider.ErrNetworkFailure, err)
	}
	if status.Body.OrderID == "" {
		return nil, fmt.Errorf("%w: order status response missing order id", provider.ErrNetworkFailure)
	}

	return &status, nil
}
