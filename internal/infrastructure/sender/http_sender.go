package sender

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

type errorResponse struct {
	Error string `json:"error"`
}

// HTTPSender talks to the disbursement provider gateway over HTTP.
type HTTPSender struct {
	Address string
	client  *http.Client
}

func NewHTTPSender(address string) *HTTPSender {
	return &HTTPSender{
		Address: address,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *HTTPSender) Send(req SendRequest) (*SendResult, error) {
	requestBodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	response, err := s.client.Post(fmt.Sprintf("%s/disbursements", s.Address), "application/json", bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()
	responseBodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		var result SendResult
		if err := json.Unmarshal(responseBodyBytes, &result); err != nil {
			return nil, err
		}
		if result.TransactionID == "" {
			return nil, errors.New("sender returned success without a transaction id")
		}
		return &result, nil
	}

	var errResp errorResponse
	if err := json.Unmarshal(responseBodyBytes, &errResp); err != nil {
		return nil, fmt.Errorf("sender returned status %d", response.StatusCode)
	}
	return nil, errors.New(errResp.Error)
}
