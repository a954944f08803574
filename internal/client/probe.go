// 외부 프로브 실행 서비스와 HTTP 통신하는 클라이언트 정의
// 네트워크 프로빙(DNS/TCP/HTTP) 자체는 prober 서비스가 수행하고,
// 이 엔진은 관측 결과 레코드만 받는다.
//
// 환경변수:
//   - PROBER_URL: prober 서비스 URL (예: http://pulsewatch-prober.pulsewatch.svc:8000)
//   - PROBER_TIMEOUT: 요청 타임아웃 (기본 30s)

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pulsewatch/backend/internal/config"
	"github.com/pulsewatch/backend/internal/model"
)

// ProbeRequest - prober에 전달하는 실행 요청
type ProbeRequest struct {
	CheckID   string `json:"check_id"`
	CheckType string `json:"check_type"`
	Target    string `json:"target"`
	Location  string `json:"location"`
}

// ProbeResponse - prober가 돌려주는 관측 결과
type ProbeResponse struct {
	ResponseTimeMS float64                   `json:"response_time_ms"`
	StatusCode     int                       `json:"status_code"`
	Body           string                    `json:"body"`
	Headers        map[string]string         `json:"headers"`
	Error          string                    `json:"error"`
	Certificate    *model.CertificateSummary `json:"certificate,omitempty"`
}

// ProbeClient 구조체 정의
type ProbeClient struct {
	baseURL    string
	httpClient *http.Client
}

// ProbeClient 객체 생성
func NewProbeClient(cfg config.ProberConfig) *ProbeClient {
	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil || timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ProbeClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Probe - (check, location) 한 쌍에 대한 프로브 실행 요청
func (c *ProbeClient) Probe(ctx context.Context, check model.Check, location string) (*ProbeResponse, error) {
	payload, err := json.Marshal(ProbeRequest{
		CheckID:   check.ID,
		CheckType: check.Type,
		Target:    check.Target,
		Location:  location,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/probe", bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("prober returned status %d: %s", resp.StatusCode, string(body))
	}

	var out ProbeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
