package model

type ErrorResponse struct {
	Error string `json:"error"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type PingResponse struct {
	Message string `json:"message"`
}

type RootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type IncidentListEnvelope struct {
	Status string     `json:"status"`
	Data   []Incident `json:"data"`
}

type IncidentDetailEnvelope struct {
	Status string    `json:"status"`
	Data   *Incident `json:"data"`
}

type ResultListEnvelope struct {
	Status string        `json:"status"`
	Data   []CheckResult `json:"data"`
}

type CorrelationListEnvelope struct {
	Status string             `json:"status"`
	Data   []AlertCorrelation `json:"data"`
}

type CorrelationDetailEnvelope struct {
	Status string            `json:"status"`
	Data   *AlertCorrelation `json:"data"`
}

type RunbookListEnvelope struct {
	Status string         `json:"status"`
	Data   []AlertRunbook `json:"data"`
}

type RunbookDetailEnvelope struct {
	Status string        `json:"status"`
	Data   *AlertRunbook `json:"data"`
}

type RunbookMutationResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	RunbookID string `json:"runbook_id,omitempty"`
}

type IngestResultResponse struct {
	Status     string `json:"status"`
	ResultID   string `json:"result_id"`
	IncidentID string `json:"incident_id,omitempty"`
}
