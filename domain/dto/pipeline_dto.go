package dto

import "youtube-etl/domain/model"

// RunListRequest represents query parameters for listing pipeline runs
type RunListRequest struct {
	Limit int `form:"limit"`
}

// RunListResponse represents a page of pipeline runs
type RunListResponse struct {
	Items []model.DagRun `json:"items"`
	Count int            `json:"count"`
}

// TriggerRunResponse is returned when a manual run is accepted
type TriggerRunResponse struct {
	RunID   string `json:"run_id"`
	DagID   string `json:"dag_id"`
	Message string `json:"message"`
}

// ErrorResponse is the common error body
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}
