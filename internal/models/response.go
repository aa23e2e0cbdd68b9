package models

// TasksResponse はタスク一覧のページングレスポンス
type TasksResponse struct {
	Tasks    []Task `json:"tasks"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// SubmitJobResponse はジョブ投入のレスポンス
type SubmitJobResponse struct {
	TaskID  string `json:"task_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorResponse はエラーレスポンス
type ErrorResponse struct {
	Error      string `json:"error"`
	Detail     string `json:"detail,omitempty"`
	StatusCode int    `json:"status_code"`
}

// SuccessResponse は成功メッセージのレスポンス
type SuccessResponse struct {
	Message string `json:"message"`
}
