package dto

type TotalResponse struct {
	Total int64 `json:"total"`
}

type TriggerResponse struct {
	Message string `json:"message"`
	TaskID  string `json:"task_id"`
}
