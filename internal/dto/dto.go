package dto

import "cart-recovery-service/internal/model"

type StatsResponse struct {
	TotalAbandoned  int `json:"totalAbandoned"`
	TotalCompleted  int `json:"totalCompleted"`
	TotalCalls      int `json:"totalCalls"`
	SuccessfulCalls int `json:"successfulCalls"`

	Carts []*model.AbandonedCart `json:"carts"`
	Calls []*model.CallLog       `json:"calls"`
}

type RecoveryRunResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
