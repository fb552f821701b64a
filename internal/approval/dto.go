package approval

type CreateApprovalDTO struct {
	EntityType  string `json:"entity_type"`
	EntityID    string `json:"entity_id"`
	WorkflowKey string `json:"workflow_key"`
	CurrentStep int    `json:"current_step"`
}

type DecisionDTO struct {
	Comment string `json:"comment"`
}

type ApprovalsResponse struct {
	Approvals []*Approval `json:"approvals"`
	Total     int64       `json:"total"`
	Limit     int         `json:"limit"`
	Offset    int         `json:"offset"`
}
