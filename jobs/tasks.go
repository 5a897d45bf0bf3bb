package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendQuotation is the task type for delivering a quotation email.
	TaskTypeSendQuotation = "quotation:send_email"
	// TaskTypeExpirySweep is the task type for reconciling overdue quotations.
	TaskTypeExpirySweep = "quotation:expiry_sweep"
)

// SendQuotationPayload identifies the quotation to deliver. The worker loads
// the current row itself, so a re-send after an edit always mails the latest
// revision.
type SendQuotationPayload struct {
	OrgID       int64 `json:"org_id"`
	QuotationID int64 `json:"quotation_id"`
}

// NewSendQuotationTask constructs an Asynq task.
func NewSendQuotationTask(payload SendQuotationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendQuotation, data), nil
}

// NewExpirySweepTask constructs the periodic sweep task.
func NewExpirySweepTask() *asynq.Task {
	return asynq.NewTask(TaskTypeExpirySweep, nil)
}

// HandleSendQuotationTask processes TaskTypeSendQuotation tasks.
func HandleSendQuotationTask(ctx context.Context, t *asynq.Task) error {
	var payload SendQuotationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Placeholder: integrate with SMTP/Mailpit in phase 2.
	fmt.Printf("[jobs] deliver quotation org=%d id=%d\n", payload.OrgID, payload.QuotationID)
	return nil
}
