package email

import "context"

type noopService struct{}

// NewNoopService returns an email service that silently drops every
// message. The worker uses it: donor contact mail is the API's job.
func NewNoopService() Service {
	return noopService{}
}

func (noopService) SendDonorContacted(ctx context.Context, to, donorName, bloodGroup string) error {
	return nil
}

func (noopService) SendRequestFulfilled(ctx context.Context, to string) error {
	return nil
}

func (noopService) SendCustom(ctx context.Context, to, subject, content string) error {
	return nil
}
