package email

import (
	"context"
)

type Service interface {
	SendDonorContacted(ctx context.Context, to string, donorName string, bloodGroup string) error
	SendRequestFulfilled(ctx context.Context, to string) error
	SendCustom(ctx context.Context, to string, subject string, content string) error
}
