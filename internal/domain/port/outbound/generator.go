package outbound

import "context"

// ReplyGenerator drafts a reply to a job posting using a generative text
// model. It may fail; callers degrade to a fixed fallback string.
type ReplyGenerator interface {
	Generate(ctx context.Context, postText string) (string, error)
}
