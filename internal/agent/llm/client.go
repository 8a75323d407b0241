package llm

import (
	"context"
	"io"
	"time"

	"github.com/cenkalti/backoff/v4"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/eVolpe-AI/AI-HR-Agent/internal/core/errx"
	logx "github.com/eVolpe-AI/AI-HR-Agent/pkg/logger"
)

// ModelSource resolves a provider/model pair into a chat model. Factory
// satisfies it; tests substitute fakes.
type ModelSource interface {
	Model(ctx context.Context, provider, modelName string) (einomodel.ToolCallingChatModel, error)
	SummaryModel(ctx context.Context, provider, modelName string) (einomodel.ToolCallingChatModel, error)
}

// Request is one model invocation. Silent requests never stream outward;
// OnDelta, when set on a non-silent request, receives each text chunk as
// it arrives.
type Request struct {
	Provider  string
	ModelName string
	Messages  []*schema.Message

	Silent  bool
	OnDelta func(text string)
}

// Client invokes chat models with streaming accumulation, provider error
// classification and bounded retry of transient failures.
type Client struct {
	source     ModelSource
	maxRetries uint64
}

// NewClient wraps a model source. Transient provider failures are retried
// up to three times with exponential backoff.
func NewClient(source ModelSource) *Client {
	return &Client{source: source, maxRetries: 3}
}

// Invoke runs one model call and returns the complete assistant message,
// including accumulated tool calls and usage metadata.
func (c *Client) Invoke(ctx context.Context, req Request) (*schema.Message, error) {
	var cm einomodel.ToolCallingChatModel
	var err error
	if req.Silent {
		cm, err = c.source.SummaryModel(ctx, req.Provider, req.ModelName)
	} else {
		cm, err = c.source.Model(ctx, req.Provider, req.ModelName)
	}
	if err != nil {
		return nil, errx.Internal("failed to construct chat model", err)
	}

	var out *schema.Message
	operation := func() error {
		var callErr error
		out, callErr = c.callOnce(ctx, cm, req)
		if callErr == nil {
			return nil
		}
		classified := errx.ClassifyProvider(callErr)
		if errx.IsRetryable(classified) {
			logx.Warn().Err(callErr).
				Str("provider", req.Provider).
				Str("model", req.ModelName).
				Msg("transient model failure, retrying")
			return classified
		}
		return backoff.Permanent(classified)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(500*time.Millisecond),
			backoff.WithMaxInterval(5*time.Second),
		), c.maxRetries),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) callOnce(ctx context.Context, cm einomodel.ToolCallingChatModel, req Request) (*schema.Message, error) {
	if req.Silent || req.OnDelta == nil {
		return cm.Generate(ctx, req.Messages)
	}

	stream, err := cm.Stream(ctx, req.Messages)
	if err != nil {
		return nil, err
	}
	defer stream.Close()
	return accumulate(stream, req.OnDelta)
}

// accumulate drains a streaming response into one assistant message.
// Text chunks are concatenated in arrival order; tool call argument
// fragments are joined per call id; the last chunk carrying usage wins.
func accumulate(stream *schema.StreamReader[*schema.Message], onDelta func(string)) (*schema.Message, error) {
	out := &schema.Message{Role: schema.Assistant}
	toolIndex := map[string]int{}
	var lastID string

	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if chunk == nil {
			continue
		}

		if chunk.Content != "" {
			out.Content += chunk.Content
			onDelta(chunk.Content)
		}

		for _, tc := range chunk.ToolCalls {
			id := tc.ID
			if id == "" {
				// Argument fragments may arrive without an id; they belong
				// to the most recently opened call.
				id = lastID
			}
			idx, seen := toolIndex[id]
			if !seen {
				toolIndex[id] = len(out.ToolCalls)
				out.ToolCalls = append(out.ToolCalls, tc)
				lastID = id
				continue
			}
			if tc.Function.Name != "" {
				out.ToolCalls[idx].Function.Name = tc.Function.Name
			}
			out.ToolCalls[idx].Function.Arguments += tc.Function.Arguments
		}

		if chunk.ResponseMeta != nil {
			if out.ResponseMeta == nil {
				out.ResponseMeta = &schema.ResponseMeta{}
			}
			if chunk.ResponseMeta.Usage != nil {
				out.ResponseMeta.Usage = chunk.ResponseMeta.Usage
			}
			if chunk.ResponseMeta.FinishReason != "" {
				out.ResponseMeta.FinishReason = chunk.ResponseMeta.FinishReason
			}
		}
	}
	return out, nil
}
