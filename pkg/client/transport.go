package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/sanders41/meilisearch-go-sdk/internal/logger"
	"github.com/sanders41/meilisearch-go-sdk/pkg/codec"
)

// errorBody is the JSON error payload the server attaches to non-2xx
// responses.
type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Type    string `json:"type"`
	Link    string `json:"link"`
}

// createAgent creates a new Fiber Agent for the given method and endpoint.
// The request body, if any, is serialized with the provided codec and
// attached raw so custom codecs are honored end to end.
func (c *APIClient) createAgent(ctx context.Context, method, endpoint string, body any, cdc codec.Codec) (*fiber.Agent, error) {
	fullURL := c.baseURL + endpoint

	var agent *fiber.Agent
	switch method {
	case http.MethodGet:
		agent = fiber.Get(fullURL)
	case http.MethodPost:
		agent = fiber.Post(fullURL)
	case http.MethodPut:
		agent = fiber.Put(fullURL)
	case http.MethodDelete:
		agent = fiber.Delete(fullURL)
	case http.MethodPatch:
		agent = fiber.Patch(fullURL)
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}

	// Set timeout from context or client default
	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	} else {
		agent.Timeout(c.timeout)
	}

	agent.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if c.apiKey != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+c.apiKey)
	}

	if body != nil {
		encoded, err := cdc.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("error encoding request body: %w", err)
		}
		agent.Body(encoded)
	}

	return agent, nil
}

// doRequest sends the HTTP request and processes the response
func (c *APIClient) doRequest(agent *fiber.Agent, v any, cdc codec.Codec) error {
	statusCode, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return &CommunicationError{Err: errs[0]}
	}

	if statusCode < 200 || statusCode >= 300 {
		apiErr := &APIError{StatusCode: statusCode, Message: string(body)}

		// Replace the raw body with the structured server error when it
		// decodes cleanly.
		var serverErr errorBody
		if len(body) > 0 && cdc.Unmarshal(body, &serverErr) == nil && serverErr.Message != "" {
			apiErr.Message = serverErr.Message
			apiErr.Code = serverErr.Code
			apiErr.Type = serverErr.Type
			apiErr.Link = serverErr.Link
		}

		return apiErr
	}

	if v != nil && len(body) > 0 {
		if err := cdc.Unmarshal(body, v); err != nil {
			return fmt.Errorf("error decoding response: %w", err)
		}
	}

	return nil
}

// executeRequest creates an agent, sends the request, and processes the
// response using the client codec
func (c *APIClient) executeRequest(ctx context.Context, method, endpoint string, body, response any) error {
	return c.executeRequestWithCodec(ctx, method, endpoint, body, response, c.codec)
}

// executeRequestWithCodec is the request path every network call in the SDK
// funnels through. Index handles pass their own codec here.
func (c *APIClient) executeRequestWithCodec(ctx context.Context, method, endpoint string, body, response any, cdc codec.Codec) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	agent, err := c.createAgent(ctx, method, endpoint, body, cdc)
	if err != nil {
		return err
	}

	logger.Debugf("%s %s", method, endpoint)

	return c.doRequest(agent, response, cdc)
}
