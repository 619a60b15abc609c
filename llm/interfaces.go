package llm

import (
	"context"
)

// Middleware wraps every prompt the Router dispatches to an adapter.
type Middleware interface {
	// BeforeRequest sees the request once its provider is resolved. A returned
	// error aborts dispatch before any network call.
	BeforeRequest(ctx context.Context, req *Request) (*Request, error)

	// AfterResponse sees each completed response and may replace it.
	AfterResponse(ctx context.Context, req *Request, resp *Response) (*Response, error)

	// OnError sees each adapter failure. Returning nil keeps err as is.
	OnError(ctx context.Context, req *Request, err error) error
}

// MiddlewareFunc adapts optional hook functions to Middleware. Unset hooks
// pass values through.
type MiddlewareFunc struct {
	BeforeRequestFunc func(ctx context.Context, req *Request) (*Request, error)
	AfterResponseFunc func(ctx context.Context, req *Request, resp *Response) (*Response, error)
	OnErrorFunc       func(ctx context.Context, req *Request, err error) error
}

// BeforeRequest implements Middleware.
func (f MiddlewareFunc) BeforeRequest(ctx context.Context, req *Request) (*Request, error) {
	if f.BeforeRequestFunc != nil {
		return f.BeforeRequestFunc(ctx, req)
	}
	return req, nil
}

// AfterResponse implements Middleware.
func (f MiddlewareFunc) AfterResponse(ctx context.Context, req *Request, resp *Response) (*Response, error) {
	if f.AfterResponseFunc != nil {
		return f.AfterResponseFunc(ctx, req, resp)
	}
	return resp, nil
}

// OnError implements Middleware.
func (f MiddlewareFunc) OnError(ctx context.Context, req *Request, err error) error {
	if f.OnErrorFunc != nil {
		if handled := f.OnErrorFunc(ctx, req, err); handled != nil {
			return handled
		}
	}
	return err
}

// send runs an adapter call through the middleware chain. BeforeRequest runs
// in order, AfterResponse in reverse order.
func send(ctx context.Context, adapter Adapter, req *Request, middleware []Middleware) (*Response, error) {
	for _, mw := range middleware {
		var err error
		req, err = mw.BeforeRequest(ctx, req)
		if err != nil {
			return nil, err
		}
	}

	resp, err := adapter.Send(ctx, req.Prompt, req.Overrides)
	if err != nil {
		for _, mw := range middleware {
			if replaced := mw.OnError(ctx, req, err); replaced != nil {
				err = replaced
			}
		}
		return nil, err
	}

	for i := len(middleware) - 1; i >= 0; i-- {
		resp, err = middleware[i].AfterResponse(ctx, req, resp)
		if err != nil {
			return nil, err
		}
	}
	return resp, nil
}
