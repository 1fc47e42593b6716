package dispatch

import (
	"context"
	"encoding/json"

	perr "hubconnect/internal/platform/errors"
)

// JSON decodes a successful response into T on an executor worker
// failures pass through untouched
func JSON[T any](ctx context.Context, f *Future[*Response]) *Future[T] {
	return Then(ctx, f, func(_ context.Context, r *Response, err error) (T, error) {
		var out T
		if err != nil {
			return out, err
		}
		if len(r.Body) == 0 {
			return out, nil
		}
		if err := json.Unmarshal(r.Body, &out); err != nil {
			return out, perr.Wrap(err, perr.ErrorCodeUnknown, "decode backend response")
		}
		return out, nil
	})
}
