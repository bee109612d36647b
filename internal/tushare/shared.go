package tushare

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/singleflight"

	"tushare-mcp/pkg/model"
)

// Shared wraps a Querier so identical requests in flight at the same time
// share one upstream call. Nothing is kept once the call returns.
type Shared struct {
	inner Querier
	group singleflight.Group
}

// NewShared creates a request-collapsing wrapper
func NewShared(inner Querier) *Shared {
	return &Shared{inner: inner}
}

// Query runs req, joining an identical in-flight call if there is one.
// The upstream call outlives a cancelled caller while others still wait on
// it; each caller stops waiting when its own ctx is done. Callers get their
// own copy of the row slice.
func (s *Shared) Query(ctx context.Context, req Request) (*model.Table, error) {
	key, err := requestKey(req)
	if err != nil {
		return s.inner.Query(ctx, req)
	}

	ch := s.group.DoChan(key, func() (interface{}, error) {
		return s.inner.Query(context.WithoutCancel(ctx), req)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}

	t := res.Val.(*model.Table)
	return &model.Table{
		Fields: t.Fields,
		Items:  append([][]any(nil), t.Items...),
	}, nil
}

func requestKey(req Request) (string, error) {
	// encoding/json sorts map keys, so equal params give equal keys
	b, err := json.Marshal(struct {
		API    string         `json:"a"`
		Params map[string]any `json:"p"`
		Fields string         `json:"f"`
	}{req.API, cleanParams(req.Params), req.Fields})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
