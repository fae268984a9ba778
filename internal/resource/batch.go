package resource

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Invocation один вызов в пакете.
type Invocation struct {
	Descriptor *Descriptor
	Params     CallParams
}

// CallAll запускает вызовы параллельно и ждёт завершения всех.
// Возвращает первую ошибку; успешные побочные эффекты не откатываются,
// остальные вызовы не отменяются.
func CallAll(ctx context.Context, calls ...Invocation) ([]*Response, error) {
	responses := make([]*Response, len(calls))

	var g errgroup.Group
	for i, call := range calls {
		g.Go(func() error {
			resp, err := call.Descriptor.Call(ctx, call.Params)
			if err != nil {
				return err
			}
			responses[i] = resp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return responses, err
	}
	return responses, nil
}
