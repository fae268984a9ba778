package registry

import (
	"errors"
	"fmt"

	"github.com/mdwit/spec2admin/internal/resource"
)

// ErrResourceNotFound слот (группа, тип) пуст.
var ErrResourceNotFound = errors.New("resource not found")

// ResourceNotFoundError возвращается точным поиском.
type ResourceNotFoundError struct {
	Group string
	Type  resource.ActionType
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("resource not found: group %q has no %q action", e.Group, e.Type)
}

// Is позволяет проверять errors.Is(err, ErrResourceNotFound).
func (e *ResourceNotFoundError) Is(target error) bool {
	return target == ErrResourceNotFound
}
