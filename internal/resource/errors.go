package resource

import (
	"errors"
	"fmt"
)

var (
	// ErrPathParameter ошибка подстановки параметра пути.
	ErrPathParameter = errors.New("path parameter error")

	// ErrQueryParameter ошибка проверки query-параметра.
	ErrQueryParameter = errors.New("query parameter error")

	// ErrNoTransport у дескриптора нет транспорта для вызова.
	ErrNoTransport = errors.New("resource: no transport configured")
)

// PathParameterError возвращается построителями путей: параметр не
// передан, либо значение null, массив или объект.
type PathParameterError struct {
	// Name имя параметра (после перевода через алиасы)
	Name string
	// Path шаблон, в который шла подстановка
	Path string
	// Shape фактическая форма значения: "null", "array", "object"; пусто для пропущенного
	Shape string
}

func (e *PathParameterError) Error() string {
	if e.Shape != "" {
		return fmt.Sprintf("path parameter %q must be a primitive value, got %s", e.Name, e.Shape)
	}
	return fmt.Sprintf("missing required path parameter %q in %s", e.Name, e.Path)
}

// Is позволяет проверять errors.Is(err, ErrPathParameter).
func (e *PathParameterError) Is(target error) bool {
	return target == ErrPathParameter
}

// QueryParameterError ключ без объявленного контракта.
type QueryParameterError struct {
	Name string
	Path string
}

func (e *QueryParameterError) Error() string {
	return fmt.Sprintf("%q is not a valid query parameter for %s", e.Name, e.Path)
}

// Is позволяет проверять errors.Is(err, ErrQueryParameter).
func (e *QueryParameterError) Is(target error) bool {
	return target == ErrQueryParameter
}

// HTTPError ответ транспорта со статусом вне 2xx.
type HTTPError struct {
	Method string
	URL    string
	Status int
	Data   any
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.Status)
}
