package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mdwit/spec2admin/internal/registry"
	"github.com/mdwit/spec2admin/internal/resource"
)

// ParseOptions опции парсинга
type ParseOptions struct {
	// Logger получает диагностику; nil отключает логи
	Logger *slog.Logger
	// Transport назначается всем дескрипторам для Call
	Transport resource.Transport
	// DropNestedRefs отключает разрешение вложенных ссылок: они
	// отбрасываются, разрешаются только ссылки верхнего уровня
	DropNestedRefs bool
	// IgnoreDocumentBlock не применять x-admin уровня документа
	IgnoreDocumentBlock bool
	// MaxDocumentSize ограничение размера источника в байтах, 0 без ограничения
	MaxDocumentSize int64
	// HTTPClient для загрузки по URL
	HTTPClient *http.Client
}

// Result результат компиляции документа
type Result struct {
	Title    string
	Version  string
	BaseURL  string
	Registry *registry.Registry
	// Skipped операции, не попавшие в реестр, с причинами
	Skipped []Skipped
	// Warnings замечания по операциям, попавшим в реестр
	Warnings []string
}

// Skipped пропущенная операция. Это не ошибка: разбор продолжается.
type Skipped struct {
	Path   string
	Method string
	Reason string
}

func (s Skipped) String() string {
	return fmt.Sprintf("%s %s: %s", s.Method, s.Path, s.Reason)
}

// Причины пропуска
const (
	ReasonNoAnnotation      = "no x-admin annotation"
	ReasonInvalidAnnotation = "invalid x-admin annotation"
	ReasonNoIdentity        = "neither groupName nor resourceName set"
	ReasonNoTypes           = "empty types list"
	ReasonNoResponse        = "no responses declared"
	ReasonNoContent         = "first response has no content"
	ReasonUnresolvedRef     = "unresolvable response schema reference"
)

// ErrSpecificationBuild фатальная ошибка сборки.
var ErrSpecificationBuild = errors.New("specification build error")

// ErrSourceRequired источник документа не указан.
var ErrSourceRequired = errors.New("source is required")

// SpecificationBuildError схема ответа list-операции не объект.
// Прерывает разбор целиком.
type SpecificationBuildError struct {
	Path   string
	Method string
	Kind   string
}

func (e *SpecificationBuildError) Error() string {
	kind := e.Kind
	if kind == "" {
		kind = "untyped"
	}
	return fmt.Sprintf("%s %s: list response schema must be an object, got %s", e.Method, e.Path, kind)
}

// Is позволяет проверять errors.Is(err, ErrSpecificationBuild).
func (e *SpecificationBuildError) Is(target error) bool {
	return target == ErrSpecificationBuild
}
