package resource

import "fmt"

// ActionType тип административного действия над группой ресурсов.
type ActionType string

const (
	ActionList   ActionType = "list"
	ActionCreate ActionType = "create"
	ActionRead   ActionType = "read"
	ActionUpdate ActionType = "update"
	ActionDelete ActionType = "delete"
	ActionSearch ActionType = "search"
)

// ActionOrder фиксированный порядок перечисления слотов группы.
var ActionOrder = []ActionType{
	ActionCreate,
	ActionRead,
	ActionUpdate,
	ActionDelete,
	ActionList,
	ActionSearch,
}

// Valid сообщает, входит ли тип в закрытый набор действий.
func (a ActionType) Valid() bool {
	switch a {
	case ActionList, ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionSearch:
		return true
	default:
		return false
	}
}

// ParseActionType разбирает строку в ActionType.
func ParseActionType(s string) (ActionType, error) {
	a := ActionType(s)
	if !a.Valid() {
		return "", fmt.Errorf("unknown action type: %q (must be list, create, read, update, delete, or search)", s)
	}
	return a, nil
}
