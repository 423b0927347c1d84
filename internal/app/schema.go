package app

import (
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// categoryListSchema describes the persisted category array.
const categoryListSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id", "name", "color"],
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"name": {"type": "string"},
			"color": {"type": "string"}
		}
	}
}`

// todoListSchema describes the persisted todo array.
const todoListSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id", "text", "checked", "sort"],
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"text": {"type": "string"},
			"checked": {"type": "boolean"},
			"sort": {"type": "integer"},
			"categoryId": {"type": "string"}
		}
	}
}`

var (
	categoryListValidator = jsonschema.MustCompileString("checklist-categories.json", categoryListSchema)
	todoListValidator     = jsonschema.MustCompileString("checklist-todos.json", todoListSchema)
)

// CategoryListSchema returns the compiled schema for persisted categories.
func CategoryListSchema() *jsonschema.Schema {
	return categoryListValidator
}

// TodoListSchema returns the compiled schema for persisted todos.
func TodoListSchema() *jsonschema.Schema {
	return todoListValidator
}
