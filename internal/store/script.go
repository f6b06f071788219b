package store

import "strings"

// Script document types for the funcs and modes collections. These share
// the document and version lifecycle with components but hold source text
// instead of a component tree.
const (
	TypeFunc = "Func"
	TypeMode = "Mode"
)

// FuncDetails is the listing summary of a func document.
type FuncDetails struct {
	Lines  int      `json:"lines"`
	Inputs []string `json:"inputs"`
}

// ModeDetails is the listing summary of a mode document.
type ModeDetails struct {
	Lines int `json:"lines"`
}

func countLines(content string) int {
	if content == "" {
		return 0
	}
	return strings.Count(content, "\n") + 1
}

// FuncMeta derives the document listing fields for a func.
func FuncMeta(name, description string, tags, inputs []string, content string) Meta {
	if inputs == nil {
		inputs = []string{}
	}
	return Meta{
		Type:        TypeFunc,
		Name:        name,
		Description: description,
		Tags:        tags,
		Details:     FuncDetails{Lines: countLines(content), Inputs: inputs},
	}
}

// ModeMeta derives the document listing fields for a mode.
func ModeMeta(name, description string, tags []string, content string) Meta {
	return Meta{
		Type:        TypeMode,
		Name:        name,
		Description: description,
		Tags:        tags,
		Details:     ModeDetails{Lines: countLines(content)},
	}
}
