package models

// ParamType is the declared type of an endpoint parameter.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamNumber  ParamType = "number"
	ParamBoolean ParamType = "boolean"
	ParamObject  ParamType = "object"
	ParamArray   ParamType = "array"
)

// Parameter declares one input an endpoint accepts, with its validation
// constraints. Min/Max apply to numbers (value) and strings (length).
// Validation does not recurse into object or array element shapes.
type Parameter struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Required    bool      `json:"required"`
	Description string    `json:"description,omitempty"`
	Min         *float64  `json:"min,omitempty"`
	Max         *float64  `json:"max,omitempty"`
	Pattern     string    `json:"pattern,omitempty"`
	Enum        []string  `json:"enum,omitempty"`
}

// ResponseDoc documents one possible response of an endpoint. It feeds the
// documentation read model only and is not enforced at runtime.
type ResponseDoc struct {
	Status      int    `json:"status"`
	Description string `json:"description"`
	Example     any    `json:"example,omitempty"`
}

// Envelope is the success payload returned by handlers and the pipeline:
// the resource data plus pagination for list endpoints.
type Envelope struct {
	Data       any         `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination describes the window a list response covers.
type Pagination struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
