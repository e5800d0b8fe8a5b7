package registry

import (
	"fmt"
	"strings"

	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/models"
)

// Info is the OpenAPI-style information block the registry exposes for
// documentation generation. It is peripheral to the admission pipeline.
type Info struct {
	Title            string `json:"title"`
	Version          string `json:"version"`
	BaseURL          string `json:"base_url"`
	AuthHeader       string `json:"auth_header"`
	DefaultRateLimit int    `json:"default_rate_limit"`
	MaxRateLimit     int    `json:"max_rate_limit"`
}

// EndpointDoc is the read-model shape of one endpoint.
type EndpointDoc struct {
	Path        string               `json:"path"`
	Method      string               `json:"method"`
	Category    string               `json:"category"`
	Summary     string               `json:"summary,omitempty"`
	Parameters  []models.Parameter   `json:"parameters,omitempty"`
	Responses   []models.ResponseDoc `json:"responses,omitempty"`
	RateCeiling int                  `json:"rate_ceiling,omitempty"`
}

// Doc is the full documentation read model.
type Doc struct {
	Info      Info          `json:"info"`
	Endpoints []EndpointDoc `json:"endpoints"`
}

// Describe renders the catalog as its documentation read model.
func (r *Registry) Describe() Doc {
	doc := Doc{Info: r.info}
	for _, e := range r.ordered {
		doc.Endpoints = append(doc.Endpoints, EndpointDoc{
			Path:        e.Path,
			Method:      e.Method,
			Category:    e.Category,
			Summary:     e.Summary,
			Parameters:  e.Parameters,
			Responses:   e.Responses,
			RateCeiling: e.RateCeiling,
		})
	}
	return doc
}

// Info returns the documentation info block.
func (r *Registry) Info() Info {
	return r.info
}

// CodeSample renders a request-shape sample for an endpoint in the given
// language ("curl" or "go"). Rendering covers the request shape only; it
// does not execute anything.
func (r *Registry) CodeSample(e *Endpoint, lang string) (string, error) {
	switch strings.ToLower(lang) {
	case "curl":
		return r.curlSample(e), nil
	case "go":
		return r.goSample(e), nil
	default:
		return "", fmt.Errorf("unsupported sample language %q", lang)
	}
}

func (r *Registry) curlSample(e *Endpoint) string {
	var b strings.Builder
	url := r.info.BaseURL + examplePath(e)

	query := exampleQuery(e)
	if e.Method == "GET" && query != "" {
		url += "?" + query
	}

	fmt.Fprintf(&b, "curl -X %s '%s' \\\n", e.Method, url)
	fmt.Fprintf(&b, "  -H '%s: YOUR_API_KEY'", r.info.AuthHeader)

	if body := exampleBody(e); body != "" {
		b.WriteString(" \\\n  -H 'Content-Type: application/json' \\\n")
		fmt.Fprintf(&b, "  -d '%s'", body)
	}

	return b.String()
}

func (r *Registry) goSample(e *Endpoint) string {
	var b strings.Builder
	url := r.info.BaseURL + examplePath(e)

	query := exampleQuery(e)
	if e.Method == "GET" && query != "" {
		url += "?" + query
	}

	body := exampleBody(e)
	if body != "" {
		fmt.Fprintf(&b, "body := strings.NewReader(`%s`)\n", body)
		fmt.Fprintf(&b, "req, _ := http.NewRequest(%q, %q, body)\n", e.Method, url)
		b.WriteString("req.Header.Set(\"Content-Type\", \"application/json\")\n")
	} else {
		fmt.Fprintf(&b, "req, _ := http.NewRequest(%q, %q, nil)\n", e.Method, url)
	}
	fmt.Fprintf(&b, "req.Header.Set(%q, \"YOUR_API_KEY\")\n", r.info.AuthHeader)
	b.WriteString("resp, err := http.DefaultClient.Do(req)")

	return b.String()
}

// examplePath substitutes placeholder segments with example ids.
func examplePath(e *Endpoint) string {
	segments := splitPath(e.Path)
	for i, s := range segments {
		if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
			segments[i] = s[1:len(s)-1] + "_123"
		}
	}
	return "/" + strings.Join(segments, "/")
}

func exampleQuery(e *Endpoint) string {
	var parts []string
	for _, p := range e.Parameters {
		if !p.Required {
			continue
		}
		parts = append(parts, p.Name+"="+exampleValue(p))
	}
	return strings.Join(parts, "&")
}

func exampleBody(e *Endpoint) string {
	if e.Method == "GET" || e.Method == "DELETE" {
		return ""
	}
	var parts []string
	for _, p := range e.Parameters {
		switch p.Type {
		case models.ParamString:
			parts = append(parts, fmt.Sprintf("%q: %q", p.Name, exampleValue(p)))
		default:
			parts = append(parts, fmt.Sprintf("%q: %s", p.Name, exampleValue(p)))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func exampleValue(p models.Parameter) string {
	if len(p.Enum) > 0 {
		return p.Enum[0]
	}
	switch p.Type {
	case models.ParamNumber:
		if p.Min != nil {
			return fmt.Sprintf("%g", *p.Min)
		}
		return "1"
	case models.ParamBoolean:
		return "true"
	case models.ParamObject:
		return "{}"
	case models.ParamArray:
		return "[]"
	default:
		return "example"
	}
}
