package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const proposalSchemaURL = "https://taskflow.local/schemas/proposals.schema.json"

const proposalSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["title", "category"],
    "properties": {
      "title":    {"type": "string", "minLength": 1},
      "category": {"enum": ["Work", "Personal", "Health", "Learning", "Finance"]},
      "status":   {"enum": ["todo", "in-progress", "done"]}
    }
  }
}`

var compiledProposals = mustCompile(proposalSchemaURL, proposalSchema)

// generatedStatuses are the statuses a model may propose. A proposal
// without one becomes todo in Materialize.
var generatedStatuses = []string{"todo", "in-progress", "done"}

func mustCompile(url, schema string) *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(url, strings.NewReader(schema)); err != nil {
		panic(fmt.Sprintf("proposal schema load failed: %v", err))
	}
	return c.MustCompile(url)
}

// stripFences removes a markdown code fence some models wrap JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// parseProposals decodes model output. Both a bare array and an object with
// a "tasks" array are accepted; anything else is rejected whole.
func parseProposals(text string) ([]Proposal, error) {
	var doc any
	if err := json.Unmarshal([]byte(stripFences(text)), &doc); err != nil {
		return nil, fmt.Errorf("%w: response is not JSON: %v", ErrGeneration, err)
	}
	if obj, ok := doc.(map[string]any); ok {
		if tasks, ok := obj["tasks"]; ok {
			doc = tasks
		}
	}
	if err := compiledProposals.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: unexpected response shape: %v", ErrGeneration, err)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	proposals := []Proposal{}
	if err := json.Unmarshal(raw, &proposals); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return proposals, nil
}
