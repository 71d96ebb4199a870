// internal/workers/content-review/evaluate-content/models.go
package evaluatecontent

import "content-policy-workers/internal/models"

// Input is the submission carried in the process variables.
type Input struct {
	models.ContentSubmission
}

// Output exposes the routing fields at the top level so BPMN gateways can
// branch on them without parsing the decision.
type Output struct {
	DecisionID        string                 `json:"decisionId"`
	DecisionStatus    models.Status          `json:"decisionStatus"`
	PolicyScore       int                    `json:"policyScore"`
	ScriptureAccurate bool                   `json:"scriptureAccurate"`
	PolicyDecision    *models.PolicyDecision `json:"policyDecision"`
}

// inputSchema checks only the shape of the variables. Missing or unknown
// values are left to the engine, which turns them into a rejected decision.
const inputSchema = `{
  "type": "object",
  "required": ["contentId"],
  "properties": {
    "contentId":     {"type": "string", "minLength": 1},
    "reviewType":    {"type": "string"},
    "text":          {"type": "string"},
    "targetAgeTier": {"type": "string"},
    "contentType":   {"type": "string"},
    "content":       {"type": ["object", "array", "string", "null"]},
    "scriptureReferences": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "book":        {"type": "string"},
          "chapter":     {"type": "integer"},
          "verses":      {"type": "string"},
          "translation": {"type": "string"}
        }
      }
    }
  }
}`
