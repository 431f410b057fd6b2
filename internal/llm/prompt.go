package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"toxedit/internal/models"
	"toxedit/internal/schema"
)

const patchSystemPrompt = `You are a JSON Patch operation generator for toxicology data.

Your task: generate a JSON array of RFC 6902 patch operations that applies the user's instruction to the record.

RULES:
1. For list fields use "/<field>/-" to append and "/<field>/0" to replace the first entry.
2. Evidence entries (%s) must be complete objects with reference, data, source, statement, replaced.
3. Metric entries (%s) carry value, unit, source; the value is extracted EXACTLY from the instruction.
4. Scalar fields: "/inci", "/cas", "/category", "/isSkip".
5. Return ONLY the JSON array, no explanations.

EXAMPLES:
Instruction: "Set NOAEL to 100 mg/kg"
[{"op":"add","path":"/NOAEL/-","value":{"value":100,"unit":"mg/kg","source":"","type":"NOAEL","note":null,"experiment_target":null,"study_duration":null}}]

Instruction: "Update INCI name to Sodium Lauryl Sulfate"
[{"op":"replace","path":"/inci","value":"Sodium Lauryl Sulfate"}]`

const fullUpdateSystemPrompt = `You are a toxicology data specialist for cosmetic ingredients.

Return ONLY a JSON object containing the top-level fields that change, never the whole record.

RULES:
1. Metric fields (%s) are returned as the complete new list.
2. Evidence fields (%s) are returned as ONLY the new entries to append; each entry is a complete object with reference, data, source, statement, replaced.
3. Field names are lowercase except the metric fields.
4. Values are extracted exactly from the instruction; fields the instruction does not mention are null.
5. No placeholders, no explanations, valid JSON only.`

const extractSystemPrompt = `You extract structured toxicology payloads from pasted correction-form text.

Return ONLY a JSON object. For each metric present in the text include a key:
  "noael": {"value": <number>, "unit": "...", "source": "...", "experiment_target": "...", "study_duration": "...", "reference_title": "...", "reference_link": null, "note": null, "statement": null}
  "dap":   {"value": <number>, "source": "...", "experiment_target": "...", "study_duration": "...", "reference_title": "...", "reference_link": null, "note": null, "statement": null}
If the text contains no NOAEL or DAP data, return {}.`

const classifySystemPrompt = `Classify the user input into exactly one of these categories:
- NLI_EDIT: simple editing instruction (e.g. "Change source to FDA")
- FORM_EDIT_STRUCTURED: contains JSON or structured form data
- FORM_EDIT_RAW: raw text with toxicity data needing extraction (NOAEL values, study data, ...)
- NO_EDIT: questions or non-edit requests

Respond with ONLY the category name.`

func buildPatchPrompts(record models.Record, instruction, inci string) (string, string) {
	system := fmt.Sprintf(patchSystemPrompt,
		strings.Join(schema.EvidenceFields, ", "),
		strings.Join(schema.MetricFields, ", "))

	recordJSON, _ := json.MarshalIndent(record, "", "  ")
	user := fmt.Sprintf("Current record:\n%s\n\nCurrent INCI: %s\n\nUser instruction: %q\n\nGenerate the patch operations:",
		recordJSON, inci, instruction)
	return system, user
}

func buildFullUpdatePrompts(record models.Record, instruction, inci string) (string, string) {
	system := fmt.Sprintf(fullUpdateSystemPrompt,
		strings.Join(schema.MetricFields, ", "),
		strings.Join(schema.EvidenceFields, ", "))

	recordJSON, _ := json.MarshalIndent(record, "", "  ")
	user := fmt.Sprintf("Current record for INCI %s:\n%s\n\nUser instruction:\n%s\n\nReturn only the fields to update:",
		inci, recordJSON, instruction)
	return system, user
}
