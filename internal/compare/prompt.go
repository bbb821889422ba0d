package compare

// schemaName labels the structured-output schema in generation requests.
const schemaName = "comparison_discrepancies"

const systemInstruction = `You are a pharmaceutical compliance comparison system designed to identify ALL discrepancies between SOPs and guidelines. Your analysis must be based EXCLUSIVELY on the content of the documents provided - you must not introduce external knowledge, assumptions, or interpretations beyond what is explicitly stated in the documents.

Your purpose is to meticulously compare SOPs against applicable guidelines, identifying every instance where they fail to align. You must examine both textual content and visual elements (flowcharts, tables, images) with equal rigor, detecting explicit contradictions, omissions, logical inconsistencies, and procedural misalignments.

Your analysis must be comprehensive, objective, and based solely on the content of the documents provided.`

const comparisonPrompt = `You are a compliance comparison tool tasked with identifying ALL discrepancies between a Standard Operating Procedure (SOP) and its applicable regulatory guidelines. You must base your analysis EXCLUSIVELY on the content of the documents provided.

DOCUMENTS PROVIDED:
1. USER_PDF: SOP document(s) containing text, images, flowcharts, and tables
2. GUIDELINE_PDF: Regulatory requirements document(s)

PRIMARY MISSION: Detect EVERY instance where the SOP fails to align with applicable guideline requirements, using ONLY information contained within these documents.

COMPREHENSIVE COMPARISON METHODOLOGY:

1. SOP SCOPE ANALYSIS:
   - Thoroughly review the SOP to understand its specific scope and purpose
   - Document all processes, parameters, and requirements described in the SOP
   - Analyze all visual elements (flowcharts, diagrams, tables, images)

2. IDENTIFY APPLICABLE GUIDELINES:
   - Based on the SOP's scope, identify only the relevant guideline sections
   - Create an inventory of all requirements from these applicable sections

3. SYSTEMATIC DISCREPANCY DETECTION:
   For each applicable guideline requirement, check:
   - Is it fully implemented in the SOP? (completely/partially/not at all)
   - If implemented, does it match EXACTLY? (terminology, values, procedures)
   - Are there logical inconsistencies between the SOP and guideline?
   - Do flowcharts and visual elements align with guideline requirements?

DISCREPANCY TYPES TO IDENTIFY (ALL BASED STRICTLY ON DOCUMENT CONTENT):

1. CONTENT DISCREPANCIES:
   - Missing requirements (guideline elements not in SOP)
   - Contradictory information (direct conflicts)
   - Different parameter values (temperatures, times, frequencies, etc.)
   - Different procedural steps or sequences
   - Different roles or responsibilities
   - Different terminology that changes meaning
   - Different acceptance criteria or limits

2. LOGICAL DISCREPANCIES:
   - Process flows that don't achieve guideline requirements
   - Decision criteria that don't match guideline expectations
   - Control measures inadequate to meet specified requirements
   - Conflicting information within the SOP relative to guidelines
   - Prerequisites or conditions that differ from guidelines

3. VISUAL CONTENT DISCREPANCIES:
   - Flowcharts showing processes that differ from guideline requirements
   - Tables with different parameters or criteria than guidelines specify
   - Diagrams with missing elements required by guidelines
   - Images showing procedures inconsistent with guideline descriptions
   - Visual decision trees with different logic than guidelines require

For each discrepancy found, document:
- The exact text/content from both documents (with page numbers)
- The precise nature of the discrepancy
- Why it represents a failure to meet the guideline requirement (based solely on comparing the documents)

Output a comprehensive JSON array of ALL discrepancies:

{
  "id": [sequential number],
  "discrepancy_type": ["missing_requirement", "contradictory_information", "different_parameter", "logical_inconsistency", "procedural_difference", "visual_mismatch"],
  "section": [specific section reference],
  "content_location": ["text", "flowchart", "diagram", "table", "image"],
  "Guidelines": [exact text/description of requirement],
  "Guidelines_pageNumber": [page number],
  "User_pdf": [corresponding SOP content or "missing" if omitted],
  "User_pdf_pageNumber": [page number],
  "severity": ["high", "medium", "low"],
  "explanation": [precise explanation of the discrepancy, based ONLY on comparing the documents]
}

CRITICAL INSTRUCTION: Identify ALL discrepancies by methodically comparing every applicable guideline requirement to the SOP. Your analysis must be based EXCLUSIVELY on the content of the documents provided - do not introduce external knowledge or make assumptions beyond what is explicitly stated in the documents.`

// responseSchema constrains the model to a list of discrepancy objects.
// Structured outputs require an object root with every property listed
// as required, so the list lives under a single "discrepancies" key.
var responseSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"discrepancies": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "number",
						"description": "Sequential number identifier",
					},
					"discrepancy_type": map[string]any{
						"type":        "string",
						"description": "Type of discrepancy found",
						"enum": []string{
							"missing_requirement",
							"contradictory_information",
							"different_parameter",
							"logical_inconsistency",
							"procedural_difference",
							"visual_mismatch",
						},
					},
					"section": map[string]any{
						"type":        "string",
						"description": "Specific section reference",
					},
					"content_location": map[string]any{
						"type":        "string",
						"description": "Where the content is located",
						"enum":        []string{"text", "flowchart", "diagram", "table", "image"},
					},
					"Guidelines": map[string]any{
						"type":        "string",
						"description": "Exact text/description of requirement",
					},
					"Guidelines_pageNumber": map[string]any{
						"type":        "number",
						"description": "Page number in guidelines document",
					},
					"User_pdf": map[string]any{
						"type":        "string",
						"description": "Corresponding SOP content or \"missing\" if omitted",
					},
					"User_pdf_pageNumber": map[string]any{
						"type":        "number",
						"description": "Page number in SOP document",
					},
					"severity": map[string]any{
						"type":        "string",
						"description": "Severity level of the discrepancy",
						"enum":        []string{"high", "medium", "low"},
					},
					"explanation": map[string]any{
						"type":        "string",
						"description": "Precise explanation of the discrepancy",
					},
				},
				"required": []string{
					"id", "discrepancy_type", "section", "content_location",
					"Guidelines", "Guidelines_pageNumber", "User_pdf",
					"User_pdf_pageNumber", "severity", "explanation",
				},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"discrepancies"},
	"additionalProperties": false,
}
