package plan

import "fmt"

const (
	buildPrefixFormat = "The user wants to build: %s. "

	imageInstruction = "Analyze the provided image and provide detailed step-by-step instructions on how to build what is shown. "

	constructionTemplate = `Break down the construction process into logical phases including: foundation, framing, exterior work, interior work, and finishing. Be specific and technical, as if explaining to a construction team.

For EACH phase, provide:
1. A detailed technical description of what needs to be built
2. List of required materials
3. List of tools and equipment needed
4. Step-by-step construction instructions
5. Important safety considerations
6. Quality control checkpoints

Format the response as structured text. Provide only technical information. Do not include questions, conversational phrases, or offers of additional help.`

	blueprintTemplate = `BLUEPRINT REQUEST: Generate detailed technical blueprint diagrams for each construction phase based on this plan: %s

For EACH construction phase, create a technical blueprint showing:
1. Detailed ASCII/diagram-based technical drawings with:
   - Scale diagrams and architectural views (top view, side view, elevation)
   - Exact measurements and dimensions (use imperial and metric)
   - Material specifications and thicknesses
   - Connection details and joint specifications
   - Reference lines, grid coordinates, and orientation markers

2. Technical specifications including:
   - Material grades and sizes
   - Load-bearing capacities
   - Structural requirements
   - Reinforcement details

3. Assembly instructions:
   - Step-by-step assembly sequence with diagram references
   - Tool requirements for each step
   - Quality control checkpoints

Create these blueprints using ASCII art, technical symbols, and detailed annotations as you would see on professional construction blueprints. Each diagram should be clear, technical, and include all necessary dimensions for construction.`

	fallbackResponse = "Unable to generate response"
)

// buildPromptText assembles the text content part.
// Blueprint requests are forwarded as is; anything else is wrapped into the
// construction plan instructions.
func buildPromptText(text string, hasImage, blueprint bool) string {
	if blueprint {
		return text
	}

	var prompt string
	if text != "" {
		prompt = fmt.Sprintf(buildPrefixFormat, text)
	}
	if hasImage {
		prompt += imageInstruction
	}

	return prompt + constructionTemplate
}

func blueprintPrompt(plan string) string {
	return fmt.Sprintf(blueprintTemplate, plan)
}
