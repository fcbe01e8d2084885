package judge

import "fmt"

const evaluationPromptTemplate = `You are an expert evaluator assessing the quality of an LLM's response.

Original User Query:
%s

Model's Response:
%s

Model Being Evaluated: %s

Rate this response on the following criteria (0-100 for each):
1. **Correctness** - Is the information factually accurate?
2. **Helpfulness** - Does it fully address the user's query?
3. **Instruction Following** - Does it follow the prompt's requirements?

Also identify:
- **Strengths** - What did the model do well?
- **Weaknesses** - What could be improved?

Return your evaluation in JSON format:
{
    "score": <overall score 0-100>,
    "correctness": <0-100>,
    "helpfulness": <0-100>,
    "instruction_following": <0-100>,
    "strengths": ["strength1", "strength2"],
    "weaknesses": ["weakness1", "weakness2"],
    "reasoning": "Brief explanation of overall score"
}

Be objective, precise, and constructive.`

const comparisonPromptTemplate = `You are an expert evaluator comparing two LLM responses to the same prompt.

Original User Query:
%s

Response A (%s):
%s

Response B (%s):
%s

Determine which response is better and by how much.

Consider:
- Correctness and accuracy
- Completeness and helpfulness
- Clarity and coherence
- Following instructions

Return your comparison in JSON format:
{
    "winner": "<model_a or model_b>",
    "confidence": "<HIGH, MEDIUM, or LOW>",
    "margin": <score difference 0-100>,
    "reasoning": "Explanation of why winner is better"
}

Be objective and fair.`

func evaluationPrompt(promptText, output, modelName string) string {
	return fmt.Sprintf(evaluationPromptTemplate, promptText, output, modelName)
}

func comparisonPrompt(promptText, modelA, outputA, modelB, outputB string) string {
	return fmt.Sprintf(comparisonPromptTemplate, promptText, modelA, outputA, modelB, outputB)
}
