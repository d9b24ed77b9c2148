package ai

import (
	"unicode/utf8"

	"github.com/careerlens/careerlens/pkg/models"
)

// compactSystemPrompt is tuned for small local models: no rule text, terse
// field examples, so generation stays within the response-length cap.
const compactSystemPrompt = `Analyze resume. Return ONLY valid JSON:
{
  "skills": [{"name": "X", "category": "technical", "proficiency": 80}],
  "experience": {"level": "mid", "years": 3, "summary": "Brief summary"},
  "education": {"degree": "X", "field": "X", "institution": "X"},
  "careerPredictions": [{"domain": "X", "probability": 60, "description": "X", "topRoles": ["X"]}],
  "skillGaps": [{"skill": "X", "importance": "high", "reason": "X"}],
  "readinessScore": 70,
  "explanation": {"summary": "X", "strengths": ["X"], "improvements": ["X"], "topContributingFactors": [{"factor": "X", "impact": "positive", "weight": 30}]},
  "roadmap": {"shortTerm": [{"goal": "X", "duration": "1 month", "priority": "high"}], "midTerm": [{"goal": "X", "duration": "6 months", "priority": "medium"}], "longTerm": [{"goal": "X", "duration": "1 year", "priority": "low"}]}
}
Respond with JSON only. No markdown.`

// fullSystemPrompt is for hosted models and carries the behavioral rules.
const fullSystemPrompt = `You are an expert career counselor and resume analyst.

Analyze the given resume text carefully and respond ONLY with valid JSON in the exact schema below.
Do not add any explanations. Do not wrap in markdown. Output JSON only.

Rules:
- Use resume content to determine skills, domain, scores
- Different resumes MUST produce different results
- Probabilities must sum to 100
- Be realistic (no exaggeration)

JSON schema:
{
  "skills": [
    {"name": "Skill", "category": "technical|soft", "proficiency": number}
  ],
  "experience": {
    "level": "fresher|junior|mid|senior",
    "years": number,
    "summary": "string"
  },
  "education": {
    "degree": "string",
    "field": "string",
    "institution": "string"
  },
  "careerPredictions": [
    {
      "domain": "string",
      "probability": number,
      "description": "string",
      "topRoles": ["string"]
    }
  ],
  "skillGaps": [
    {"skill": "string", "importance": "low|medium|high", "reason": "string"}
  ],
  "readinessScore": number,
  "explanation": {
    "summary": "string",
    "strengths": ["string"],
    "improvements": ["string"],
    "topContributingFactors": [
      {"factor": "string", "impact": "positive|negative", "weight": number}
    ]
  },
  "roadmap": {
    "shortTerm": [{"goal": "string", "duration": "string", "priority": "high|medium|low"}],
    "midTerm": [{"goal": "string", "duration": "string", "priority": "high|medium|low"}],
    "longTerm": [{"goal": "string", "duration": "string", "priority": "high|medium|low"}]
  }
}`

// truncationMarker is appended whenever résumé text is cut, so the model
// knows content is missing.
const truncationMarker = "\n[truncated]"

// BuildPrompt produces the completion request for one provider family.
// maxResumeChars bounds the embedded résumé text (0 disables truncation);
// it is a pure function of its inputs.
func BuildPrompt(variant, resumeText string, maxResumeChars int) models.CompletionRequest {
	system := fullSystemPrompt
	if variant == models.VariantCompact {
		system = compactSystemPrompt
	}
	return models.CompletionRequest{
		SystemPrompt: system,
		UserPrompt:   "RESUME:\n" + truncateResume(resumeText, maxResumeChars),
	}
}

// truncateResume cuts s to max bytes without splitting UTF-8 runes and
// marks the cut.
func truncateResume(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max] + truncationMarker
}
