package models

// Skill is a single skill extracted from a résumé.
type Skill struct {
	Name        string `json:"name"`
	Category    string `json:"category"` // "technical" or "soft"
	Proficiency int    `json:"proficiency"`
}

// Experience summarizes the candidate's work history.
type Experience struct {
	Level   string `json:"level"` // fresher, junior, mid, senior
	Years   int    `json:"years"`
	Summary string `json:"summary"`
}

// Education holds degree information; fields may be empty or "Not specified".
type Education struct {
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	Institution string `json:"institution"`
}

// CareerPrediction is one predicted career domain. The sequence is ordered
// descending by probability; consumers treat the first element as best match.
type CareerPrediction struct {
	Domain      string   `json:"domain"`
	Probability int      `json:"probability"`
	Description string   `json:"description"`
	TopRoles    []string `json:"topRoles"`
}

// SkillGap names a missing skill and why it matters.
type SkillGap struct {
	Skill      string `json:"skill"`
	Importance string `json:"importance"` // high, medium, low
	Reason     string `json:"reason"`
}

// ContributingFactor is one entry in the explainability breakdown.
type ContributingFactor struct {
	Factor string  `json:"factor"`
	Impact string  `json:"impact"` // positive or negative
	Weight float64 `json:"weight"`
}

// Explanation is the explainable-AI narrative attached to a result.
type Explanation struct {
	Summary                string               `json:"summary"`
	Strengths              []string             `json:"strengths"`
	Improvements           []string             `json:"improvements"`
	TopContributingFactors []ContributingFactor `json:"topContributingFactors"`
}

// RoadmapItem is a single goal in the career roadmap.
type RoadmapItem struct {
	Goal     string `json:"goal"`
	Duration string `json:"duration"`
	Priority string `json:"priority"` // high, medium, low
}

// Roadmap groups goals by horizon.
type Roadmap struct {
	ShortTerm []RoadmapItem `json:"shortTerm"`
	MidTerm   []RoadmapItem `json:"midTerm"`
	LongTerm  []RoadmapItem `json:"longTerm"`
}

// AnalysisResult is the full model-produced analysis of one résumé.
// Field names mirror the JSON schema the providers are prompted with.
type AnalysisResult struct {
	Skills            []Skill            `json:"skills"`
	Experience        Experience         `json:"experience"`
	Education         Education          `json:"education"`
	CareerPredictions []CareerPrediction `json:"careerPredictions"`
	SkillGaps         []SkillGap         `json:"skillGaps"`
	ReadinessScore    int                `json:"readinessScore"`
	Explanation       Explanation        `json:"explanation"`
	Roadmap           Roadmap            `json:"roadmap"`
}

// Normalize replaces nil slices with empty ones so every top-level key
// serializes even when the model omitted a section.
func (r *AnalysisResult) Normalize() {
	if r.Skills == nil {
		r.Skills = []Skill{}
	}
	if r.CareerPredictions == nil {
		r.CareerPredictions = []CareerPrediction{}
	}
	for i := range r.CareerPredictions {
		if r.CareerPredictions[i].TopRoles == nil {
			r.CareerPredictions[i].TopRoles = []string{}
		}
	}
	if r.SkillGaps == nil {
		r.SkillGaps = []SkillGap{}
	}
	if r.Explanation.Strengths == nil {
		r.Explanation.Strengths = []string{}
	}
	if r.Explanation.Improvements == nil {
		r.Explanation.Improvements = []string{}
	}
	if r.Explanation.TopContributingFactors == nil {
		r.Explanation.TopContributingFactors = []ContributingFactor{}
	}
	if r.Roadmap.ShortTerm == nil {
		r.Roadmap.ShortTerm = []RoadmapItem{}
	}
	if r.Roadmap.MidTerm == nil {
		r.Roadmap.MidTerm = []RoadmapItem{}
	}
	if r.Roadmap.LongTerm == nil {
		r.Roadmap.LongTerm = []RoadmapItem{}
	}
}
