package generation

import "github.com/google/generative-ai-go/genai"

// Structured-output schemas declared to the provider. The provider is
// expected to honor field names, types, enumerations, and required lists;
// responses are re-checked against the embedded JSON Schemas where the
// operation propagates failures.

func stringArray(description string) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeArray,
		Items:       &genai.Schema{Type: genai.TypeString},
		Description: description,
	}
}

func parseHistorySchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"experiences": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title":          {Type: genai.TypeString},
						"company":        {Type: genai.TypeString},
						"startDate":      {Type: genai.TypeString},
						"endDate":        {Type: genai.TypeString},
						"rawDescription": {Type: genai.TypeString},
					},
					Required: []string{"title", "company", "rawDescription"},
				},
			},
		},
	}
}

func enrichExperienceSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"industry":     {Type: genai.TypeString},
			"sector":       {Type: genai.TypeString},
			"products":     stringArray(""),
			"aboutCompany": {Type: genai.TypeString},
			"starBullets":  stringArray(""),
			"hardSkills":   stringArray(""),
			"softSkills":   stringArray(""),
		},
		Required: []string{"starBullets", "hardSkills", "softSkills"},
	}
}

func structuredDataSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"skills":         stringArray(""),
			"tangibleSkills": stringArray("Concrete, measurable competencies and achievements"),
			"competencies":   stringArray(""),
			"qualifications": stringArray("Educational credentials, certifications"),
			"tools":          stringArray(""),
			"experienceLevel": {
				Type: genai.TypeString,
				Enum: []string{"Junior", "Mid-Level", "Senior", "Lead", "Executive"},
			},
			"seniority":      {Type: genai.TypeString},
			"summaryBullets": stringArray("Key responsibilities and requirements summarized as bullet points"),
			"industry":       {Type: genai.TypeString, Description: "The primary industry of the job (e.g. Fintech, Healthcare, E-commerce)"},
			"jobType":        {Type: genai.TypeString, Description: "Job type (e.g. Full-time, Contract, Remote, Hybrid)"},
		},
		Required: []string{"skills", "competencies", "experienceLevel", "summaryBullets"},
	}
}

func fitAnalysisSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"score":              {Type: genai.TypeNumber, Description: "Match score between 0 and 100"},
			"gapAnalysis":        stringArray("List of missing skills or qualifications"),
			"strengths":          stringArray("List of matching strong points"),
			"summary":            {Type: genai.TypeString, Description: "Brief summary of the fit analysis"},
			"recommendedActions": stringArray("Specific actions to close gaps"),
		},
		Required: []string{"score", "gapAnalysis", "strengths", "summary", "recommendedActions"},
	}
}

func atsReportSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"score":       {Type: genai.TypeNumber},
			"issues":      stringArray(""),
			"suggestions": stringArray(""),
		},
	}
}
