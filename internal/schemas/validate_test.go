package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBytes_StructuredData(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{
			name: "valid document",
			doc: `{
				"skills": ["Go"],
				"competencies": ["Systems design"],
				"tools": [],
				"experienceLevel": "Senior",
				"seniority": "Senior",
				"summaryBullets": ["Owns backend services"]
			}`,
			wantErr: false,
		},
		{
			name:    "missing required fields",
			doc:     `{"skills": ["Go"]}`,
			wantErr: true,
		},
		{
			name: "wrong type for skills",
			doc: `{
				"skills": "Go",
				"competencies": [],
				"experienceLevel": "Senior",
				"summaryBullets": []
			}`,
			wantErr: true,
		},
		{
			name: "unknown experience level",
			doc: `{
				"skills": [],
				"competencies": [],
				"experienceLevel": "Wizard",
				"summaryBullets": []
			}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBytes(StructuredData, []byte(tt.doc))
			if tt.wantErr {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, StructuredData, ve.Schema)
				assert.NotEmpty(t, ve.Errors)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateBytes_FitAnalysis(t *testing.T) {
	valid := `{
		"score": 80,
		"gapAnalysis": ["Needs more Kubernetes"],
		"strengths": ["Go depth"],
		"summary": "Solid fit.",
		"recommendedActions": ["Quantify project outcomes"]
	}`
	assert.NoError(t, ValidateBytes(FitAnalysis, []byte(valid)))

	outOfRange := `{
		"score": 150,
		"gapAnalysis": [],
		"strengths": [],
		"summary": "",
		"recommendedActions": []
	}`
	assert.Error(t, ValidateBytes(FitAnalysis, []byte(outOfRange)))
}

func TestValidateBytes_UnknownSchema(t *testing.T) {
	err := ValidateBytes("nonexistent", []byte(`{}`))
	assert.Error(t, err)
}

func TestValidationError_Message(t *testing.T) {
	err := ValidateBytes(StructuredData, []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "structured_data validation failed")
}
