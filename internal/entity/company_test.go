package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompany_EnsureDefaults(t *testing.T) {
	tests := []struct {
		name            string
		in              Company
		wantIndustry    []string
		wantSpecialties []string
		wantSize        CompanySize
	}{
		{
			name:            "empty record gets sentinels",
			in:              Company{},
			wantIndustry:    []string{DefaultIndustry},
			wantSpecialties: []string{"business services"},
			wantSize:        SizeSmall,
		},
		{
			name:            "specialties follow the primary industry",
			in:              Company{Industry: []string{"food_service", "retail"}, Specialties: []string{}, CompanySize: SizeLarge},
			wantIndustry:    []string{"food_service", "retail"},
			wantSpecialties: []string{"food service"},
			wantSize:        SizeLarge,
		},
		{
			name:            "inferred values are kept",
			in:              Company{Industry: []string{"logistics"}, Specialties: []string{"bonded warehousing"}, CompanySize: "huge"},
			wantIndustry:    []string{"logistics"},
			wantSpecialties: []string{"bonded warehousing"},
			wantSize:        SizeSmall,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.in
			c.EnsureDefaults()
			assert.Equal(t, tt.wantIndustry, c.Industry)
			assert.Equal(t, tt.wantSpecialties, c.Specialties)
			assert.Equal(t, tt.wantSize, c.CompanySize)
		})
	}
}

func TestCompany_EnsureDefaults_SyntheticNeverVerified(t *testing.T) {
	c := Company{Synthetic: true, Verified: true}
	c.EnsureDefaults()
	assert.False(t, c.Verified)
}
