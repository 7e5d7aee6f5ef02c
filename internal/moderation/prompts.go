package moderation

import (
	"fmt"

	"kutechnest/backend/internal/model"
)

const formatInstructions = `Respond with a single JSON object and nothing else:
{"is_valid": boolean, "confidence_score": number between 0 and 1, "issues": [string], "recommendations": [string], "reason": string}`

const postSystemPrompt = `You are an expert job posting validator for a university career platform that connects students with companies.

Your role is to verify if job postings are legitimate, appropriate, and suitable for student positions.

Validation Criteria:
1. The job should be suitable for students or recent graduates (internships, part-time, entry-level positions)
2. Minimum experience requirement should be reasonable for students (typically 0-2 years)
3. The job description should be clear, professional, and detailed
4. Salary should be reasonable and not suspiciously low (possible scam) or unrealistically high
5. Requirements should be realistic for student skill levels
6. The posting should not contain discriminatory language or inappropriate content
7. The job should be a real position, not a pyramid scheme, MLM, or scam

Consider Thai job market standards where appropriate.

` + formatInstructions

const companySystemPrompt = `You are a reviewer for a university career platform that connects students with companies.

Decide whether a company profile looks like a legitimate employer that students can safely apply to.

Validation Criteria:
1. The company name and description should describe a real business
2. Website and contact details should be plausible and consistent with the company
3. The profile should not contain discriminatory, offensive or misleading content
4. The company should not be a pyramid scheme, MLM, or scam

` + formatInstructions

func postUserPrompt(d PostDraft) string {
	long := d.LongDescription
	if long == "" {
		long = "Not provided"
	}
	return fmt.Sprintf(`Validate this job posting:

Title: %s
Work Field: %s
Employment Type: %s
Location: %s
Salary: %s THB
Minimum Years of Experience: %d
Requirements: %s
Description: %s
Long Description: %s

Provide a thorough validation analysis.`,
		d.Title, d.WorkField, d.EmploymentType, model.LocationLabel(d.Location),
		formatAmount(d.Salary), d.MinYear, d.Requirement, d.Description, long)
}

func companyUserPrompt(d CompanyDraft) string {
	return fmt.Sprintf(`Validate this company profile:

Name: %s
Website: %s
Location: %s
Description: %s
Contacts: %s

Provide a thorough validation analysis.`,
		d.Name, orNotProvided(d.Website), orNotProvided(d.Location),
		orNotProvided(d.Description), orNotProvided(d.Contacts))
}

func orNotProvided(s string) string {
	if s == "" {
		return "Not provided"
	}
	return s
}

// formatAmount 35000 → 35,000
func formatAmount(v int64) string {
	if v < 0 {
		return "-" + formatAmount(-v)
	}
	s := fmt.Sprintf("%d", v)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}
