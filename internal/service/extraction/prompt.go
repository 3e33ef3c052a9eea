package extraction

import "fmt"

const systemMessage = "You extract structured data from documents. Always respond with valid JSON only, no markdown code blocks."

func buildPrompt(filename, text string) string {
	return fmt.Sprintf(`Analyze this grant award letter or agreement and extract every reporting requirement, compliance obligation and key term.

Document (%s):
%s

Return JSON with exactly this structure:
{
    "grant_info": {
        "award_amount": number or null,
        "grant_period_start": "YYYY-MM-DD or empty",
        "grant_period_end": "YYYY-MM-DD or empty",
        "funder_name": "name if found"
    },
    "reporting_requirements": [
        {
            "report_type": "financial|narrative|progress|final|audit|other",
            "title": "descriptive title",
            "description": "what needs to be reported",
            "due_date": "YYYY-MM-DD or empty if recurring",
            "frequency": "one-time|monthly|quarterly|semi-annual|annual"
        }
    ],
    "compliance_items": [
        {
            "requirement": "specific requirement text",
            "category": "spending|documentation|programmatic|audit|other",
            "deadline": "YYYY-MM-DD or empty if ongoing"
        }
    ],
    "restrictions": [
        "any spending or programmatic restrictions"
    ]
}

Be thorough. Typical reporting requirements are quarterly or annual financial reports, narrative and progress reports, final reports, audits and expenditure documentation. Typical compliance items are spending restrictions, match or cost-share requirements, record retention periods, prior approval requirements and acknowledgment requirements.`, filename, text)
}
