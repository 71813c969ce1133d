package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sells-group/sme-outreach/internal/model"
)

// urlPlaceholder stands in for the deployed URL in email prompts when the SME
// has not been deployed yet.
const urlPlaceholder = "[WEBSITE_URL]"

const websiteSystem = `You are a web designer producing a complete single-file website for a small business. Respond with one self-contained HTML document: inline CSS, no external assets, no JavaScript frameworks. The page must have a hero section, an about section, a products or services section, and a contact section. Write the copy in a warm, professional tone that fits the business. Respond with the HTML document only.`

const emailSystem = `You are writing a short outreach email to a small business owner, introducing a website that has been built for their business. Respond with a JSON object {"subject": "...", "body": "..."} and nothing else. The tone is friendly and concrete, not salesy. The body is plain text, at most 150 words, and must mention the website link exactly once.`

func websitePrompt(sme *model.SME) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Build a website for this business:\n\n%s\n", profileJSON(sme))
	if len(sme.Languages) > 0 {
		fmt.Fprintf(&b, "\nWrite the page copy in %s.\n", sme.Languages[0])
	}
	return b.String()
}

func emailPrompt(sme *model.SME) string {
	url := sme.DeployedURL
	if url == "" {
		url = urlPlaceholder
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Business profile:\n\n%s\n", profileJSON(sme))
	fmt.Fprintf(&b, "\nTheir new website is at: %s\n", url)
	if sme.OwnerName != "" {
		fmt.Fprintf(&b, "Address the owner, %s, by name.\n", sme.OwnerName)
	}
	return b.String()
}

// profileJSON renders the SME as indented JSON for prompt embedding. Internal
// identifiers are stripped so the model is not tempted to echo them.
func profileJSON(sme *model.SME) string {
	trimmed := *sme
	trimmed.ID = ""
	trimmed.CountryID = ""
	out, err := json.MarshalIndent(trimmed, "", "  ")
	if err != nil {
		return sme.Name
	}
	return string(out)
}
