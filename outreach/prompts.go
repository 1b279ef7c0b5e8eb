package outreach

import (
	"fmt"
	"strings"

	"github.com/poiesic/coldmail/core"
)

const adaptSystemPrompt = `You are an expert email writer. Adapt the provided TEMPLATE EMAIL using the COMPANY INFO and COMPANY NAME.

Rules:
- Match the template exactly in structure and tone.
- Only change company-specific details.
- Do not invent or generalize anything.
- No placeholders like [Your Company]
- Never include introductory phrases like "Here is the adapted email:"
- End with only ONE call-to-action from the approved list.
- Subject lines must NOT begin with vague verbs like "Exploring", "Discovering", "Learning about", "Understanding", etc.
- Subject lines should be relevant, natural, and specific to the company's work or industry.

Output only the subject and the email body. No extra content.`

const adaptUserPrompt = `You are given three blocks of text below. Use them to adapt the email as instructed.

===
[COMPANY NAME]
%[1]s
===
[COMPANY INFO]
%[2]s
===
[TEMPLATE EMAIL]
%[3]s
===
[TASK]
Adapt the TEMPLATE EMAIL to target the company described in COMPANY NAME and COMPANY INFO.

Incorporate the following guidelines into the adapted email:
- Tone: %[4]s
- Focus: %[5]s
- Additional Context: %[6]s

Rules:
- DO NOT write a new email.
- KEEP the EXACT SAME structure, paragraph breaks, tone, and flow.
- Only swap out company-specific parts using COMPANY INFO and use the company name "%[1]s" in all places.
- NEVER guess company names based on the description.
- NEVER include "Here is the adapted email:"
- NEVER include placeholders like [Your Company].
- Maintain same paragraph count.
- DO NOT add or remove sentences.
- Only one final call to action like:
  - "Would you be up for a conversation next week?"
  - "I'd love to hear more about [company/topic]. Would you be free for a quick chat?"
- Output ONLY the subject line and email body.

Output format:
Subject: [your subject line]

[email body only, no header or explanation]`

func adaptPrompt(company, info, template, tone, focus, extra string) string {
	return fmt.Sprintf(adaptUserPrompt, company, info, template,
		orDefault(tone, "As per template"),
		orDefault(focus, "As per template"),
		orDefault(extra, "None"))
}

const linkedInPrompt = `You are an outreach assistant writing LinkedIn messages to industry professionals.
Your goal is to start a conversation or get a short meeting. Follow these strict rules:

Message requirements:
1. Start by referencing a specific achievement or news item from the source.
2. Include an insightful question about their strategy or a challenge they might face.
3. Conclude with a prompt to discuss strategy or potential next steps.
4. Tone must be professional and investor-like (not salesy or impressed).

Content rules:
- Keep it under 60 words.
- NO greeting like 'Dear' or 'Hi Dr. ___'.
- NO subject line, sign-off or full name.
- Never use: impressed, fascinated, admire, excited, appreciate.

Company: %s

Company info:
%s
%s
Output only the LinkedIn message.`

func linkedInMessagePrompt(company, info, tone, focus, extra string) string {
	var custom strings.Builder
	if tone != "" || focus != "" || extra != "" {
		custom.WriteString("\nCustomization:\n")
		if tone != "" {
			fmt.Fprintf(&custom, "- Tone: %s\n", tone)
		}
		if focus != "" {
			fmt.Fprintf(&custom, "- Focus: %s\n", focus)
		}
		if extra != "" {
			fmt.Fprintf(&custom, "- Additional Context: %s\n", extra)
		}
	}
	return fmt.Sprintf(linkedInPrompt, company, info, custom.String())
}

// linkedInInfo prefers the website summary, then the overview, then the
// description, and appends the news summary as a highlight.
func linkedInInfo(record *core.CompanyRecord) string {
	content := record.WebsiteSummary
	if content == "" {
		content = record.CompanyOverview
	}
	if content == "" {
		content = record.Description
	}

	news := record.NewsSummary
	if news == "" && !record.News.IsStructured() {
		news = record.News.Text
	}
	if news != "" {
		content += "\n\nRecent News Highlight: " + news + "..."
	}
	return strings.TrimSpace(content)
}

const variantPrompt = `You are a strategic writing assistant for a private investment firm conducting cold outreach.

Tone: %s
Persona: %s
Focus: %s

Instructions:
- Write a 3-sentence cold outreach email.
- Start with a reference to the company, its product, or a leadership idea.
- Ask a thoughtful question based on the focus.
- End with an invitation to discuss or connect.
- Avoid salesy or generic language (no "excited", "admire", "impressed").
- No greetings or sign-offs.

Company: %s

Background context:
%s

%s

%s

Respond in this format:

Email: [3-sentence body]

Title: Discussion on [main theme 1] and [main theme 2]`

func variantModePrompt(company string, mode core.VariantMode, context, hint, extra string) string {
	return fmt.Sprintf(variantPrompt, mode.Style, capitalize(mode.Tone), mode.Focus,
		company, context, hint, extra)
}

const mergePrompt = `You're a cold outreach email assistant.

Merge the following email snippets into a single, clean, 3-4 sentence cold email.

- Maintain a %s tone.
- Preserve the strongest insights or questions from each variant.
- Focus on clarity and cohesion.
- Avoid duplication.
- Do NOT include greetings or sign-offs.

Snippets:
%s

Final Email:`

func mergeVariantsPrompt(variants []core.Variant, tone string) string {
	blocks := make([]string, 0, len(variants))
	for i, v := range variants {
		blocks = append(blocks, fmt.Sprintf("[Variant %d - Focus: %s] %s", i+1, v.Mode.Focus, v.Email))
	}
	return fmt.Sprintf(mergePrompt, tone, strings.Join(blocks, "\n\n"))
}

const revisePrompt = `You are a cold email writing assistant.

Here is a draft email:
"""%s"""

User's feedback:
"""%s"""

Please revise the email to address the feedback while keeping it professional, 3-4 sentences max, and without greetings or sign-offs. Keep the tone consistent and avoid making it too generic or verbose.

Respond with only the revised email.`

func revisionPrompt(draft, feedback string) string {
	return fmt.Sprintf(revisePrompt, draft, feedback)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
