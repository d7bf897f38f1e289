// Package heuristic provides deterministic fallbacks for the model-backed
// analyzers. They produce usable results from keyword matching and simple
// arithmetic so the pipeline keeps moving when the model is unavailable.
package heuristic

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/odellis/hireflow/internal/ai"
	"go.uber.org/zap"
)

var commonSkills = []string{
	"Python", "JavaScript", "React", "Node.js", "Java",
	"SQL", "Docker", "AWS", "Git", "HTML", "CSS",
}

var yearPattern = regexp.MustCompile(`20\d{2}`)

// CVAnalyzer produces a CV analysis without calling any model. The match
// score signals which path produced the result: 75 when falling back from a
// failed model call with CV text present, 50 when no CV text was available.
type CVAnalyzer struct {
	logger *zap.Logger
}

func NewCVAnalyzer(lg *zap.Logger) *CVAnalyzer {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &CVAnalyzer{logger: lg}
}

func (a *CVAnalyzer) AnalyzeCV(_ context.Context, candidateName, cvText, _ string) (*ai.CVAnalysis, error) {
	cvText = strings.TrimSpace(cvText)
	if candidateName == "" {
		candidateName = "the candidate"
	}

	a.logger.Info("creating fallback cv analysis", zap.String("candidate_name", candidateName))

	if cvText == "" {
		return &ai.CVAnalysis{
			CandidateName:     candidateName,
			Education:         "Not provided",
			MatchScore:        50,
			Summary:           "CV not provided - general interview questions generated",
			Questions:         basicQuestions(candidateName, nil),
			EstimatedDuration: "30 minutes",
			FocusAreas:        []string{"Background", "Experience", "Technical skills", "Motivation", "Cultural fit"},
		}, nil
	}

	skills := extractSkills(cvText)
	years := estimateExperienceYears(cvText)

	return &ai.CVAnalysis{
		CandidateName:     candidateName,
		KeySkills:         skills,
		ExperienceYears:   years,
		Education:         "Not specified",
		Highlights:        []string{"Experience with modern technologies", "Professional background"},
		MatchScore:        75,
		Summary:           fallbackSummary(candidateName, years, skills),
		Questions:         basicQuestions(candidateName, skills),
		EstimatedDuration: "30 minutes",
		FocusAreas:        []string{"Background", "Experience", "Technical skills", "Teamwork", "Motivation"},
	}, nil
}

func extractSkills(cvText string) []string {
	upper := strings.ToUpper(cvText)
	var skills []string
	for _, skill := range commonSkills {
		if strings.Contains(upper, strings.ToUpper(skill)) {
			skills = append(skills, skill)
		}
	}
	return skills
}

// estimateExperienceYears takes the span between the earliest and latest
// four-digit years mentioned in the text. Zero when fewer than two years
// appear.
func estimateExperienceYears(cvText string) int {
	matches := yearPattern.FindAllString(cvText, -1)
	if len(matches) < 2 {
		return 0
	}

	minYear, maxYear := 0, 0
	for _, m := range matches {
		year, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		if minYear == 0 || year < minYear {
			minYear = year
		}
		if year > maxYear {
			maxYear = year
		}
	}

	return maxYear - minYear
}

func fallbackSummary(candidateName string, years int, skills []string) string {
	return fmt.Sprintf("Fallback analysis generated - %s appears to have %d years of experience with skills in %s.",
		candidateName, years, skillsPhrase(skills))
}

func skillsPhrase(skills []string) string {
	if len(skills) == 0 {
		return "various technologies"
	}
	if len(skills) > 3 {
		skills = skills[:3]
	}
	return strings.Join(skills, ", ")
}

func basicQuestions(candidateName string, skills []string) []ai.InterviewQuestion {
	return []ai.InterviewQuestion{
		{
			Question:      fmt.Sprintf("Hi %s, can you tell me about yourself and your background?", candidateName),
			Purpose:       "Opening question to get candidate comfortable and understand their background",
			FollowUpHints: "Listen for key experiences, skills, and career progression",
		},
		{
			Question:      "What attracted you to apply for this position?",
			Purpose:       "Understand candidate motivation and interest",
			FollowUpHints: "Look for genuine interest vs generic answers",
		},
		{
			Question:      "Can you walk me through your most recent work experience?",
			Purpose:       "Understand current/recent role and responsibilities",
			FollowUpHints: "Ask about specific projects, challenges, achievements",
		},
		{
			Question:      fmt.Sprintf("I see you have experience with %s. Can you tell me more about that?", skillsPhrase(skills)),
			Purpose:       "Assess technical capabilities based on CV",
			FollowUpHints: "Ask for specific examples of how they've used these skills",
		},
		{
			Question:      "Describe a challenging project you've worked on recently.",
			Purpose:       "Evaluate problem-solving abilities and technical depth",
			FollowUpHints: "Focus on their role, approach, and outcome",
		},
		{
			Question:      "How do you approach learning new technologies?",
			Purpose:       "Assess learning mindset and adaptability",
			FollowUpHints: "Look for concrete examples of continuous learning",
		},
		{
			Question:      "Tell me about a time you had to collaborate with team members to solve a problem.",
			Purpose:       "Evaluate teamwork and communication skills",
			FollowUpHints: "Focus on their communication and conflict resolution",
		},
		{
			Question:      "What are your career goals for the next few years?",
			Purpose:       "Understand career aspirations and alignment with role",
			FollowUpHints: "See if goals align with company growth opportunities",
		},
		{
			Question:      "Why are you looking for a new opportunity?",
			Purpose:       "Understand motivation for job change",
			FollowUpHints: "Listen for red flags vs legitimate career advancement",
		},
		{
			Question:      "What questions do you have about our company or this role?",
			Purpose:       "Assess level of research and genuine interest",
			FollowUpHints: "Quality questions indicate preparation and interest",
		},
	}
}
