package services

import (
	"fmt"
	"strings"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"github.com/yoockh/careercoach/internal/models"
)

const interviewerSystem = "You are a senior hiring manager running a realistic mock interview. " +
	"Respond only with JSON that matches the provided schema."

func questionsPrompt(profession, resumeText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate between %d and %d interview questions for a %s candidate.\n", MinQuestions, MaxQuestions, profession)
	b.WriteString("Mix behavioral, technical and situational questions and spread them across the Basic, Intermediate and Advanced difficulty levels.\n")
	if resumeText != "" {
		b.WriteString("Tailor the questions to the candidate's background below. Reference concrete projects and skills from it.\n\n")
		b.WriteString("Resume:\n")
		b.WriteString(resumeText)
		b.WriteString("\n")
	}
	return b.String()
}

func feedbackPrompt(profession, question, answer string) string {
	return fmt.Sprintf(
		"The candidate is interviewing for a %s role.\n\nQuestion:\n%s\n\nAnswer:\n%s\n\n"+
			"Evaluate the answer. Write constructive feedback in markdown covering strengths, weaknesses "+
			"and a stronger sample answer. Score the answer from 1 (poor) to 10 (excellent).",
		profession, question, answer,
	)
}

func skillGapPrompt(resumeText string) string {
	return "Review the resume below and identify the 3 to 5 most important skills the candidate is missing " +
		"for their next career step. Then write a 4-week learning plan in markdown with one section per week.\n\n" +
		"Resume:\n" + resumeText
}

var questionsSchema = &vertexgenai.Schema{
	Type: vertexgenai.TypeObject,
	Properties: map[string]*vertexgenai.Schema{
		"questions": {
			Type: vertexgenai.TypeArray,
			Items: &vertexgenai.Schema{
				Type: vertexgenai.TypeObject,
				Properties: map[string]*vertexgenai.Schema{
					"question": {Type: vertexgenai.TypeString},
					"category": {Type: vertexgenai.TypeString, Description: "ex: Behavioral, Technical, Situational"},
					"difficulty": {
						Type: vertexgenai.TypeString,
						Enum: []string{"Basic", "Intermediate", "Advanced"},
					},
				},
				Required: []string{"question", "category", "difficulty"},
			},
		},
	},
	Required: []string{"questions"},
}

var feedbackSchema = &vertexgenai.Schema{
	Type: vertexgenai.TypeObject,
	Properties: map[string]*vertexgenai.Schema{
		"feedback": {Type: vertexgenai.TypeString, Description: "markdown"},
		"score":    {Type: vertexgenai.TypeNumber, Description: "1 to 10"},
	},
	Required: []string{"feedback", "score"},
}

var skillGapSchema = &vertexgenai.Schema{
	Type: vertexgenai.TypeObject,
	Properties: map[string]*vertexgenai.Schema{
		"missingSkills": {
			Type:  vertexgenai.TypeArray,
			Items: &vertexgenai.Schema{Type: vertexgenai.TypeString},
		},
		"learningPlan": {Type: vertexgenai.TypeString, Description: "markdown"},
	},
	Required: []string{"missingSkills", "learningPlan"},
}

const techInterviewerSystem = "You are a senior technical interviewer and expert engineer. " +
	"Respond only with JSON that matches the provided schema."

func techQuestionsPrompt(technologies []string, kind models.TechQuestionKind) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d to %d commonly asked interview questions about: %s.\n\n",
		models.MinTechQuestions, models.MaxTechQuestions, strings.Join(technologies, ", "))
	switch kind {
	case models.TechPractical:
		b.WriteString("Produce practical tasks: realistic small projects or coding challenges often given in interviews.\n")
		b.WriteString("\"question\" is the task title, ex: \"Build a Simple To-Do List App\".\n")
		b.WriteString("\"details\" must be a detailed step-by-step implementation guide in markdown, with code snippets where useful.\n")
	default:
		b.WriteString("Produce theory questions that test deep conceptual understanding, from beginner to advanced.\n")
		b.WriteString("\"details\" briefly explains in markdown the key concepts the candidate is expected to know.\n")
	}
	return b.String()
}

var techQuestionsSchema = &vertexgenai.Schema{
	Type: vertexgenai.TypeObject,
	Properties: map[string]*vertexgenai.Schema{
		"questions": {
			Type: vertexgenai.TypeArray,
			Items: &vertexgenai.Schema{
				Type: vertexgenai.TypeObject,
				Properties: map[string]*vertexgenai.Schema{
					"question": {Type: vertexgenai.TypeString},
					"details":  {Type: vertexgenai.TypeString, Description: "markdown"},
				},
				Required: []string{"question", "details"},
			},
		},
	},
	Required: []string{"questions"},
}
