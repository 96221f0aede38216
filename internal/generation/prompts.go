package generation

import (
	"fmt"
	"strings"

	"github.com/p-n-ai/pai-study/internal/ai"
)

const studyPlanSystemPrompt = `You are an expert tutor who writes personalised study plans for school students preparing for competitive and board exams.

The study plan should be detailed and actionable. For each weak area give specific steps, practice targets and resources.
Only recommend resources that are freely available on the internet.
Format the plan in Markdown with headings and bullet points.`

func studyPlanMessages(in StudyPlanInput) []ai.Message {
	user := fmt.Sprintf(
		"Generate a personalized %d-day study plan for a student in %s who is preparing for the %s exam. The student is weak in the following areas: %s. Organise the plan day by day.",
		in.StudyDays, in.Grade, in.TargetExam, strings.Join(in.WeakAreas, ", "),
	)
	return []ai.Message{
		{Role: "system", Content: studyPlanSystemPrompt},
		{Role: "user", Content: user},
	}
}

const quizSystemPrompt = `You are an expert quiz generator, skilled at creating practice quizzes for students.

Each question must be multiple choice with one clearly correct answer. The options should be plausible but only one may be correct. Avoid trick questions and ambiguous wording.

Respond with a single JSON object and nothing else, in this format:
{
  "quizTitle": "Quiz Title",
  "questions": [
    {
      "question": "Question 1",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correctAnswer": "Option A"
    }
  ]
}
"correctAnswer" must be copied exactly from "options". Vary the quiz title.`

func quizMessages(in QuizInput) []ai.Message {
	user := fmt.Sprintf(
		"The student is in %s and is preparing for the %s exam. Their weak topic is %q. Generate a quiz with exactly %d questions relevant to this topic and appropriate for their grade level.",
		in.GradeLevel, in.ExamType, in.Topic, in.NumberOfQuestions,
	)
	return []ai.Message{
		{Role: "system", Content: quizSystemPrompt},
		{Role: "user", Content: user},
	}
}
