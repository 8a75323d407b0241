// Package prompts holds the system and summarization prompt templates.
package prompts

import (
	"fmt"
	"time"
)

const basePrompt = `Today is %s.
User you are talking to is a user of MintHCM with username %s.
You are a helpful assistant. You have access to several tools.
Your task is to provide accurate and relevant information to the user.
Use tools to get additional information and provide the user with the most relevant answer.
Make sure to verify the information before providing it to the user.
If using MintHCM tools, always make sure to use the correct field names and types by using MintGetModuleFieldsTool.
Do not make up information! Do not rely on your knowledge, always use the tools to get the most accurate information.
Do not assume you know what day is now. If you are asked questions regarding today, yesterday, tomorrow etc. then always use the CalendarTool to get the current date.
Some questions may require you to use multiple tools. Think carefully what information you need to best answer and use tools accordingly or ask additional questions to the user.`

// SystemPrompt renders the base instruction text seeded once per
// conversation.
func SystemPrompt(username string, now time.Time) string {
	name := username
	if name == "" {
		name = "unknown"
	}
	return fmt.Sprintf(basePrompt, now.Format("02-01-2006"), name)
}

// WithSummary appends the running-summary clause to a system prompt.
func WithSummary(systemPrompt, summary string) string {
	if summary == "" {
		return systemPrompt
	}
	return fmt.Sprintf("%s This is summary of our conversation so far: %s", systemPrompt, summary)
}

const summaryPrompt = `Create a brief summary of the above conversation. Skip describing the request for the summary; it's not important information. Write only the summary in the form of continuous text.
Do not add any introduction like 'This is the current conversation summary:'.`

const mergeSummaryPrompt = `This is the current conversation summary: %s.
Based on this and the messages available in the history, create a new brief summary.
Write it in the form of continuous text and do not add any introduction.
Skip describing the request for the summary; it's not important information.`

// SummaryPrompt builds the instruction for a silent summarization call,
// merging with the previous summary when one exists.
func SummaryPrompt(prevSummary string) string {
	if prevSummary == "" {
		return summaryPrompt
	}
	return fmt.Sprintf(mergeSummaryPrompt, prevSummary)
}
