// Package assistant answers common citizen questions from a fixed keyword table.
package assistant

import (
	"strings"
	"unicode"
)

type Topic string

const (
	TopicReport    Topic = "report"
	TopicStatus    Topic = "status"
	TopicContact   Topic = "contact"
	TopicEmergency Topic = "emergency"
	TopicGreeting  Topic = "greeting"
	TopicThanks    Topic = "thanks"
	TopicCategory  Topic = "category"
	TopicDefault   Topic = "default"
)

type Reply struct {
	Reply string `json:"reply"`
	Topic Topic  `json:"topic"`
}

type Greeting struct {
	Greeting     string   `json:"greeting"`
	Suggestions  []string `json:"suggestions"`
	QuickReplies []string `json:"quickReplies"`
}

type rule struct {
	topic    Topic
	keywords []string
	answer   string
}

// Rules are checked in order; the first rule with a matching keyword wins.
var rules = []rule{
	{
		topic:    TopicReport,
		keywords: []string{"report", "issue"},
		answer:   "To report an issue, go to the Report tab and fill out the form with details, photos, and location. Your report will be reviewed by our team within 24 hours.",
	},
	{
		topic:    TopicStatus,
		keywords: []string{"status", "update"},
		answer:   "You can check the status of your reported issues in the \"My Issues\" tab. Issues go through these stages: Reported → In Progress → Resolved → Closed.",
	},
	{
		topic:    TopicContact,
		keywords: []string{"contact", "phone", "email"},
		answer:   "You can contact our support team:\n📞 Phone: 1800-CIVIC-HELP\n📧 Email: support@civicreporter.gov\n🕒 Hours: 9 AM - 6 PM, Mon-Fri",
	},
	{
		topic:    TopicEmergency,
		keywords: []string{"emergency", "urgent"},
		answer:   "🚨 For emergencies, please call:\n• Police: 100\n• Fire: 101\n• Ambulance: 102\n\nThis app is for non-emergency civic issues only.",
	},
	{
		topic:    TopicGreeting,
		keywords: []string{"hello", "hi", "hey"},
		answer:   "Hello! I'm here to help you with civic issues and app navigation. What would you like to know?",
	},
	{
		topic:    TopicThanks,
		keywords: []string{"thank"},
		answer:   "You're welcome! I'm glad I could help. Is there anything else you'd like to know about reporting civic issues?",
	},
	{
		topic:    TopicCategory,
		keywords: []string{"category", "categories", "type"},
		answer:   "We have 8 issue categories:\n• Road & Transport\n• Water & Sanitation\n• Electricity\n• Garbage & Waste\n• Public Safety\n• Health & Medical\n• Education\n• Others\n\nChoose the most relevant category when reporting.",
	},
}

// Keywords up to this length must equal a whole word; longer ones may start one.
const shortKeyword = 3

// Answer picks the first rule with a keyword matching a word of the message. "thanks" and
// "reporting" match by prefix, while "hi" matches neither "this", "high" nor "history".
func Answer(message string) Reply {
	words := strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for _, r := range rules {
		for _, keyword := range r.keywords {
			for _, word := range words {
				if matches(word, keyword) {
					return Reply{Reply: r.answer, Topic: r.topic}
				}
			}
		}
	}

	return Reply{
		Reply: "I understand you're asking about \"" + strings.TrimSpace(message) + "\". Let me help you with that. You can:\n\n• Report civic issues using the Report tab\n• Track your issues in My Issues\n• Contact support if you need immediate assistance\n\nWhat specific help do you need?",
		Topic: TopicDefault,
	}
}

func matches(word, keyword string) bool {
	if len(keyword) <= shortKeyword {
		return word == keyword
	}
	return strings.HasPrefix(word, keyword)
}

func Greet() Greeting {
	return Greeting{
		Greeting: "Hello! I'm your civic assistant. How can I help you today?",
		Suggestions: []string{
			"How to report issues",
			"Issue status updates",
			"Community guidelines",
			"Contact information",
		},
		QuickReplies: []string{
			"How to report issue?",
			"Check issue status",
			"Contact support",
			"Emergency contacts",
			"Issue categories",
		},
	}
}
