package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// QuestionKind enumerates the input kinds a wizard step can ask for. Each
// kind has exactly one validation rule in ValidateAnswer; adding a kind
// without extending the switch there is a bug.
type QuestionKind string

const (
	QuestionSingleChoice QuestionKind = "single_choice"
	QuestionMultiChoice  QuestionKind = "multi_choice"
	QuestionScale        QuestionKind = "scale"
	QuestionText         QuestionKind = "text"
)

// QuestionSpec is one step of a flow. Options is only meaningful for the
// choice kinds; Min/Max only for scale.
type QuestionSpec struct {
	ID       int          `json:"id"`
	Prompt   string       `json:"prompt"`
	Kind     QuestionKind `json:"kind"`
	Options  []string     `json:"options,omitempty"`
	Min      int          `json:"min,omitempty"`
	Max      int          `json:"max,omitempty"`
	Optional bool         `json:"optional,omitempty"`
}

// Answer is the raw client-provided answer for one question: a string for
// single-choice/scale/text, a string slice for multi-choice. It arrives as
// decoded JSON, so the concrete types are string and []interface{}.
type Answer interface{}

// ValidateAnswer checks an answer against the question's kind. A nil answer
// passes only for optional questions. The dispatch is exhaustive over
// QuestionKind.
func (q QuestionSpec) ValidateAnswer(ans Answer) error {
	if ans == nil {
		if q.Optional {
			return nil
		}
		return fmt.Errorf("question %d requires an answer", q.ID)
	}
	switch q.Kind {
	case QuestionSingleChoice:
		s, ok := ans.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return fmt.Errorf("question %d expects one selected option", q.ID)
		}
		for _, o := range q.Options {
			if o == s {
				return nil
			}
		}
		return fmt.Errorf("question %d: %q is not an option", q.ID, s)
	case QuestionMultiChoice:
		arr, ok := ans.([]interface{})
		if !ok || len(arr) == 0 {
			return fmt.Errorf("question %d expects at least one selected option", q.ID)
		}
		for _, raw := range arr {
			s, ok := raw.(string)
			if !ok {
				return fmt.Errorf("question %d: selections must be strings", q.ID)
			}
			found := false
			for _, o := range q.Options {
				if o == s {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("question %d: %q is not an option", q.ID, s)
			}
		}
		return nil
	case QuestionScale:
		s, ok := ans.(string)
		if !ok {
			if f, okf := ans.(float64); okf {
				s = strconv.Itoa(int(f))
			} else {
				return fmt.Errorf("question %d expects a scale value", q.ID)
			}
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("question %d expects a numeric scale value", q.ID)
		}
		min, max := q.Min, q.Max
		if min == 0 && max == 0 {
			min, max = 1, 5
		}
		if n < min || n > max {
			return fmt.Errorf("question %d: value must be between %d and %d", q.ID, min, max)
		}
		return nil
	case QuestionText:
		s, ok := ans.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return fmt.Errorf("question %d expects a text answer", q.ID)
		}
		return nil
	default:
		return fmt.Errorf("question %d has unknown kind %q", q.ID, q.Kind)
	}
}

// Questions returns the ordered steps for a task's wizard. Video and
// microtask flows have a single confirmation question; testing flows mix
// instructions and questions; surveys carry the full questionnaire.
func Questions(taskID int) []QuestionSpec {
	if qs, ok := surveyQuestions[taskID]; ok {
		return qs
	}
	task, _, ok := FindTask(taskID)
	if !ok {
		return nil
	}
	switch task.Kind {
	case FlowVideo:
		return []QuestionSpec{
			{ID: 1, Prompt: "What was the video mainly about?", Kind: QuestionText},
		}
	case FlowTesting:
		return []QuestionSpec{
			{ID: 1, Prompt: "Did you complete the test steps?", Kind: QuestionSingleChoice, Options: []string{"Yes", "No"}},
			{ID: 2, Prompt: "Rate the overall experience", Kind: QuestionScale, Min: 1, Max: 5},
			{ID: 3, Prompt: "Describe any issues you ran into", Kind: QuestionText, Optional: true},
		}
	case FlowMicrotask:
		return []QuestionSpec{
			{ID: 1, Prompt: "Enter your result", Kind: QuestionText},
		}
	default:
		return nil
	}
}

var surveyQuestions = map[int][]QuestionSpec{
	101: {
		{ID: 1, Prompt: "How often do you shop online for consumer goods?", Kind: QuestionSingleChoice, Options: []string{"Daily", "Weekly", "Monthly", "A few times a year", "Never"}},
		{ID: 2, Prompt: "Which of these product categories do you purchase most frequently?", Kind: QuestionMultiChoice, Options: []string{"Electronics", "Clothing", "Home Goods", "Beauty Products", "Groceries"}},
		{ID: 3, Prompt: "What's the most important factor when choosing a product?", Kind: QuestionSingleChoice, Options: []string{"Price", "Brand", "Quality", "Reviews", "Convenience"}},
		{ID: 4, Prompt: "How much do you typically spend on online shopping per month?", Kind: QuestionSingleChoice, Options: []string{"< $50", "$50-$100", "$100-$200", "$200-$500", "> $500"}},
		{ID: 5, Prompt: "Which devices do you use for online shopping?", Kind: QuestionMultiChoice, Options: []string{"Smartphone", "Tablet", "Laptop", "Desktop", "Smart TV"}},
		{ID: 6, Prompt: "How important are eco-friendly products to you?", Kind: QuestionScale, Min: 1, Max: 5},
		{ID: 7, Prompt: "What payment methods do you prefer?", Kind: QuestionMultiChoice, Options: []string{"Credit Card", "PayPal", "Mobile Pay", "Cash on Delivery", "Bank Transfer"}},
		{ID: 8, Prompt: "How likely are you to try new product brands?", Kind: QuestionSingleChoice, Options: []string{"Very likely", "Somewhat likely", "Neutral", "Unlikely", "Never"}},
	},
	102: {
		{ID: 1, Prompt: "How many hours per day do you spend on a computer?", Kind: QuestionSingleChoice, Options: []string{"< 1", "1-3", "3-6", "6-9", "> 9"}},
		{ID: 2, Prompt: "Which operating systems do you use regularly?", Kind: QuestionMultiChoice, Options: []string{"Windows", "macOS", "Linux", "Android", "iOS"}},
		{ID: 3, Prompt: "How comfortable are you adopting new technology?", Kind: QuestionScale, Min: 1, Max: 5},
		{ID: 4, Prompt: "What do you use your devices for most?", Kind: QuestionMultiChoice, Options: []string{"Work", "Gaming", "Streaming", "Social Media", "Shopping"}},
		{ID: 5, Prompt: "What frustrates you most about technology today?", Kind: QuestionText},
	},
	103: {
		{ID: 1, Prompt: "Which social platforms do you use weekly?", Kind: QuestionMultiChoice, Options: []string{"Facebook", "Instagram", "TikTok", "X", "YouTube"}},
		{ID: 2, Prompt: "How many hours per day do you spend on social media?", Kind: QuestionSingleChoice, Options: []string{"< 1", "1-2", "2-4", "4-6", "> 6"}},
		{ID: 3, Prompt: "How much do influencers affect your purchases?", Kind: QuestionScale, Min: 1, Max: 5},
		{ID: 4, Prompt: "What content do you engage with most?", Kind: QuestionMultiChoice, Options: []string{"Short Videos", "Photos", "Live Streams", "Stories", "Text Posts"}},
	},
	104: {
		{ID: 1, Prompt: "How often do you return purchased items?", Kind: QuestionSingleChoice, Options: []string{"Frequently", "Occasionally", "Rarely", "Never"}},
		{ID: 2, Prompt: "What makes you abandon your shopping cart?", Kind: QuestionMultiChoice, Options: []string{"High Shipping", "Checkout Issues", "Errors", "Better Price", "Changed Mind"}},
		{ID: 3, Prompt: "How important are loyalty programs?", Kind: QuestionScale, Min: 1, Max: 5},
		{ID: 4, Prompt: "Do you read product reviews before purchasing?", Kind: QuestionSingleChoice, Options: []string{"Always", "Often", "Sometimes", "Rarely", "Never"}},
		{ID: 5, Prompt: "What type of product images do you find most helpful?", Kind: QuestionMultiChoice, Options: []string{"Professional", "Lifestyle", "360°", "User Photos", "Comparisons"}},
		{ID: 6, Prompt: "Describe your ideal shopping experience", Kind: QuestionText, Optional: true},
	},
}
