// Package catalog holds the static task catalog: categories, tasks and the
// per-flow wizard definitions. The catalog is compiled in and read-only at
// runtime; nothing here touches storage.
package catalog

import (
	"os"
	"strconv"
	"time"
)

type FlowKind string

const (
	FlowSurvey    FlowKind = "survey"
	FlowVideo     FlowKind = "video"
	FlowTesting   FlowKind = "testing"
	FlowMicrotask FlowKind = "microtask"
)

type Task struct {
	ID              int     `json:"id"`
	Title           string  `json:"title"`
	Reward          float64 `json:"reward"`
	EstimatedTime   string  `json:"estimated_time"`
	CompletedCount  int     `json:"completed_count"`
	DestinationPath string  `json:"destination_path"`
	Kind            FlowKind
}

type Category struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Tasks []Task `json:"tasks"`
}

// FlowConfig carries the timing constants for one flow kind. Durations are
// configuration, never derived; the defaults are the production values and
// each one can be overridden via env.
type FlowConfig struct {
	Dwell            time.Duration // minimum time on a step before advancing
	TaskCooldown     time.Duration // lockout after completing a task
	CategoryCooldown time.Duration // lockout after completing a whole category
}

func envDuration(key string, unit, def time.Duration) time.Duration {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			return time.Duration(v) * unit
		}
	}
	return def
}

// Config returns the timing constants for a flow kind.
func Config(kind FlowKind) FlowConfig {
	taskCD := envDuration("COOLDOWN_TASK_HOURS", time.Hour, 5*time.Hour)
	catCD := envDuration("COOLDOWN_CATEGORY_HOURS", time.Hour, 5*time.Hour)
	switch kind {
	case FlowSurvey:
		return FlowConfig{
			Dwell:            envDuration("DWELL_SURVEY_SEC", time.Second, 60*time.Second),
			TaskCooldown:     taskCD,
			CategoryCooldown: catCD,
		}
	case FlowVideo:
		return FlowConfig{
			Dwell:            envDuration("DWELL_VIDEO_SEC", time.Second, 15*time.Second),
			TaskCooldown:     taskCD,
			CategoryCooldown: catCD,
		}
	case FlowTesting:
		return FlowConfig{
			Dwell:            envDuration("DWELL_TESTING_SEC", time.Second, 15*time.Second),
			TaskCooldown:     taskCD,
			CategoryCooldown: catCD,
		}
	default:
		return FlowConfig{
			Dwell:            0,
			TaskCooldown:     taskCD,
			CategoryCooldown: catCD,
		}
	}
}

// LegacySurveyCooldown is the 10 minute survey-state cooldown used by the
// older survey flow variant. Kept as an explicit constant because two
// divergent durations exist in the product and both are contractual.
func LegacySurveyCooldown() time.Duration {
	return envDuration("COOLDOWN_SURVEY_LEGACY_MIN", time.Minute, 10*time.Minute)
}

var categories = []Category{
	{
		ID:   1,
		Name: "Surveys",
		Tasks: []Task{
			{ID: 101, Title: "Consumer Preferences Survey", Reward: 0.50, EstimatedTime: "5 mins", CompletedCount: 1200, DestinationPath: "/surveys/consumer-preferences", Kind: FlowSurvey},
			{ID: 102, Title: "Tech Usage Questionnaire", Reward: 1.20, EstimatedTime: "8 mins", CompletedCount: 850, DestinationPath: "/surveys/tech-usage", Kind: FlowSurvey},
			{ID: 103, Title: "Social Media Habits Survey", Reward: 0.80, EstimatedTime: "6 mins", CompletedCount: 950, DestinationPath: "/surveys/social-media", Kind: FlowSurvey},
			{ID: 104, Title: "Shopping Behavior Study", Reward: 1.50, EstimatedTime: "10 mins", CompletedCount: 620, DestinationPath: "/surveys/shopping-behavior", Kind: FlowSurvey},
		},
	},
	{
		ID:   2,
		Name: "Video Watching",
		Tasks: []Task{
			{ID: 201, Title: "Watch Product Demo", Reward: 0.30, EstimatedTime: "2 mins", CompletedCount: 3200, DestinationPath: "/videos/product-demo", Kind: FlowVideo},
			{ID: 202, Title: "View Advertisement", Reward: 0.75, EstimatedTime: "4 mins", CompletedCount: 1500, DestinationPath: "/videos/advertisement", Kind: FlowVideo},
			{ID: 203, Title: "Educational Content", Reward: 0.50, EstimatedTime: "3 mins", CompletedCount: 2100, DestinationPath: "/videos/educational", Kind: FlowVideo},
			{ID: 204, Title: "Brand Awareness Video", Reward: 0.60, EstimatedTime: "2.5 mins", CompletedCount: 1800, DestinationPath: "/videos/brand-awareness", Kind: FlowVideo},
		},
	},
	{
		ID:   3,
		Name: "Product Testing",
		Tasks: []Task{
			{ID: 301, Title: "App Beta Testing", Reward: 5.00, EstimatedTime: "15 mins", CompletedCount: 420, DestinationPath: "/testing/app-beta", Kind: FlowTesting},
			{ID: 302, Title: "Physical Product Review", Reward: 8.00, EstimatedTime: "Varies", CompletedCount: 210, DestinationPath: "/testing/physical-product", Kind: FlowTesting},
			{ID: 303, Title: "Website Usability Test", Reward: 4.50, EstimatedTime: "12 mins", CompletedCount: 380, DestinationPath: "/testing/website-usability", Kind: FlowTesting},
			{ID: 304, Title: "Service Experience Review", Reward: 6.00, EstimatedTime: "20 mins", CompletedCount: 290, DestinationPath: "/testing/service-experience", Kind: FlowTesting},
		},
	},
	{
		ID:   4,
		Name: "Micro Tasks",
		Tasks: []Task{
			{ID: 401, Title: "Image Tagging", Reward: 0.10, EstimatedTime: "1 min", CompletedCount: 4500, DestinationPath: "/microtasks/image-tagging", Kind: FlowMicrotask},
			{ID: 402, Title: "Data Verification", Reward: 0.15, EstimatedTime: "1.5 mins", CompletedCount: 3800, DestinationPath: "/microtasks/data-verification", Kind: FlowMicrotask},
			{ID: 403, Title: "Short Translation", Reward: 0.25, EstimatedTime: "2 mins", CompletedCount: 2700, DestinationPath: "/microtasks/translation", Kind: FlowMicrotask},
			{ID: 404, Title: "Quick Poll", Reward: 0.05, EstimatedTime: "30 secs", CompletedCount: 6800, DestinationPath: "/microtasks/quick-poll", Kind: FlowMicrotask},
		},
	},
}

// Categories returns the full catalog in display order.
func Categories() []Category {
	return categories
}

// FindCategory looks a category up by id.
func FindCategory(id int) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// FindTask looks a task up by id and also returns its category.
func FindTask(id int) (Task, Category, bool) {
	for _, c := range categories {
		for _, t := range c.Tasks {
			if t.ID == id {
				return t, c, true
			}
		}
	}
	return Task{}, Category{}, false
}
