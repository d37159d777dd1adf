// Package analytics aggregates search and lead history into dashboard
// metrics.
package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/intentiq/intentiq/internal/domain"
)

// Timeframe is the reporting window.
type Timeframe string

const (
	Timeframe7d  Timeframe = "7d"
	Timeframe30d Timeframe = "30d"
	Timeframe90d Timeframe = "90d"
)

// ParseTimeframe validates a user-supplied timeframe. Empty defaults to 7d.
func ParseTimeframe(s string) (Timeframe, error) {
	switch Timeframe(s) {
	case "", Timeframe7d:
		return Timeframe7d, nil
	case Timeframe30d:
		return Timeframe30d, nil
	case Timeframe90d:
		return Timeframe90d, nil
	default:
		return "", domain.InvalidInputf("unknown timeframe %q", s)
	}
}

// Days returns the window length.
func (t Timeframe) Days() int {
	switch t {
	case Timeframe30d:
		return 30
	case Timeframe90d:
		return 90
	default:
		return 7
	}
}

// DailyStat is one day's activity bucket.
type DailyStat struct {
	Date       string `json:"date"`
	Searches   int    `json:"searches"`
	Leads      int    `json:"leads"`
	HighIntent int    `json:"high_intent"`
}

// IntentDistribution is the percentage split of results across tiers.
type IntentDistribution struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Report is the aggregate returned to the dashboard.
type Report struct {
	TotalSearches         int                    `json:"total_searches"`
	TotalLeads            int                    `json:"total_leads"`
	HighIntentLeads       int                    `json:"high_intent_leads"`
	MediumIntentLeads     int                    `json:"medium_intent_leads"`
	LowIntentLeads        int                    `json:"low_intent_leads"`
	SavedLeads            int                    `json:"saved_leads"`
	ContactedLeads        int                    `json:"contacted_leads"`
	ConversionRate        float64                `json:"conversion_rate"`
	AverageLeadsPerSearch float64                `json:"average_leads_per_search"`
	TopKeywords           []domain.KeywordCount  `json:"top_keywords"`
	PlatformBreakdown     map[string]int         `json:"platform_breakdown"`
	DailyStats            []DailyStat            `json:"daily_stats"`
	IntentDistribution    IntentDistribution     `json:"intent_distribution"`
}

const topKeywordLimit = 10

// SearchRunStore and LeadStore are the repository slices analytics reads.
type SearchRunStore interface {
	ListSince(ctx context.Context, userID string, since time.Time) ([]domain.SearchRun, error)
}

type LeadStore interface {
	ListSince(ctx context.Context, userID string, since time.Time) ([]domain.Lead, error)
}

// Service computes reports from persisted history.
type Service struct {
	runs  SearchRunStore
	leads LeadStore
	now   func() time.Time
}

func NewService(runs SearchRunStore, leads LeadStore) *Service {
	return &Service{runs: runs, leads: leads, now: time.Now}
}

// Report aggregates the user's activity over the timeframe.
func (s *Service) Report(ctx context.Context, userID string, timeframe Timeframe) (*Report, error) {
	now := s.now().UTC()
	days := timeframe.Days()
	since := now.Add(-time.Duration(days) * 24 * time.Hour)

	runs, err := s.runs.ListSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("load search runs: %w", err)
	}
	leads, err := s.leads.ListSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("load leads: %w", err)
	}

	report := &Report{
		TotalSearches:     len(runs),
		SavedLeads:        len(leads),
		PlatformBreakdown: make(map[string]int),
	}

	keywordCounts := make(map[string]int)
	var keywordOrder []string

	for _, run := range runs {
		report.TotalLeads += run.ResultCount
		report.HighIntentLeads += run.HighIntentCount
		report.MediumIntentLeads += run.MediumIntentCount
		report.LowIntentLeads += run.LowIntentCount

		for _, kw := range run.Keywords {
			if keywordCounts[kw] == 0 {
				keywordOrder = append(keywordOrder, kw)
			}
			keywordCounts[kw]++
		}
		for _, platform := range run.Platforms {
			report.PlatformBreakdown[platform]++
		}
	}

	for _, lead := range leads {
		if lead.IsContacted {
			report.ContactedLeads++
		}
	}

	if report.TotalLeads > 0 {
		report.ConversionRate = round2(float64(report.ContactedLeads) / float64(report.TotalLeads) * 100)
	}
	if report.TotalSearches > 0 {
		report.AverageLeadsPerSearch = round2(float64(report.TotalLeads) / float64(report.TotalSearches))
	}

	denominator := report.TotalLeads
	if denominator == 0 {
		denominator = 1
	}
	report.IntentDistribution = IntentDistribution{
		High:   int(math.Round(float64(report.HighIntentLeads) / float64(denominator) * 100)),
		Medium: int(math.Round(float64(report.MediumIntentLeads) / float64(denominator) * 100)),
		Low:    int(math.Round(float64(report.LowIntentLeads) / float64(denominator) * 100)),
	}

	sort.SliceStable(keywordOrder, func(i, j int) bool {
		return keywordCounts[keywordOrder[i]] > keywordCounts[keywordOrder[j]]
	})
	if len(keywordOrder) > topKeywordLimit {
		keywordOrder = keywordOrder[:topKeywordLimit]
	}
	for _, kw := range keywordOrder {
		report.TopKeywords = append(report.TopKeywords, domain.KeywordCount{Keyword: kw, Count: keywordCounts[kw]})
	}

	report.DailyStats = dailyStats(runs, now, days)
	return report, nil
}

// dailyStats buckets runs by UTC calendar day. Buckets cover the last `days`
// calendar days ending today, so empty days still appear.
func dailyStats(runs []domain.SearchRun, now time.Time, days int) []DailyStat {
	byDay := make(map[string]*DailyStat, days)
	stats := make([]DailyStat, 0, days)

	for i := days - 1; i >= 0; i-- {
		date := now.Add(-time.Duration(i) * 24 * time.Hour).Format("2006-01-02")
		stats = append(stats, DailyStat{Date: date})
		byDay[date] = &stats[len(stats)-1]
	}

	for _, run := range runs {
		date := run.CreatedAt.UTC().Format("2006-01-02")
		day, ok := byDay[date]
		if !ok {
			continue
		}
		day.Searches++
		day.Leads += run.ResultCount
		day.HighIntent += run.HighIntentCount
	}
	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
