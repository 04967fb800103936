package planning

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/stagewatch/stagewatch/core/logger"
	"github.com/stagewatch/stagewatch/core/model"
)

// Config defines the connection parameters for the scheduling API client.
type Config struct {
	APIBase        string `json:"api_base"`
	AppID          string `json:"app_id"`
	Secret         string `json:"secret"`
	APIVersion     string `json:"api_version"`
	PlansPerType   int    `json:"plans_per_type"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	MaxRetries     int    `json:"max_retries"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.APIBase == "" {
		c.APIBase = "https://api.planningcenteronline.com/services/v2"
	}
	if c.APIVersion == "" {
		c.APIVersion = "2023-08-01"
	}
	if c.PlansPerType <= 0 {
		c.PlansPerType = 2
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.AppID == "" || c.Secret == "" {
		return fmt.Errorf("planning api credentials required")
	}
	return nil
}

// Client fetches upcoming plans from the scheduling API and normalizes them
// into PlanRecords. It implements schedule.PlanSource. Authentication is
// HTTP basic with a personal access token pair; 429 responses are retried
// honoring Retry-After.
type Client struct {
	cfg    Config
	http   *http.Client
	log    logger.Logger
	leads  map[string]int
	lead   int
	mu     sync.Mutex
	stName map[string]string // service type id -> display name
}

// NewClient creates a Client. leads maps service type ids to lead-time
// hours; defaultLeadHours covers types without an explicit entry.
func NewClient(cfg Config, leads map[string]int, defaultLeadHours int, log logger.Logger) *Client {
	cfg.SetDefaults()
	if defaultLeadHours <= 0 {
		defaultLeadHours = 2
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		log:    log,
		leads:  leads,
		lead:   defaultLeadHours,
		stName: map[string]string{},
	}
}

func (c *Client) leadHours(serviceTypeID string) int {
	if h, ok := c.leads[serviceTypeID]; ok && h > 0 {
		return h
	}
	return c.lead
}

// get performs one API request with auth headers and bounded 429 retries.
// A 404 yields a nil document without error: a deleted plan mid-fetch is
// normal, not a failure.
func (c *Client) get(ctx context.Context, rawURL string, params url.Values) (*document, error) {
	u := rawURL
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.SetBasicAuth(c.cfg.AppID, c.cfg.Secret)
		req.Header.Set("X-PCO-API-Version", c.cfg.APIVersion)
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		switch {
		case resp.StatusCode == http.StatusNotFound:
			_ = resp.Body.Close()
			return nil, nil
		case resp.StatusCode == http.StatusTooManyRequests:
			wait := time.Second
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, err := strconv.Atoi(ra); err == nil {
					wait = time.Duration(secs) * time.Second
				}
			}
			_ = resp.Body.Close()
			if attempt >= c.cfg.MaxRetries {
				return nil, fmt.Errorf("rate limited after %d retries: %s", attempt, u)
			}
			if c.log != nil {
				c.log.Warnf("rate limited, waiting %s before retry", wait)
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
			continue
		case resp.StatusCode != http.StatusOK:
			_ = resp.Body.Close()
			return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, u)
		}
		var doc document
		err = json.NewDecoder(resp.Body).Decode(&doc)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", u, err)
		}
		return &doc, nil
	}
}

// serviceTypeName resolves and caches the display name of a service type.
func (c *Client) serviceTypeName(ctx context.Context, id string) string {
	c.mu.Lock()
	if name, ok := c.stName[id]; ok {
		c.mu.Unlock()
		return name
	}
	c.mu.Unlock()

	u := fmt.Sprintf("%s/service_types/%s", c.cfg.APIBase, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return ""
	}
	req.SetBasicAuth(c.cfg.AppID, c.cfg.Secret)
	req.Header.Set("X-PCO-API-Version", c.cfg.APIVersion)
	resp, err := c.http.Do(req)
	if err != nil {
		return ""
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return ""
	}
	var doc singleDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return ""
	}
	c.mu.Lock()
	c.stName[id] = doc.Data.Attributes.Name
	c.mu.Unlock()
	return doc.Data.Attributes.Name
}

// FetchUpcomingPlans fetches the next plans for every service type and
// returns them normalized. Individual plans that fail to resolve are
// skipped; the call errors only when nothing could be fetched at all, so a
// partially degraded API still refreshes the dashboard.
func (c *Client) FetchUpcomingPlans(ctx context.Context, serviceTypeIDs []string, windowDays int) ([]model.PlanRecord, error) {
	var out []model.PlanRecord
	var lastErr error
	cutoff := time.Time{}
	if windowDays > 0 {
		cutoff = time.Now().AddDate(0, 0, windowDays)
	}

	for _, stID := range serviceTypeIDs {
		params := url.Values{}
		params.Set("filter", "future")
		params.Set("order", "sort_date")
		params.Set("per_page", strconv.Itoa(c.cfg.PlansPerType))
		doc, err := c.get(ctx, fmt.Sprintf("%s/service_types/%s/plans", c.cfg.APIBase, stID), params)
		if err != nil {
			lastErr = err
			if c.log != nil {
				c.log.Errorf("fetch plans for service type %s: %v", stID, err)
			}
			continue
		}
		if doc == nil || len(doc.Data) == 0 {
			continue
		}
		stName := c.serviceTypeName(ctx, stID)
		for _, plan := range doc.Data {
			rec, err := c.buildPlan(ctx, stID, stName, plan)
			if err != nil {
				if c.log != nil {
					c.log.Warnf("skipping plan %s: %v", plan.ID, err)
				}
				continue
			}
			if rec == nil {
				continue
			}
			if !cutoff.IsZero() && rec.ServiceTime.After(cutoff) {
				continue
			}
			out = append(out, *rec)
		}
	}
	if len(out) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}

func (c *Client) buildPlan(ctx context.Context, stID, stName string, plan resource) (*model.PlanRecord, error) {
	timesDoc, err := c.get(ctx, fmt.Sprintf("%s/service_types/%s/plans/%s/plan_times", c.cfg.APIBase, stID, plan.ID), nil)
	if err != nil {
		return nil, fmt.Errorf("plan times: %w", err)
	}
	if timesDoc == nil {
		return nil, nil
	}
	serviceTime, ok := earliestStart(timesDoc.Data)
	if !ok {
		return nil, nil
	}

	assignments, err := c.fetchAssignments(ctx, stID, plan.ID)
	if err != nil {
		return nil, fmt.Errorf("assignments: %w", err)
	}

	title := plan.Attributes.Title
	if title == "" {
		title = plan.Attributes.Dates
	}
	rec := model.PlanRecord{
		PlanID:          plan.ID,
		ServiceTypeID:   stID,
		ServiceTypeName: stName,
		Title:           title,
		ServiceTime:     serviceTime,
		LiveTime:        serviceTime.Add(-time.Duration(c.leadHours(stID)) * time.Hour),
		Assignments:     assignments,
	}
	return &rec, nil
}

// fetchAssignments reads the plan's team members with side-loaded person,
// team and position resources. Position names arriving under either the
// member attribute or the included team position are normalized into the
// single Assignment shape; the core never sees alternate field spellings.
func (c *Client) fetchAssignments(ctx context.Context, stID, planID string) ([]model.Assignment, error) {
	params := url.Values{}
	params.Set("include", "person,team,team_position")
	doc, err := c.get(ctx, fmt.Sprintf("%s/service_types/%s/plans/%s/team_members", c.cfg.APIBase, stID, planID), params)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	idx := doc.includedIndex()
	assignments := make([]model.Assignment, 0, len(doc.Data))
	for _, member := range doc.Data {
		a := model.Assignment{Status: normalizeStatus(member.Attributes.Status)}
		if person, ok := member.related(idx, "person"); ok {
			a.PersonName = person.Attributes.Name
			if a.PersonName == "" {
				a.PersonName = person.Attributes.FullName
			}
		}
		if a.PersonName == "" {
			a.PersonName = member.Attributes.Name
		}
		a.PositionName = member.Attributes.TeamPositionName
		if a.PositionName == "" {
			if pos, ok := member.related(idx, "team_position"); ok {
				a.PositionName = pos.Attributes.Name
			}
		}
		if team, ok := member.related(idx, "team"); ok {
			a.TeamName = team.Attributes.Name
		}
		assignments = append(assignments, a)
	}
	return assignments, nil
}
