package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Service names used in errors, logs and metrics
const (
	ServiceRoute    = "route"
	ServiceSchedule = "schedule"
	ServicePermit   = "permit"
)

// MaxSeatCapacity bounds the numberCapacity a permit may report
const MaxSeatCapacity = 1000

// Lookup outcomes reported to the observer
const (
	OutcomeSuccess     = "success"
	OutcomeNotFound    = "not_found"
	OutcomeUnavailable = "unavailable"
)

// RouteData is the subset of the route service response a trip keeps
type RouteData struct {
	RouteName      string `json:"routeName"`
	TravelDistance string `json:"travelDistance"`
	TravelDuration string `json:"travelDuration"`
	StartLocation  string `json:"startLocation"`
	EndLocation    string `json:"endLocation"`
}

// ScheduleData is the subset of the schedule service response a trip keeps
type ScheduleData struct {
	DepartureTime string `json:"departureTime"`
	ArrivalTime   string `json:"arrivalTime"`
}

// PermitData is the subset of the permit service response a trip keeps
type PermitData struct {
	VehicleNumber  string  `json:"vehicleNumber"`
	BusType        string  `json:"busType"`
	PricePerSeat   float64 `json:"pricePerSeat"`
	Music          bool    `json:"music"`
	AC             bool    `json:"ac"`
	NumberCapacity int     `json:"numberCapacity"`
}

// Enrichment holds the three upstream payloads for one trip
type Enrichment struct {
	Route    RouteData
	Schedule ScheduleData
	Permit   PermitData
}

// Config holds configuration for the upstream client
type Config struct {
	RouteURL    string
	ScheduleURL string
	PermitURL   string
	Timeout     time.Duration
	Logger      logrus.FieldLogger

	// Observer, when set, is called once per lookup with its outcome and latency.
	Observer func(service, outcome string, elapsed time.Duration)
}

// Client looks up route, schedule and permit records in the sibling services
type Client struct {
	routeURL    string
	scheduleURL string
	permitURL   string
	client      *http.Client
	logger      logrus.FieldLogger
	observer    func(service, outcome string, elapsed time.Duration)
}

// NewClient creates a new upstream client
func NewClient(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Client{
		routeURL:    strings.TrimRight(cfg.RouteURL, "/"),
		scheduleURL: strings.TrimRight(cfg.ScheduleURL, "/"),
		permitURL:   strings.TrimRight(cfg.PermitURL, "/"),
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger:   logger,
		observer: cfg.Observer,
	}
}

// Fetch looks up the route, schedule and permit concurrently. It succeeds only when all
// three lookups succeed; the first failure cancels the remaining calls. There are no retries.
func (c *Client) Fetch(ctx context.Context, routeNumber string, scheduleID int64, permitNumber string) (*Enrichment, error) {
	var result Enrichment

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		route, err := c.GetRoute(gctx, routeNumber)
		if err != nil {
			return err
		}
		result.Route = *route
		return nil
	})

	g.Go(func() error {
		schedule, err := c.GetSchedule(gctx, scheduleID)
		if err != nil {
			return err
		}
		result.Schedule = *schedule
		return nil
	})

	g.Go(func() error {
		permit, err := c.GetPermit(gctx, permitNumber)
		if err != nil {
			return err
		}
		result.Permit = *permit
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetRoute fetches a route by route number
func (c *Client) GetRoute(ctx context.Context, routeNumber string) (*RouteData, error) {
	var route RouteData
	if err := c.get(ctx, ServiceRoute, c.routeURL, routeNumber, &route); err != nil {
		return nil, err
	}
	return &route, nil
}

// GetSchedule fetches a schedule by schedule ID
func (c *Client) GetSchedule(ctx context.Context, scheduleID int64) (*ScheduleData, error) {
	var schedule ScheduleData
	if err := c.get(ctx, ServiceSchedule, c.scheduleURL, strconv.FormatInt(scheduleID, 10), &schedule); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// GetPermit fetches a permit by permit number
func (c *Client) GetPermit(ctx context.Context, permitNumber string) (*PermitData, error) {
	var permit PermitData
	if err := c.get(ctx, ServicePermit, c.permitURL, permitNumber, &permit); err != nil {
		return nil, err
	}
	if permit.NumberCapacity < 0 || permit.NumberCapacity > MaxSeatCapacity {
		c.logger.WithFields(logrus.Fields{
			"permit_number":   permitNumber,
			"number_capacity": permit.NumberCapacity,
		}).Warn("Permit reported an out-of-range seat capacity")
		return nil, &UnavailableError{
			Service: ServicePermit,
			Err:     fmt.Errorf("numberCapacity %d outside 0..%d", permit.NumberCapacity, MaxSeatCapacity),
		}
	}
	return &permit, nil
}

// get issues GET {baseURL}/{identifier} and decodes the JSON body into dest
func (c *Client) get(ctx context.Context, service, baseURL, identifier string, dest interface{}) (err error) {
	start := time.Now()
	defer func() {
		c.observe(service, outcomeOf(err), time.Since(start))
	}()

	endpoint := fmt.Sprintf("%s/%s", baseURL, url.PathEscape(identifier))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &UnavailableError{Service: service, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"service":    service,
			"identifier": identifier,
		}).WithError(err).Warn("Upstream request failed")
		return &UnavailableError{Service: service, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &UnavailableError{Service: service, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WithFields(logrus.Fields{
			"service":    service,
			"identifier": identifier,
			"status":     resp.StatusCode,
		}).Info("Upstream lookup rejected identifier")
		return &NotFoundError{Service: service, Identifier: identifier, StatusCode: resp.StatusCode}
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return &NotFoundError{Service: service, Identifier: identifier, StatusCode: resp.StatusCode}
	}

	if err := json.Unmarshal(trimmed, dest); err != nil {
		return &UnavailableError{Service: service, Err: fmt.Errorf("failed to parse response: %w", err)}
	}

	return nil
}

func (c *Client) observe(service, outcome string, elapsed time.Duration) {
	if c.observer != nil {
		c.observer(service, outcome, elapsed)
	}
}
