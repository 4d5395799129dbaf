package monitoring

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"
)

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusDegraded  HealthStatus = "degraded"
)

// HealthCheck is the result of a single dependency check
type HealthCheck struct {
	Name     string                 `json:"name"`
	Status   HealthStatus           `json:"status"`
	Message  string                 `json:"message,omitempty"`
	Duration string                 `json:"duration"`
	Details  map[string]interface{} `json:"details,omitempty"`
}

// HealthReport is the body served on the health endpoint
type HealthReport struct {
	Status    HealthStatus  `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Service   string        `json:"service"`
	Version   string        `json:"version"`
	Uptime    string        `json:"uptime"`
	Checks    []HealthCheck `json:"checks"`
}

// HealthChecker checks one dependency
type HealthChecker interface {
	Check(ctx context.Context) HealthCheck
}

// HealthManager runs registered checks concurrently
type HealthManager struct {
	serviceName    string
	serviceVersion string
	startTime      time.Time
	timeout        time.Duration

	mu       sync.RWMutex
	checkers map[string]HealthChecker
}

// NewHealthManager creates a new health manager
func NewHealthManager(serviceName, serviceVersion string) *HealthManager {
	return &HealthManager{
		serviceName:    serviceName,
		serviceVersion: serviceVersion,
		startTime:      time.Now(),
		timeout:        5 * time.Second,
		checkers:       make(map[string]HealthChecker),
	}
}

// RegisterChecker registers a health checker under name
func (hm *HealthManager) RegisterChecker(name string, checker HealthChecker) {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	hm.checkers[name] = checker
}

// CheckHealth performs all health checks and returns a report
func (hm *HealthManager) CheckHealth(ctx context.Context) *HealthReport {
	hm.mu.RLock()
	checkers := make(map[string]HealthChecker, len(hm.checkers))
	for name, checker := range hm.checkers {
		checkers[name] = checker
	}
	hm.mu.RUnlock()

	report := &HealthReport{
		Status:    HealthStatusHealthy,
		Timestamp: time.Now().UTC(),
		Service:   hm.serviceName,
		Version:   hm.serviceVersion,
		Uptime:    time.Since(hm.startTime).Round(time.Second).String(),
		Checks:    make([]HealthCheck, 0, len(checkers)),
	}

	results := make(chan HealthCheck, len(checkers))
	var wg sync.WaitGroup
	for name, checker := range checkers {
		wg.Add(1)
		go func(name string, checker HealthChecker) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, hm.timeout)
			defer cancel()

			start := time.Now()
			check := checker.Check(checkCtx)
			check.Name = name
			check.Duration = time.Since(start).String()
			results <- check
		}(name, checker)
	}
	wg.Wait()
	close(results)

	for check := range results {
		report.Checks = append(report.Checks, check)
		switch check.Status {
		case HealthStatusUnhealthy:
			report.Status = HealthStatusUnhealthy
		case HealthStatusDegraded:
			if report.Status == HealthStatusHealthy {
				report.Status = HealthStatusDegraded
			}
		}
	}
	sort.Slice(report.Checks, func(i, j int) bool { return report.Checks[i].Name < report.Checks[j].Name })

	return report
}

// HTTPHandler serves the health report; unhealthy maps to 503
func (hm *HealthManager) HTTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := hm.CheckHealth(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if report.Status == HealthStatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		_ = json.NewEncoder(w).Encode(report)
	}
}

// DatabaseHealthChecker checks database connectivity
type DatabaseHealthChecker struct {
	db *sql.DB
}

// NewDatabaseHealthChecker creates a new database health checker
func NewDatabaseHealthChecker(db *sql.DB) *DatabaseHealthChecker {
	return &DatabaseHealthChecker{db: db}
}

// Check pings the database. The audit log is optional, so a failure degrades
// rather than fails the service.
func (dhc *DatabaseHealthChecker) Check(ctx context.Context) HealthCheck {
	if err := dhc.db.PingContext(ctx); err != nil {
		return HealthCheck{
			Status:  HealthStatusDegraded,
			Message: fmt.Sprintf("database unreachable: %v", err),
		}
	}

	stats := dhc.db.Stats()
	return HealthCheck{
		Status: HealthStatusHealthy,
		Details: map[string]interface{}{
			"open_connections": stats.OpenConnections,
			"in_use":           stats.InUse,
			"idle":             stats.Idle,
		},
	}
}

// HTTPHealthChecker checks an upstream HTTP service such as the proxy backend
type HTTPHealthChecker struct {
	url    string
	client *http.Client
}

// NewHTTPHealthChecker creates a new HTTP health checker
func NewHTTPHealthChecker(url string, timeout time.Duration) *HTTPHealthChecker {
	return &HTTPHealthChecker{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Check performs a GET against the configured URL
func (hhc *HTTPHealthChecker) Check(ctx context.Context) HealthCheck {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hhc.url, nil)
	if err != nil {
		return HealthCheck{Status: HealthStatusUnhealthy, Message: fmt.Sprintf("invalid url: %v", err)}
	}

	resp, err := hhc.client.Do(req)
	if err != nil {
		return HealthCheck{Status: HealthStatusUnhealthy, Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	check := HealthCheck{Details: map[string]interface{}{"status_code": resp.StatusCode}}
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		check.Status = HealthStatusHealthy
	case resp.StatusCode >= 500:
		check.Status = HealthStatusUnhealthy
		check.Message = fmt.Sprintf("upstream returned %d", resp.StatusCode)
	default:
		check.Status = HealthStatusDegraded
		check.Message = fmt.Sprintf("upstream returned %d", resp.StatusCode)
	}
	return check
}

// CheckFunc adapts a function to HealthChecker
type CheckFunc func(ctx context.Context) HealthCheck

// Check calls f
func (f CheckFunc) Check(ctx context.Context) HealthCheck {
	return f(ctx)
}
