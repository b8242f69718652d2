package analytics

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/callstats/registry"
)

// Upload status values.
const (
	StatusDisabled  = "disabled"
	StatusCompleted = "completed"
	StatusPartial   = "partial"
)

// UploaderConfig configures the stats uploader.
type UploaderConfig struct {
	// Client delivers the events. Required.
	Client *Client

	// Registry is the wrapper inventory to upload. Default: registry.Default.
	Registry *registry.Registry

	// PackageName tags every event with the instrumented package, when set.
	PackageName string

	// IncludeUncalled uploads wrappers that were never called. Default: skip.
	IncludeUncalled bool

	// Concurrency bounds parallel event deliveries. Default: 4.
	Concurrency int

	// MaxEventParams caps the per-event parameter count; events whose
	// parameter breakdown would exceed it carry only a summary field.
	// Default: 20.
	MaxEventParams int
}

// Uploader converts registry snapshots into analytics events.
type Uploader struct {
	client          *Client
	registry        *registry.Registry
	packageName     string
	includeUncalled bool
	concurrency     int
	maxEventParams  int
}

// NewUploader creates an uploader from config, applying defaults.
func NewUploader(cfg UploaderConfig) (*Uploader, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	if cfg.Registry == nil {
		cfg.Registry = registry.Default
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.MaxEventParams <= 0 {
		cfg.MaxEventParams = 20
	}
	return &Uploader{
		client:          cfg.Client,
		registry:        cfg.Registry,
		packageName:     cfg.PackageName,
		includeUncalled: cfg.IncludeUncalled,
		concurrency:     cfg.Concurrency,
		maxEventParams:  cfg.MaxEventParams,
	}, nil
}

// UploadResult summarizes one UploadAll run.
type UploadResult struct {
	Uploaded int
	Failed   int
	Skipped  int
	Total    int
	Status   string
}

// UploadAll sends one function_usage_stats event per called wrapper and a
// closing package_usage_summary event. Individual delivery failures do not
// stop the run; they are reflected in the result counts and status.
func (u *Uploader) UploadAll(ctx context.Context) (UploadResult, error) {
	total := u.registry.Len()
	if !u.client.Enabled() {
		return UploadResult{Total: total, Status: StatusDisabled}, nil
	}

	all := u.registry.Snapshot(false)
	var uploaded, failed atomic.Int64
	skipped := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency)

	for _, fs := range all {
		if fs.TotalCalls == 0 && !u.includeUncalled {
			skipped++
			continue
		}
		g.Go(func() error {
			if err := u.client.TrackEvent(gctx, "function_usage_stats", u.functionEvent(fs)); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed.Add(1)
				return nil
			}
			uploaded.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return UploadResult{
			Uploaded: int(uploaded.Load()),
			Failed:   int(failed.Load()),
			Skipped:  skipped,
			Total:    total,
			Status:   StatusPartial,
		}, err
	}

	summaryErr := u.client.TrackEvent(ctx, "package_usage_summary", u.summaryEvent(all))

	result := UploadResult{
		Uploaded: int(uploaded.Load()),
		Failed:   int(failed.Load()),
		Skipped:  skipped,
		Total:    total,
		Status:   StatusCompleted,
	}
	if result.Failed > 0 || summaryErr != nil {
		result.Status = StatusPartial
	}
	return result, nil
}

// functionEvent builds the per-wrapper event parameters.
func (u *Uploader) functionEvent(fs registry.FunctionStats) map[string]any {
	params := map[string]any{
		"function_name": fs.Name,
		"total_calls":   fs.TotalCalls,
		"error_calls":   fs.ErrorResults,
		"invalid_args":  fs.InvalidArgCalls,
		"success_rate":  successRate(fs.TotalCalls, fs.ErrorResults),
	}
	if u.packageName != "" {
		params["package_name"] = u.packageName
	}

	paramData := make(map[string]any)
	for i, p := range fs.Params {
		key := fmt.Sprintf("arg_%s_uses", p.Name)
		if p.Name == "" {
			key = fmt.Sprintf("pos_arg_%d_uses", i)
		}
		paramData[key] = p.Supplied

		for j, v := range p.Watched {
			paramData[fmt.Sprintf("arg_%s_%v_count", p.Name, v)] = p.WatchedCounts[j]
		}
	}

	// Analytics backends cap event parameter cardinality; fall back to a
	// summary field rather than dropping the whole event.
	if len(paramData) <= u.maxEventParams {
		for k, v := range paramData {
			params[k] = v
		}
	} else {
		params["total_params_tracked"] = len(paramData)
	}
	return params
}

// summaryEvent builds the package-wide rollup parameters.
func (u *Uploader) summaryEvent(all []registry.FunctionStats) map[string]any {
	called := 0
	var totalCalls, totalErrors int64
	for _, fs := range all {
		if fs.TotalCalls > 0 {
			called++
		}
		totalCalls += fs.TotalCalls
		totalErrors += fs.ErrorResults
	}

	params := map[string]any{
		"total_wrapped_functions": u.registry.Len(),
		"functions_called":        called,
		"total_function_calls":    totalCalls,
		"total_errors":            totalErrors,
	}
	if u.packageName != "" {
		params["package_name"] = u.packageName
	}
	return params
}

func successRate(total, errs int64) float64 {
	if total == 0 {
		return 0
	}
	rate := float64(total-errs) / float64(total)
	// Round to three decimals to keep event payloads tidy.
	return float64(int64(rate*1000+0.5)) / 1000
}
