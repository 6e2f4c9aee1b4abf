package limits

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"nutrihq/ceres/pkg/limits/quota"
	"nutrihq/ceres/pkg/limits/ratelimit"
)

func newTestManager() *Manager {
	return NewManager(Config{
		Categories: map[string]ratelimit.CategoryConfig{
			ratelimit.CategoryGeneral: {Capacity: 30, Window: time.Minute},
			"search":                  {Capacity: 3, Window: time.Minute},
			"image_analysis":          {Capacity: 1, Window: time.Minute},
		},
		Quotas: quota.Limits{
			Daily:   map[string]int{quota.OpSearches: 2},
			Monthly: map[string]int{quota.OpSearches: 100},
		},
	})
}

// ============================================================================
// Rate Limit Coordination Tests
// ============================================================================

func TestManager_CheckRequestAllowed(t *testing.T) {
	manager := newTestManager()

	result := manager.CheckRequest(42, "search")
	if !result.Allowed {
		t.Fatalf("expected admission, got %+v", result)
	}
	if result.Remaining != 2 {
		t.Errorf("expected 2 remaining after first admission, got %d", result.Remaining)
	}
	if result.RetryAfter != 0 {
		t.Errorf("expected zero retry-after on admission, got %v", result.RetryAfter)
	}
}

func TestManager_CheckRequestDenied(t *testing.T) {
	manager := newTestManager()

	manager.CheckRequest(42, "image_analysis")
	result := manager.CheckRequest(42, "image_analysis")

	if result.Allowed {
		t.Fatal("expected denial at capacity")
	}
	if result.Reason != "rate limit exceeded" {
		t.Errorf("unexpected reason %q", result.Reason)
	}
	if result.RetryAfter <= 0 {
		t.Errorf("expected positive retry-after, got %v", result.RetryAfter)
	}
}

func TestManager_CategoriesIsolated(t *testing.T) {
	manager := newTestManager()

	manager.CheckRequest(42, "image_analysis")
	if result := manager.CheckRequest(42, "image_analysis"); result.Allowed {
		t.Fatal("expected image_analysis exhausted")
	}
	if result := manager.CheckRequest(42, "search"); !result.Allowed {
		t.Error("search must not share the image_analysis budget")
	}
}

// ============================================================================
// Quota Coordination Tests
// ============================================================================

func TestManager_QuotaFlow(t *testing.T) {
	manager := newTestManager()
	const user = int64(42)

	// Checks alone never consume quota.
	for i := 0; i < 5; i++ {
		if result := manager.CheckQuota(user, quota.OpSearches); !result.Allowed {
			t.Fatalf("check %d: expected allowed", i)
		}
	}

	manager.RecordUsage(user, quota.OpSearches)
	manager.RecordUsage(user, quota.OpSearches)

	result := manager.CheckQuota(user, quota.OpSearches)
	if result.Allowed {
		t.Fatal("expected quota exhausted after two recorded uses")
	}
	if !strings.Contains(result.Reason, "daily limit of 2") {
		t.Errorf("unexpected reason %q", result.Reason)
	}
	if result.RetryAfter != 0 {
		t.Errorf("quota denials carry no retry-after, got %v", result.RetryAfter)
	}
}

func TestManager_ResetDailyRestoresQuota(t *testing.T) {
	manager := newTestManager()
	const user = int64(42)

	manager.RecordUsage(user, quota.OpSearches)
	manager.RecordUsage(user, quota.OpSearches)
	manager.ResetDaily()

	if result := manager.CheckQuota(user, quota.OpSearches); !result.Allowed {
		t.Error("expected quota restored after daily reset")
	}

	usage := manager.Usage(user)
	if usage.Monthly[quota.OpSearches] != 2 {
		t.Errorf("expected monthly counters preserved, got %d", usage.Monthly[quota.OpSearches])
	}
}

// ============================================================================
// Defaults / Cleanup Tests
// ============================================================================

func TestManager_Defaults(t *testing.T) {
	manager := NewManager(Config{})

	// Stock categories and quotas apply when the config is empty.
	if result := manager.CheckRequest(1, "barcode"); !result.Allowed {
		t.Error("expected stock barcode category to admit")
	}
	if result := manager.CheckQuota(1, quota.OpImageAnalysis); !result.Allowed {
		t.Error("expected stock image analysis quota to admit")
	}
	if result := manager.CheckQuota(1, quota.OpImageAnalysis); result.Remaining != 50 {
		t.Errorf("expected stock daily ceiling of 50, got remaining %d", result.Remaining)
	}
}

func TestManager_ResetUser(t *testing.T) {
	manager := newTestManager()
	const user = int64(42)

	manager.CheckRequest(user, "image_analysis")
	if result := manager.CheckRequest(user, "image_analysis"); result.Allowed {
		t.Fatal("expected denial")
	}

	manager.ResetUser(user)
	if result := manager.CheckRequest(user, "image_analysis"); !result.Allowed {
		t.Error("expected admission after user reset")
	}
}

func TestManager_WithMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	manager := NewManager(Config{
		Categories: map[string]ratelimit.CategoryConfig{
			ratelimit.CategoryGeneral: {Capacity: 1, Window: time.Minute},
		},
		Metrics: NewMetrics(reg),
	})

	manager.CheckRequest(1, ratelimit.CategoryGeneral)
	manager.CheckRequest(1, ratelimit.CategoryGeneral)
	manager.CheckQuota(1, quota.OpSearches)
	manager.Cleanup()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	found := map[string]bool{}
	for _, fam := range families {
		found[fam.GetName()] = true
	}
	for _, name := range []string{
		"ceres_limits_rate_limit_checks_total",
		"ceres_limits_rate_limit_hits_total",
		"ceres_limits_quota_checks_total",
		"ceres_limits_check_duration_seconds",
	} {
		if !found[name] {
			t.Errorf("expected metric family %s to be registered", name)
		}
	}
}

func TestManager_ApplyConfig(t *testing.T) {
	manager := newTestManager()
	const user = int64(42)

	manager.RecordUsage(user, quota.OpSearches)
	manager.RecordUsage(user, quota.OpSearches)
	if result := manager.CheckQuota(user, quota.OpSearches); result.Allowed {
		t.Fatal("expected quota exhausted")
	}

	// Raising the ceiling admits again without touching counters.
	manager.ApplyConfig(
		map[string]ratelimit.CategoryConfig{
			"image_analysis": {Capacity: 2, Window: time.Minute},
		},
		quota.Limits{Daily: map[string]int{quota.OpSearches: 5}},
	)

	if result := manager.CheckQuota(user, quota.OpSearches); !result.Allowed {
		t.Error("expected admission against raised ceiling")
	}
	if result := manager.CheckQuota(user, quota.OpSearches); result.Remaining != 3 {
		t.Errorf("expected counters preserved (remaining 3), got %d", result.Remaining)
	}

	manager.CheckRequest(user, "image_analysis")
	manager.CheckRequest(user, "image_analysis")
	if result := manager.CheckRequest(user, "image_analysis"); result.Allowed {
		t.Error("expected reconfigured capacity of 2 to deny the third request")
	}
}
