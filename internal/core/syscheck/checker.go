package syscheck

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/sirupsen/logrus"

	"github.com/brightpanel/brightpanel-go/internal/core/detector"
	"github.com/brightpanel/brightpanel-go/internal/core/security"
)

// CheckResult is the outcome of one startup check.
type CheckResult struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Optional bool   `json:"optional"`
	Message  string `json:"message,omitempty"`
}

// HostInfo summarizes the machine for the system info endpoint.
type HostInfo struct {
	Hostname        string  `json:"hostname"`
	Platform        string  `json:"platform"`
	PlatformVersion string  `json:"platform_version"`
	KernelArch      string  `json:"kernel_arch"`
	UptimeSeconds   uint64  `json:"uptime_seconds"`
	TotalMemoryMB   uint64  `json:"total_memory_mb"`
	UsedMemoryPct   float64 `json:"used_memory_pct"`
}

// Checker runs the startup environment checks: the platform must be windows,
// PowerShell must answer, and the WMI brightness class should be visible.
// The WMI probe is optional because external-monitor-only machines legitimately
// lack the class.
type Checker struct {
	runner            detector.CommandRunner
	validator         *security.Validator
	logger            *logrus.Logger
	probeTimeout      time.Duration
	skipPlatformCheck bool
}

// NewChecker creates a new Checker.
func NewChecker(runner detector.CommandRunner, validator *security.Validator, logger *logrus.Logger, probeTimeout time.Duration, skipPlatformCheck bool) *Checker {
	return &Checker{
		runner:            runner,
		validator:         validator,
		logger:            logger,
		probeTimeout:      probeTimeout,
		skipPlatformCheck: skipPlatformCheck,
	}
}

// Run executes all checks. The error is non-nil when a required check
// failed; the results slice always reports everything that ran.
func (c *Checker) Run(ctx context.Context) ([]CheckResult, error) {
	results := []CheckResult{
		c.checkPlatform(),
		c.checkPowerShell(ctx),
		c.checkWMIClass(ctx),
	}

	var failed []string
	for _, r := range results {
		entry := c.logger.WithFields(logrus.Fields{
			"check":    r.Name,
			"passed":   r.Passed,
			"optional": r.Optional,
		})
		if r.Passed {
			entry.Debug("Startup check passed")
			continue
		}
		entry.WithField("message", r.Message).Warn("Startup check failed")
		if !r.Optional {
			failed = append(failed, r.Name)
		}
	}

	if len(failed) > 0 {
		return results, fmt.Errorf("required startup checks failed: %s", strings.Join(failed, ", "))
	}
	return results, nil
}

func (c *Checker) checkPlatform() CheckResult {
	result := CheckResult{Name: "platform"}
	if c.skipPlatformCheck {
		result.Passed = true
		result.Message = "platform check skipped by configuration"
		return result
	}
	if runtime.GOOS == "windows" {
		result.Passed = true
		return result
	}
	result.Message = fmt.Sprintf("windows required, running on %s", runtime.GOOS)
	return result
}

func (c *Checker) checkPowerShell(ctx context.Context) CheckResult {
	result := CheckResult{Name: "powershell"}

	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	out, err := c.runner.Run(ctx, "probe_powershell", []string{"powershell", "-NoProfile", "-Command", "Write-Output ok"})
	if err != nil {
		result.Message = err.Error()
		return result
	}
	if !strings.Contains(out, "ok") {
		result.Message = "unexpected probe output"
		return result
	}
	result.Passed = true
	return result
}

func (c *Checker) checkWMIClass(ctx context.Context) CheckResult {
	result := CheckResult{Name: "wmi_brightness_class", Optional: true}

	cmd, err := c.validator.BuildQuery("root/WMI", "WmiMonitorBrightness", "", "")
	if err != nil {
		result.Message = err.Error()
		return result
	}
	cmd[len(cmd)-1] = "(" + cmd[len(cmd)-1] + " | Measure-Object).Count"

	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	out, err := c.runner.Run(ctx, "probe_wmi", cmd)
	if err != nil {
		result.Message = err.Error()
		return result
	}
	if strings.TrimSpace(out) == "0" {
		result.Message = "class present but reports no instances"
		return result
	}
	result.Passed = true
	return result
}

// Host collects machine facts for the system info endpoint. Partial data is
// returned on errors rather than nothing.
func (c *Checker) Host(ctx context.Context) HostInfo {
	info := HostInfo{KernelArch: runtime.GOARCH, Platform: runtime.GOOS}

	if h, err := host.InfoWithContext(ctx); err == nil {
		info.Hostname = h.Hostname
		info.Platform = h.Platform
		info.PlatformVersion = h.PlatformVersion
		info.KernelArch = h.KernelArch
		info.UptimeSeconds = h.Uptime
	} else {
		c.logger.WithError(err).Debug("Host info unavailable")
	}

	if m, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info.TotalMemoryMB = m.Total / 1024 / 1024
		info.UsedMemoryPct = m.UsedPercent
	}

	return info
}
