// Package wafblock turns WAF log subscription events into IP-set
// updates: client IPs extracted from the logs are merged into a WAFv2
// IPSet so subsequent requests from them are blocked at the edge.
package wafblock

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/wafv2"
	waftypes "github.com/aws/aws-sdk-go-v2/service/wafv2/types"
	"github.com/goccy/go-json"
	appconfig "github.com/whrrk/eduplatform/pkg/config"
)

// WAFAPI is the subset of the WAFv2 client the blocker needs.
type WAFAPI interface {
	GetIPSet(ctx context.Context, params *wafv2.GetIPSetInput, optFns ...func(*wafv2.Options)) (*wafv2.GetIPSetOutput, error)
	UpdateIPSet(ctx context.Context, params *wafv2.UpdateIPSetInput, optFns ...func(*wafv2.Options)) (*wafv2.UpdateIPSetOutput, error)
}

// Blocker merges offending client IPs into a configured IPSet.
type Blocker struct {
	client WAFAPI
	id     string
	name   string
	scope  waftypes.Scope
	logger *slog.Logger
}

// New creates a Blocker for the IPSet named in the configuration.
func New(client WAFAPI, cfg *appconfig.Config, logger *slog.Logger) (*Blocker, error) {
	if cfg.IPSetID == "" || cfg.IPSetName == "" {
		return nil, fmt.Errorf("IPSET_ID and IPSET_NAME must be configured")
	}
	return &Blocker{
		client: client,
		id:     cfg.IPSetID,
		name:   cfg.IPSetName,
		scope:  waftypes.Scope(cfg.IPSetScope),
		logger: logger,
	}, nil
}

// Result reports what one invocation did.
type Result struct {
	Extracted int `json:"extracted"`
	Added     int `json:"added"`
}

// wafLogEntry is the slice of a WAF log line the blocker cares about.
type wafLogEntry struct {
	HTTPRequest struct {
		ClientIP string `json:"clientIp"`
	} `json:"httpRequest"`
}

// Handle processes one CloudWatch Logs subscription event. Log events
// that do not parse as WAF log lines are skipped. With nothing
// extracted the IPSet is left untouched.
func (b *Blocker) Handle(ctx context.Context, ev events.CloudwatchLogsEvent) (Result, error) {
	data, err := ev.AWSLogs.Parse()
	if err != nil {
		return Result{}, fmt.Errorf("failed to decode log payload: %w", err)
	}

	cidrs := ExtractClientIPs(data)
	b.logger.Info("extracted client IPs",
		slog.Int("count", len(cidrs)),
		slog.String("logGroup", data.LogGroup))
	if len(cidrs) == 0 {
		return Result{}, nil
	}

	current, err := b.client.GetIPSet(ctx, &wafv2.GetIPSetInput{
		Id:    aws.String(b.id),
		Name:  aws.String(b.name),
		Scope: b.scope,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to get IP set: %w", err)
	}

	existing := make(map[string]bool, len(current.IPSet.Addresses))
	addresses := append([]string(nil), current.IPSet.Addresses...)
	for _, a := range current.IPSet.Addresses {
		existing[a] = true
	}

	added := 0
	for _, c := range cidrs {
		if !existing[c] {
			addresses = append(addresses, c)
			added++
		}
	}
	if added == 0 {
		return Result{Extracted: len(cidrs)}, nil
	}

	_, err = b.client.UpdateIPSet(ctx, &wafv2.UpdateIPSetInput{
		Id:        aws.String(b.id),
		Name:      aws.String(b.name),
		Scope:     b.scope,
		Addresses: addresses,
		LockToken: current.LockToken,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to update IP set: %w", err)
	}

	b.logger.Info("IP set updated",
		slog.String("ipset", b.name),
		slog.Int("added", added))

	return Result{Extracted: len(cidrs), Added: added}, nil
}

// ExtractClientIPs collects the distinct client IPs from WAF log
// events, as /32 CIDRs in sorted order. Messages that are not valid
// WAF log JSON are ignored.
func ExtractClientIPs(data events.CloudwatchLogsData) []string {
	seen := make(map[string]bool)
	for _, le := range data.LogEvents {
		var entry wafLogEntry
		if err := json.Unmarshal([]byte(le.Message), &entry); err != nil {
			continue
		}
		if ip := entry.HTTPRequest.ClientIP; ip != "" {
			seen[ip+"/32"] = true
		}
	}

	cidrs := make([]string, 0, len(seen))
	for c := range seen {
		cidrs = append(cidrs, c)
	}
	sort.Strings(cidrs)
	return cidrs
}
